package ics

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/pestcare-visits/internal/model"
)

func visitRecord(id int64, date time.Time, status model.VisitStatus, version int64) model.VisitRecord {
	v := model.Visit{
		ID:        id,
		ClientID:  uuid.New(),
		Date:      date,
		Status:    model.VisitStatusPending,
		Version:   version,
		CreatedAt: date.Add(-48 * time.Hour),
		UpdatedAt: date.Add(-24 * time.Hour),
	}
	if status == model.VisitStatusCompleted {
		v.Status = status
	}
	return model.VisitRecord{Visit: v, Number: v.Number(), EffectiveStatus: status, ClientName: "Palm Villas"}
}

func TestEncodeTechnicianFeed(t *testing.T) {
	feed := model.TechnicianFeed{
		Technician:  model.Technician{ID: uuid.New(), Name: "Rahul", Color: "#10b981"},
		GeneratedAt: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		Visits: []model.VisitRecord{
			visitRecord(1001, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), model.VisitStatusCompleted, 3),
			visitRecord(1002, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), model.VisitStatusPending, 1),
		},
	}

	content, err := NewEncoder("example.test").Encode(feed)
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(bytes.NewReader(content))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "VST-1001@example.test", first.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "VST-1001 Palm Villas", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20240301", first.GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20240302", first.GetProperty(ical.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "3", first.GetProperty(ical.ComponentPropertySequence).Value)
	assert.Equal(t, "CONFIRMED", first.GetProperty(ical.ComponentPropertyStatus).Value)

	second := events[1]
	assert.Equal(t, "TENTATIVE", second.GetProperty(ical.ComponentPropertyStatus).Value)
	assert.Equal(t, "PENDING", second.GetProperty(ical.ComponentPropertyCategories).Value)
}

func TestEncodeRejectsUnsavedVisit(t *testing.T) {
	feed := model.TechnicianFeed{
		Technician: model.Technician{Name: "Rahul"},
		Visits:     []model.VisitRecord{{Visit: model.Visit{Date: time.Now()}}},
	}
	_, err := NewEncoder("").Encode(feed)
	require.Error(t, err)
}

func TestEncodeEmptyFeed(t *testing.T) {
	content, err := NewEncoder("").Encode(model.TechnicianFeed{Technician: model.Technician{Name: "Sara"}})
	require.NoError(t, err)
	assert.Contains(t, string(content), "BEGIN:VCALENDAR")
	assert.Contains(t, string(content), productID)
}
