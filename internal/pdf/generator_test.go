package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/pestcare-visits/internal/model"
)

func completedDocument() model.VisitDocument {
	pest, chemicals, notes := "Cockroaches", "Gel bait, IGR spray", "Treated kitchen and bathrooms."
	completedAt := time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC)
	unit := "1204"
	return model.VisitDocument{
		Visit: model.Visit{
			ID:          1001,
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Status:      model.VisitStatusCompleted,
			PestType:    &pest,
			Chemicals:   &chemicals,
			Notes:       &notes,
			CompletedAt: &completedAt,
		},
		Contract: model.Contract{
			ContractNumber: "CTR-2024-001",
			Cadence:        model.CadenceMonthly,
			StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		Client: model.Client{
			Name:         "Café Résidence",
			Phone:        "+971 4 123 4567",
			Address:      "Dubai Marina",
			UnitNumber:   &unit,
			PropertyType: model.PropertyResidential,
		},
		Technician: &model.Technician{ID: uuid.New(), Name: "Rahul Menon"},
	}
}

func TestGenerateServiceReport(t *testing.T) {
	content, err := NewGenerator("").Generate(completedDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.True(t, bytes.Contains(content, []byte("%%EOF")))
}

func TestGenerateRejectsOpenVisit(t *testing.T) {
	doc := completedDocument()
	doc.Visit.Status = model.VisitStatusPending

	_, err := NewGenerator("Acme Pest Control").Generate(doc)
	require.Error(t, err)
}

func TestGenerateWithoutTechnicianOrNotes(t *testing.T) {
	doc := completedDocument()
	doc.Technician = nil
	doc.Visit.Notes = nil

	content, err := NewGenerator("Acme Pest Control").Generate(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
