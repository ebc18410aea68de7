// Package ics encodes a technician's visits as an iCalendar subscription.
package ics

import (
	"fmt"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"

	"github.com/nurpe/pestcare-visits/internal/model"
)

const productID = "-//pestcare-visits//technician feed//EN"

type Encoder struct {
	domain string
}

// NewEncoder builds an encoder whose event UIDs end in @domain.
func NewEncoder(domain string) *Encoder {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		domain = "pestcare.local"
	}
	return &Encoder{domain: domain}
}

// Encode writes one all-day VEVENT per visit. The visit version becomes the
// event SEQUENCE so calendar clients pick up reschedules.
func (e *Encoder) Encode(feed model.TechnicianFeed) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(fmt.Sprintf("Visits - %s", feed.Technician.Name))
	cal.SetXWRCalName(fmt.Sprintf("Visits - %s", feed.Technician.Name))
	cal.SetRefreshInterval("PT1H")

	for _, visit := range feed.Visits {
		if visit.ID == 0 {
			return nil, fmt.Errorf("visit without id on %s", visit.Date.Format("2006-01-02"))
		}
		event := cal.AddEvent(fmt.Sprintf("%s@%s", visit.Number, e.domain))
		event.SetDtStampTime(feed.GeneratedAt.UTC())
		event.SetCreatedTime(visit.CreatedAt.UTC())
		event.SetModifiedAt(visit.UpdatedAt.UTC())
		event.SetAllDayStartAt(visit.Date)
		event.SetAllDayEndAt(visit.Date.AddDate(0, 0, 1))
		event.SetSummary(summary(visit))
		event.SetDescription(description(visit))
		event.SetProperty(ical.ComponentPropertySequence, strconv.FormatInt(visit.Version, 10))
		event.SetProperty(ical.ComponentPropertyCategories, string(visit.EffectiveStatus))
		if feed.Technician.Color != "" {
			event.SetProperty(ical.ComponentPropertyColor, feed.Technician.Color)
		}
		if visit.Status == model.VisitStatusCompleted {
			event.SetStatus(ical.ObjectStatusConfirmed)
		} else {
			event.SetStatus(ical.ObjectStatusTentative)
		}
	}

	return []byte(cal.Serialize()), nil
}

func summary(visit model.VisitRecord) string {
	client := visit.ClientName
	if client == "" {
		client = visit.ClientID.String()
	}
	return fmt.Sprintf("%s %s", visit.Number, client)
}

func description(visit model.VisitRecord) string {
	lines := []string{fmt.Sprintf("Status: %s", visit.EffectiveStatus)}
	if visit.PestType != nil {
		lines = append(lines, fmt.Sprintf("Pest: %s", *visit.PestType))
	}
	if visit.Chemicals != nil {
		lines = append(lines, fmt.Sprintf("Chemicals: %s", *visit.Chemicals))
	}
	if visit.Notes != nil {
		lines = append(lines, fmt.Sprintf("Notes: %s", *visit.Notes))
	}
	return strings.Join(lines, "\n")
}
