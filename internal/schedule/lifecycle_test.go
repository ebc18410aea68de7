package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/pestcare-visits/internal/model"
)

func pendingVisit(c model.Contract, date time.Time) model.Visit {
	return model.Visit{
		ID:         1001,
		ContractID: c.ID,
		ClientID:   c.ClientID,
		Date:       date,
		Status:     model.VisitStatusPending,
	}
}

func TestCompleteThenCompleteAgain(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 2, 1))
	now := time.Date(2024, 2, 1, 10, 15, 0, 0, time.UTC)

	done, err := Complete(v, model.VisitReport{PestType: "Ants", Chemicals: "Gel"}, now)
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, now, *done.CompletedAt)
	assert.Equal(t, "Ants", *done.PestType)
	assert.Equal(t, "Gel", *done.Chemicals)
	assert.Nil(t, done.Notes)

	assert.Equal(t, model.VisitStatusPending, v.Status, "input must not be mutated")

	again, err := Complete(done, model.VisitReport{PestType: "Roaches", Chemicals: "Spray"}, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, done, again)
}

func TestCompleteRequiresReport(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 2, 1))

	for _, report := range []model.VisitReport{
		{},
		{PestType: "Ants"},
		{Chemicals: "Gel"},
		{PestType: "  ", Chemicals: "Gel"},
	} {
		got, err := Complete(v, report, time.Now())
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, v, got)
	}
}

func TestCompleteKeepsNotes(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 2, 1))

	done, err := Complete(v, model.VisitReport{PestType: " Termites ", Chemicals: "Termidor", Notes: "kitchen only"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Termites", *done.PestType)
	require.NotNil(t, done.Notes)
	assert.Equal(t, "kitchen only", *done.Notes)
}

func TestTerminalStatesRejectEveryTransition(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	tech := uuid.New()

	for _, status := range []model.VisitStatus{model.VisitStatusCompleted, model.VisitStatusCanceled} {
		t.Run(string(status), func(t *testing.T) {
			v := pendingVisit(c, day(2024, 3, 1))
			v.Status = status
			require.True(t, status.Terminal())

			transitions := map[string]func() (model.Visit, error){
				"assign":     func() (model.Visit, error) { return AssignTechnician(v, tech) },
				"reschedule": func() (model.Visit, error) { return Reschedule(v, c, day(2024, 3, 5)) },
				"complete": func() (model.Visit, error) {
					return Complete(v, model.VisitReport{PestType: "Ants", Chemicals: "Gel"}, time.Now())
				},
				"cancel": func() (model.Visit, error) { return Cancel(v) },
			}
			for name, transition := range transitions {
				got, err := transition()
				assert.ErrorIs(t, err, ErrInvalidTransition, name)
				assert.Equal(t, v, got, name)
			}
		})
	}
}

func TestUnknownStoredStatusRejectsTransitions(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)

	for _, status := range []model.VisitStatus{model.VisitStatusMissed, "ARCHIVED", ""} {
		t.Run(string(status), func(t *testing.T) {
			v := pendingVisit(c, day(2024, 3, 1))
			v.Status = status
			require.False(t, status.Terminal())

			got, err := Cancel(v)
			assert.ErrorIs(t, err, ErrValidation)
			assert.NotErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, v, got)

			_, err = AssignTechnician(v, uuid.New())
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAssignTechnicianAllowsReassignment(t *testing.T) {
	c := contract(model.CadenceWeekly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 1, 8))
	first, second := uuid.New(), uuid.New()

	v1, err := AssignTechnician(v, first)
	require.NoError(t, err)
	require.NotNil(t, v1.TechnicianID)
	assert.Equal(t, first, *v1.TechnicianID)
	assert.Equal(t, model.VisitStatusPending, v1.Status)

	v2, err := AssignTechnician(v1, second)
	require.NoError(t, err)
	assert.Equal(t, second, *v2.TechnicianID)
	assert.Equal(t, first, *v1.TechnicianID)

	_, err = AssignTechnician(v, uuid.Nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRescheduleWindow(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 2, 1))

	moved, err := Reschedule(v, c, time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 6, 1), moved.Date)

	moved, err = Reschedule(v, c, day(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), moved.Date)

	for _, outside := range []time.Time{day(2023, 12, 31), day(2024, 6, 2)} {
		got, err := Reschedule(v, c, outside)
		assert.ErrorIs(t, err, ErrScheduleViolation)
		assert.Equal(t, day(2024, 2, 1), got.Date)
	}

	other := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	_, err = Reschedule(v, other, day(2024, 3, 1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancel(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 2, 1))

	canceled, err := Cancel(v)
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCanceled, canceled.Status)

	_, err = Cancel(canceled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIsEffectivelyMissed(t *testing.T) {
	c := contract(model.CadenceMonthly, day(2024, 1, 1), day(2024, 6, 1), 6)
	v := pendingVisit(c, day(2024, 2, 1))
	snapshot := v

	assert.False(t, IsEffectivelyMissed(v, day(2024, 2, 1)))
	assert.False(t, IsEffectivelyMissed(v, time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC)))
	assert.True(t, IsEffectivelyMissed(v, day(2024, 2, 2)))
	assert.Equal(t, model.VisitStatusMissed, EffectiveStatus(v, day(2024, 2, 2)))
	assert.Equal(t, model.VisitStatusPending, EffectiveStatus(v, day(2024, 1, 20)))

	v.Status = model.VisitStatusCompleted
	assert.False(t, IsEffectivelyMissed(v, day(2024, 3, 1)))
	v.Status = model.VisitStatusCanceled
	assert.False(t, IsEffectivelyMissed(v, day(2024, 3, 1)))

	assert.Equal(t, model.VisitStatusPending, snapshot.Status)
}
