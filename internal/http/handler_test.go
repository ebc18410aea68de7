package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/pestcare-visits/internal/auth"
	"github.com/nurpe/pestcare-visits/internal/clock"
	"github.com/nurpe/pestcare-visits/internal/config"
	"github.com/nurpe/pestcare-visits/internal/excel"
	"github.com/nurpe/pestcare-visits/internal/http/middleware"
	"github.com/nurpe/pestcare-visits/internal/ics"
	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/pdf"
	"github.com/nurpe/pestcare-visits/internal/repository"
	"github.com/nurpe/pestcare-visits/internal/service"
)

const testSecret = "handler-test-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(now)
	store := repository.NewMemoryStore(fake.Now)
	cfg := &config.Config{
		Environment: "test",
		Schedule:    config.ScheduleConfig{Location: time.UTC},
	}
	visits := service.NewVisitService(store, service.Renderers{
		Excel:    excel.NewGenerator(),
		PDF:      pdf.NewGenerator("Test Pest Control"),
		Calendar: ics.NewEncoder("test.local"),
	}, fake, cfg, zerolog.Nop())

	handler := NewHandler(service.NewClientService(store), visits, zerolog.Nop())
	parser := auth.NewParser(testSecret)
	router := NewRouter(handler, middleware.Auth(parser), middleware.FeedAuth(parser), cfg.Environment, nil, zerolog.Nop())
	return &testServer{t: t, router: router}
}

func (s *testServer) token(p model.Principal) string {
	s.t.Helper()
	token, err := auth.Sign(testSecret, p, time.Hour, time.Now())
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestVisitWorkflow(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin})
	office := s.token(model.Principal{UserID: uuid.New(), Role: model.UserRoleOffice})

	rec := s.do(http.MethodPost, "/technicians", admin, gin.H{"name": "Rahul", "color": "#ef4444"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tech := decode[model.Technician](t, rec)
	techID := tech.ID
	technician := s.token(model.Principal{UserID: uuid.New(), Role: model.UserRoleTechnician, TechnicianID: &techID})

	rec = s.do(http.MethodPost, "/clients", technician, gin.H{"name": "Blue Bay", "phone": "050"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/clients", office, gin.H{
		"name":          "Blue Bay Residence",
		"phone":         "+971 55 000 1111",
		"emirate":       "Abu Dhabi",
		"property_type": "COMMERCIAL",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	client := decode[model.Client](t, rec)

	rec = s.do(http.MethodPost, "/contracts", office, gin.H{
		"client_id":       client.ID.String(),
		"cadence":         "MONTHLY",
		"start_date":      "2024-01-01",
		"end_date":        "2024-06-01",
		"visits_included": 6,
		"price":           2400,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	detail := decode[service.ContractDetail](t, rec)
	require.Len(t, detail.Visits, 6)
	assert.Equal(t, "CTR-2024-001", detail.Contract.ContractNumber)
	assert.Contains(t, detail.RRule, "FREQ=MONTHLY")
	assert.Equal(t, model.VisitStatusMissed, detail.Visits[0].EffectiveStatus)

	visitPath := fmt.Sprintf("/visits/%d", detail.Visits[3].ID)

	rec = s.do(http.MethodPost, visitPath+"/assign", office, gin.H{"technician_id": techID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Rahul", decode[model.VisitRecord](t, rec).TechnicianName)

	rec = s.do(http.MethodGet, "/me/visits", technician, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[struct {
		Visits []model.VisitRecord `json:"visits"`
	}](t, rec)
	require.Len(t, mine.Visits, 1)

	rec = s.do(http.MethodPost, visitPath+"/reschedule", office, gin.H{"date": "2024-07-01"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, visitPath+"/complete", technician, gin.H{"pest_type": "", "chemicals": "Gel"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, visitPath+"/complete", technician, gin.H{"pest_type": "Ants", "chemicals": "Gel bait"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.VisitStatusCompleted, decode[model.VisitRecord](t, rec).Status)

	rec = s.do(http.MethodPost, visitPath+"/complete", technician, gin.H{"pest_type": "Ants", "chemicals": "Gel bait"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, visitPath+"/report.pdf", technician, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "VST-1004")

	rec = s.do(http.MethodGet, fmt.Sprintf("/technicians/%s/calendar.ics", techID), technician, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "VST-1004@test.local")

	// Calendar subscriptions carry the token in the query string; no other
	// route accepts it there.
	rec = s.do(http.MethodGet, fmt.Sprintf("/technicians/%s/calendar.ics?token=%s", techID, technician), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "VST-1004@test.local")
	rec = s.do(http.MethodGet, fmt.Sprintf("/technicians/%s/visits?token=%s", techID, technician), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodGet, "/me/visits?token="+technician, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/calendar/export?month=2024-04", office, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "schedule-2024-04.xlsx")

	rec = s.do(http.MethodGet, "/dashboard", office, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[model.DashboardStats](t, rec)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 3, stats.MissedVisits)
	assert.Equal(t, 2, stats.Pending)

	rec = s.do(http.MethodGet, "/dashboard", technician, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCalendarViews(t *testing.T) {
	s := newTestServer(t)
	office := s.token(model.Principal{UserID: uuid.New(), Role: model.UserRoleOffice})

	rec := s.do(http.MethodPost, "/clients", office, gin.H{"name": "Creek Tower", "phone": "04 111"})
	require.Equal(t, http.StatusCreated, rec.Code)
	client := decode[model.Client](t, rec)

	rec = s.do(http.MethodPost, "/contracts", office, gin.H{
		"client_id":       client.ID.String(),
		"cadence":         "WEEKLY",
		"start_date":      "2024-02-05",
		"end_date":        "2024-02-29",
		"visits_included": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[service.ContractDetail](t, rec).Visits, 4)

	rec = s.do(http.MethodGet, "/calendar/month?month=2024-02", office, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	month := decode[model.MonthSchedule](t, rec)
	require.Len(t, month.Days, 29)
	assert.Len(t, month.Days[4].Visits, 1)
	assert.Len(t, month.Days[11].Visits, 1)
	assert.Empty(t, month.Days[5].Visits)

	rec = s.do(http.MethodGet, "/calendar/days/2024-02-12", office, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VST-1002")

	rec = s.do(http.MethodGet, "/calendar/month?month=Feb", office, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	office := s.token(model.Principal{UserID: uuid.New(), Role: model.UserRoleOffice})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{"health is public", http.MethodGet, "/healthz", "", nil, http.StatusOK},
		{"missing token", http.MethodGet, "/clients", "", nil, http.StatusUnauthorized},
		{"unknown visit", http.MethodGet, "/visits/VST-9999", office, nil, http.StatusNotFound},
		{"bad visit id", http.MethodGet, "/visits/abc", office, nil, http.StatusBadRequest},
		{"unknown client", http.MethodGet, "/clients/" + uuid.NewString(), office, nil, http.StatusNotFound},
		{"bad contract body", http.MethodPost, "/contracts", office, gin.H{"cadence": "MONTHLY"}, http.StatusBadRequest},
		{"bad status", http.MethodPatch, "/contracts/" + uuid.NewString() + "/status", office, gin.H{"status": "PAUSED"}, http.StatusBadRequest},
		{"unknown technician queue", http.MethodGet, "/technicians/" + uuid.NewString() + "/visits", office, nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestParseVisitID(t *testing.T) {
	id, err := parseVisitID("VST-1001")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), id)

	id, err = parseVisitID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseVisitID("-3")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}
