package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/pestcare-visits/internal/http/middleware"
	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/repository"
	"github.com/nurpe/pestcare-visits/internal/service"
)

type Handler struct {
	clients *service.ClientService
	visits  *service.VisitService
	log     zerolog.Logger
}

func NewHandler(clients *service.ClientService, visits *service.VisitService, log zerolog.Logger) *Handler {
	return &Handler{clients: clients, visits: visits, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware, feedAuthMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)
	router.GET("/technicians/:id/calendar.ics", feedAuthMiddleware, h.technicianCalendar)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/clients", h.createClient)
	protected.GET("/clients", h.listClients)
	protected.GET("/clients/:id", h.getClient)

	protected.POST("/technicians", h.createTechnician)
	protected.GET("/technicians", h.listTechnicians)
	protected.GET("/technicians/:id/visits", h.technicianVisits)
	protected.GET("/me/visits", h.myVisits)

	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/visits", h.contractVisits)
	protected.PATCH("/contracts/:id/status", h.setContractStatus)
	protected.POST("/contracts/:id/visits", h.addVisit)

	protected.GET("/visits/:id", h.getVisit)
	protected.POST("/visits/:id/assign", h.assignVisit)
	protected.POST("/visits/:id/reschedule", h.rescheduleVisit)
	protected.POST("/visits/:id/complete", h.completeVisit)
	protected.POST("/visits/:id/cancel", h.cancelVisit)
	protected.GET("/visits/:id/report.pdf", h.visitReport)

	protected.GET("/calendar/days/:date", h.calendarDay)
	protected.GET("/calendar/month", h.calendarMonth)
	protected.GET("/calendar/export", h.exportMonth)

	protected.GET("/dashboard", h.dashboard)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// principal writes 401 itself when the middleware did not run.
func principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return p, ok
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, repository.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrScheduleViolation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) sendFile(c *gin.Context, file *service.FileResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", service.ErrInvalidInput, field)
	}
	return id, nil
}

func parseOptionalUUID(raw, field string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseUUID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseVisitID accepts both 1001 and VST-1001.
func parseVisitID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > 4 && strings.EqualFold(raw[:4], "VST-") {
		raw = raw[4:]
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid visit id", service.ErrInvalidInput)
	}
	return id, nil
}

func parseDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", service.ErrInvalidInput, field)
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid %s", service.ErrInvalidInput, field)
}

func parseMonth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: month is required", service.ErrInvalidInput)
	}
	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must look like 2024-03", service.ErrInvalidInput)
	}
	return parsed, nil
}

func bindError(err error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
}
