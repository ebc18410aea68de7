package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) calendarDay(c *gin.Context) {
	day, err := parseDate(c.Param("date"), "date")
	if err != nil {
		h.handleError(c, err)
		return
	}
	visits, err := h.visits.VisitsOnDay(c.Request.Context(), day)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "visits": visits})
}

func (h *Handler) calendarMonth(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	schedule, err := h.visits.MonthSchedule(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *Handler) exportMonth(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	file, err := h.visits.ExportMonth(c.Request.Context(), p, month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, file)
}

func (h *Handler) technicianVisits(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	techID, err := parseUUID(c.Param("id"), "technician id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	visits, err := h.visits.PendingForTechnician(c.Request.Context(), p, techID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) myVisits(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	visits, err := h.visits.MyVisits(c.Request.Context(), p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) technicianCalendar(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	techID, err := parseUUID(c.Param("id"), "technician id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	file, err := h.visits.TechnicianCalendar(c.Request.Context(), p, techID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func (h *Handler) dashboard(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	stats, err := h.visits.Dashboard(c.Request.Context(), p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
