package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/pestcare-visits/internal/model"
)

func (h *Handler) getVisit(c *gin.Context) {
	id, err := parseVisitID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	visit, err := h.visits.GetVisit(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

type assignVisitRequest struct {
	TechnicianID string `json:"technician_id" binding:"required"`
}

func (h *Handler) assignVisit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := parseVisitID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	var req assignVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}
	techID, err := parseUUID(req.TechnicianID, "technician_id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	visit, err := h.visits.AssignTechnician(c.Request.Context(), p, id, techID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

type rescheduleVisitRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *Handler) rescheduleVisit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := parseVisitID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	var req rescheduleVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		h.handleError(c, err)
		return
	}

	visit, err := h.visits.Reschedule(c.Request.Context(), p, id, date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

// Report fields are validated by the lifecycle, not by binding, so an empty
// pest type surfaces as a validation error with a proper message.
type completeVisitRequest struct {
	PestType  string `json:"pest_type"`
	Chemicals string `json:"chemicals"`
	Notes     string `json:"notes"`
}

func (h *Handler) completeVisit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := parseVisitID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	var req completeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	visit, err := h.visits.Complete(c.Request.Context(), p, id, model.VisitReport{
		PestType:  req.PestType,
		Chemicals: req.Chemicals,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *Handler) cancelVisit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := parseVisitID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	visit, err := h.visits.Cancel(c.Request.Context(), p, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *Handler) visitReport(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := parseVisitID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	file, err := h.visits.VisitReport(c.Request.Context(), p, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, file)
}
