package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/service"
)

type createContractRequest struct {
	ClientID       string  `json:"client_id" binding:"required"`
	Type           string  `json:"type"`
	Cadence        string  `json:"cadence" binding:"required"`
	StartDate      string  `json:"start_date" binding:"required"`
	EndDate        string  `json:"end_date" binding:"required"`
	VisitsIncluded int     `json:"visits_included"`
	Price          float64 `json:"price"`
	IsPaid         bool    `json:"is_paid"`
}

func (h *Handler) createContract(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	clientID, err := parseUUID(req.ClientID, "client_id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		h.handleError(c, err)
		return
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		h.handleError(c, err)
		return
	}

	detail, err := h.visits.CreateContract(c.Request.Context(), service.CreateContractInput{
		ClientID:       clientID,
		Type:           model.ContractType(req.Type),
		Cadence:        model.Cadence(req.Cadence),
		StartDate:      start,
		EndDate:        end,
		VisitsIncluded: req.VisitsIncluded,
		Price:          req.Price,
		IsPaid:         req.IsPaid,
		Principal:      p,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *Handler) listContracts(c *gin.Context) {
	clientID, err := parseOptionalUUID(c.Query("client_id"), "client_id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	contracts, err := h.visits.ListContracts(c.Request.Context(), clientID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

func (h *Handler) getContract(c *gin.Context) {
	id, err := parseUUID(c.Param("id"), "contract id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	detail, err := h.visits.GetContract(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) contractVisits(c *gin.Context) {
	id, err := parseUUID(c.Param("id"), "contract id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	visits, err := h.visits.ContractVisits(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

type contractStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setContractStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := parseUUID(c.Param("id"), "contract id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	var req contractStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	contract, err := h.visits.SetContractStatus(c.Request.Context(), p, id, model.ContractStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type addVisitRequest struct {
	Date         string `json:"date" binding:"required"`
	TechnicianID string `json:"technician_id"`
}

func (h *Handler) addVisit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	contractID, err := parseUUID(c.Param("id"), "contract id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	var req addVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		h.handleError(c, err)
		return
	}
	techID, err := parseOptionalUUID(req.TechnicianID, "technician_id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	visit, err := h.visits.AddVisit(c.Request.Context(), service.AddVisitInput{
		ContractID:   contractID,
		Date:         date,
		TechnicianID: techID,
		Principal:    p,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, visit)
}
