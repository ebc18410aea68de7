package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/service"
)

type createClientRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	Emirate      string `json:"emirate"`
	Address      string `json:"address"`
	UnitNumber   string `json:"unit_number"`
	PropertyType string `json:"property_type"`
}

func (h *Handler) createClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), service.CreateClientInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Emirate:      req.Emirate,
		Address:      req.Address,
		UnitNumber:   req.UnitNumber,
		PropertyType: model.PropertyType(req.PropertyType),
		Principal:    p,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.clients.ListClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *Handler) getClient(c *gin.Context) {
	id, err := parseUUID(c.Param("id"), "client id")
	if err != nil {
		h.handleError(c, err)
		return
	}
	client, err := h.clients.GetClient(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

type createTechnicianRequest struct {
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Color string `json:"color"`
}

func (h *Handler) createTechnician(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	tech, err := h.clients.CreateTechnician(c.Request.Context(), service.CreateTechnicianInput{
		Name:      req.Name,
		Role:      req.Role,
		Email:     req.Email,
		Color:     req.Color,
		Principal: p,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tech)
}

func (h *Handler) listTechnicians(c *gin.Context) {
	techs, err := h.clients.ListTechnicians(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technicians": techs})
}
