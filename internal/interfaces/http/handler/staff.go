package handler

import (
	"github.com/gin-gonic/gin"
	productionapp "github.com/spicemill/stockledger/internal/application/production"
)

// StaffHandler handles staff endpoints
type StaffHandler struct {
	BaseHandler
	staffService *productionapp.StaffService
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService *productionapp.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// Create adds a staff member
func (h *StaffHandler) Create(c *gin.Context) {
	var req productionapp.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	s, err := h.staffService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, s)
}

func (h *StaffHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	s, err := h.staffService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// List returns staff, optionally filtered by status
func (h *StaffHandler) List(c *gin.Context) {
	var filter productionapp.StaffListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	staff, err := h.staffService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, staff)
}

func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req productionapp.StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	s, err := h.staffService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

func (h *StaffHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.staffService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
