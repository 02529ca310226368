package handler

import (
	"github.com/gin-gonic/gin"
	purchasingapp "github.com/spicemill/stockledger/internal/application/purchasing"
)

// VendorHandler handles vendor endpoints
type VendorHandler struct {
	BaseHandler
	vendorService *purchasingapp.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendorService *purchasingapp.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// Create creates a vendor
func (h *VendorHandler) Create(c *gin.Context) {
	var req purchasingapp.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	v, err := h.vendorService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

func (h *VendorHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	v, err := h.vendorService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// List lists vendors
func (h *VendorHandler) List(c *gin.Context) {
	var filter purchasingapp.VendorListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	vendors, err := h.vendorService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendors)
}

// Update updates a vendor
func (h *VendorHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req purchasingapp.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	v, err := h.vendorService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

func (h *VendorHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.vendorService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
