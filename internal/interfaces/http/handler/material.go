package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	materialapp "github.com/spicemill/stockledger/internal/application/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// MaterialHandler serves the raw material master
type MaterialHandler struct {
	BaseHandler
	materialService *materialapp.MaterialService
	importService   *materialapp.ImportService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *materialapp.MaterialService, importService *materialapp.ImportService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		importService:   importService,
	}
}

// Create creates a raw material
func (h *MaterialHandler) Create(c *gin.Context) {
	var req materialapp.MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	m, err := h.materialService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

func (h *MaterialHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	m, err := h.materialService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// List lists raw materials
func (h *MaterialHandler) List(c *gin.Context) {
	var filter materialapp.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	materials, err := h.materialService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, materials)
}

// Update updates a raw material
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req materialapp.MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	m, err := h.materialService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import imports raw materials from CSV
//
// Accepts a multipart "file" field or a text/csv body. Rows are
// validated before anything is written.
func (h *MaterialHandler) Import(c *gin.Context) {
	mode := materialapp.ConflictMode(c.DefaultQuery("conflict_mode", string(materialapp.ConflictModeSkip)))
	if !mode.IsValid() {
		h.BadRequest(c, "conflict_mode must be skip, update or fail")
		return
	}

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			h.BadRequest(c, "file is required")
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.HandleError(c, shared.WrapDomainError(shared.CodeInvalidInput, "cannot read uploaded file", err))
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.importService.Import(c.Request.Context(), body, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
