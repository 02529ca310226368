package material

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/material"
)

// MaterialRequest creates or replaces a raw material
type MaterialRequest struct {
	Code          string          `json:"code" binding:"max=50"`
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Category      string          `json:"category" binding:"max=100"`
	Unit          string          `json:"unit" binding:"max=20"`
	MinStockLevel decimal.Decimal `json:"min_stock_level" binding:"nonneg,maxscale=4"`
}

// MaterialResponse represents a raw material
type MaterialResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Unit             string          `json:"unit"`
	MinStockLevel    decimal.Decimal `json:"min_stock_level"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MaterialListFilter represents filter options for the material list
type MaterialListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToMaterialResponse converts a domain RawMaterial to MaterialResponse
func ToMaterialResponse(m *material.RawMaterial) MaterialResponse {
	return MaterialResponse{
		ID:               m.ID,
		Code:             m.Code,
		Name:             m.Name,
		Category:         m.Category,
		Unit:             m.Unit,
		MinStockLevel:    m.MinStockLevel,
		CurrentStock:     m.CurrentStock,
		LastPurchaseDate: m.LastPurchaseDate,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
