package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
)

// =============================================================================
// Vendor DTOs
// =============================================================================

// VendorRequest creates or replaces a vendor
type VendorRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Phone         string `json:"phone" binding:"max=50"`
	Address       string `json:"address" binding:"max=500"`
	GSTIN         string `json:"gstin" binding:"omitempty,len=15"`
	Status        string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r VendorRequest) details() purchasing.VendorDetails {
	return purchasing.VendorDetails{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		GSTIN:         r.GSTIN,
		Status:        purchasing.VendorStatus(r.Status),
	}
}

// VendorResponse represents a vendor
type VendorResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	GSTIN         string    `json:"gstin"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VendorListFilter represents filter options for the vendor list
type VendorListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToVendorResponse converts a domain Vendor to VendorResponse
func ToVendorResponse(v *purchasing.Vendor) VendorResponse {
	return VendorResponse{
		ID:            v.ID,
		Name:          v.Name,
		ContactPerson: v.ContactPerson,
		Email:         v.Email,
		Phone:         v.Phone,
		Address:       v.Address,
		GSTIN:         v.GSTIN,
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// =============================================================================
// Purchase DTOs
// =============================================================================

// PurchaseRequest creates or replaces a purchase.
// The material is identified by MaterialID or, failing that, MaterialName.
type PurchaseRequest struct {
	PurchaseDate  string          `json:"purchase_date" binding:"required,datetime=2006-01-02"`
	VendorID      *uuid.UUID      `json:"vendor_id"`
	VendorName    string          `json:"vendor_name" binding:"max=200"`
	PurchaseOrder string          `json:"purchase_order" binding:"required,max=50"`
	Invoice       string          `json:"invoice" binding:"max=50"`
	MaterialID    *uuid.UUID      `json:"material_id"`
	MaterialName  string          `json:"material_name" binding:"max=200"`
	Quantity      decimal.Decimal `json:"quantity" binding:"maxscale=4"`
	Unit          string          `json:"unit" binding:"max=20"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"nonneg"`
	Status        string          `json:"status" binding:"omitempty,oneof=ordered received cancelled"`
}

// PurchaseResponse represents a stock purchase
type PurchaseResponse struct {
	ID            uuid.UUID       `json:"id"`
	PurchaseDate  string          `json:"purchase_date"`
	VendorID      *uuid.UUID      `json:"vendor_id,omitempty"`
	VendorName    string          `json:"vendor_name"`
	PurchaseOrder string          `json:"purchase_order"`
	Invoice       string          `json:"invoice"`
	MaterialID    uuid.UUID       `json:"material_id"`
	MaterialName  string          `json:"material_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PurchaseListFilter represents filter options for the purchase list
type PurchaseListFilter struct {
	Month      string     `form:"month"`
	Status     string     `form:"status" binding:"omitempty,oneof=ordered received cancelled"`
	MaterialID *uuid.UUID `form:"material_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=500"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToPurchaseResponse converts a domain StockPurchase to PurchaseResponse
func ToPurchaseResponse(p *purchasing.StockPurchase) PurchaseResponse {
	return PurchaseResponse{
		ID:            p.ID,
		PurchaseDate:  p.PurchaseDate.Format(time.DateOnly),
		VendorID:      p.VendorID,
		VendorName:    p.VendorName,
		PurchaseOrder: p.PurchaseOrder,
		Invoice:       p.Invoice,
		MaterialID:    p.MaterialID,
		MaterialName:  p.MaterialName,
		Quantity:      p.Quantity,
		Unit:          p.Unit,
		UnitPrice:     p.UnitPrice,
		TotalAmount:   p.TotalAmount,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
