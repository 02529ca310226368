package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
)

// StockPurchaseModel is the persistence model for the StockPurchase aggregate root
type StockPurchaseModel struct {
	AggregateModel
	PurchaseDate  time.Time       `gorm:"type:date;not null;index:idx_stock_purchase_date_status,priority:1"`
	VendorID      *uuid.UUID      `gorm:"type:uuid;index"`
	VendorName    string          `gorm:"type:varchar(200);not null"`
	PurchaseOrder string          `gorm:"type:varchar(50);not null"`
	Invoice       string          `gorm:"type:varchar(50)"`
	MaterialID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialName  string          `gorm:"type:varchar(200);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit          string          `gorm:"type:varchar(20);not null;default:'kg'"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null;default:'ordered';index:idx_stock_purchase_date_status,priority:2"`
}

// TableName returns the table name for GORM
func (StockPurchaseModel) TableName() string {
	return "stock_purchases"
}

// ToDomain converts the persistence model to a domain StockPurchase
func (m *StockPurchaseModel) ToDomain() *purchasing.StockPurchase {
	return &purchasing.StockPurchase{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PurchaseDate:      m.PurchaseDate,
		VendorID:          m.VendorID,
		VendorName:        m.VendorName,
		PurchaseOrder:     m.PurchaseOrder,
		Invoice:           m.Invoice,
		MaterialID:        m.MaterialID,
		MaterialName:      m.MaterialName,
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		UnitPrice:         m.UnitPrice,
		TotalAmount:       m.TotalAmount,
		Status:            purchasing.PurchaseStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain StockPurchase
func (m *StockPurchaseModel) FromDomain(p *purchasing.StockPurchase) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PurchaseDate = p.PurchaseDate
	m.VendorID = p.VendorID
	m.VendorName = p.VendorName
	m.PurchaseOrder = p.PurchaseOrder
	m.Invoice = p.Invoice
	m.MaterialID = p.MaterialID
	m.MaterialName = p.MaterialName
	m.Quantity = p.Quantity
	m.Unit = p.Unit
	m.UnitPrice = p.UnitPrice
	m.TotalAmount = p.TotalAmount
	m.Status = string(p.Status)
}

// StockPurchaseModelFromDomain creates a persistence model from a domain StockPurchase
func StockPurchaseModelFromDomain(p *purchasing.StockPurchase) *StockPurchaseModel {
	m := &StockPurchaseModel{}
	m.FromDomain(p)
	return m
}
