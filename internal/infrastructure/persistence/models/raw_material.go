package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/material"
)

// RawMaterialModel is the persistence model for the RawMaterial aggregate root
type RawMaterialModel struct {
	AggregateModel
	Code             string          `gorm:"type:varchar(50)"`
	Name             string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_raw_material_name"`
	Category         string          `gorm:"type:varchar(100)"`
	Unit             string          `gorm:"type:varchar(20);not null;default:'kg'"`
	MinStockLevel    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchaseDate *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (RawMaterialModel) TableName() string {
	return "raw_materials"
}

// ToDomain converts the persistence model to a domain RawMaterial
func (m *RawMaterialModel) ToDomain() *material.RawMaterial {
	return &material.RawMaterial{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Category:          m.Category,
		Unit:              m.Unit,
		MinStockLevel:     m.MinStockLevel,
		CurrentStock:      m.CurrentStock,
		LastPurchaseDate:  m.LastPurchaseDate,
	}
}

// FromDomain populates the persistence model from a domain RawMaterial
func (m *RawMaterialModel) FromDomain(r *material.RawMaterial) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Category = r.Category
	m.Unit = r.Unit
	m.MinStockLevel = r.MinStockLevel
	m.CurrentStock = r.CurrentStock
	m.LastPurchaseDate = r.LastPurchaseDate
}

// RawMaterialModelFromDomain creates a persistence model from a domain RawMaterial
func RawMaterialModelFromDomain(r *material.RawMaterial) *RawMaterialModel {
	m := &RawMaterialModel{}
	m.FromDomain(r)
	return m
}
