package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// ProductionStatusModel is one row of a production status sheet. A sheet is
// identified by date, process stage and process; month is derived from date
// and kept for month-wide queries.
type ProductionStatusModel struct {
	BaseModel
	Date         time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:idx_production_status_sheet_name,priority:1"`
	ProcessStage string          `gorm:"column:process_stage;type:varchar(20);not null;uniqueIndex:idx_production_status_sheet_name,priority:2"`
	Process      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_production_status_sheet_name,priority:3"`
	Name         string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_production_status_sheet_name,priority:4"`
	Month        string          `gorm:"type:varchar(7);not null;index"`
	Category     string          `gorm:"type:varchar(100)"`
	Opening      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Assigned     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Completed    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Wastage      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Pending      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Adjustments  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Closing      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinLevel     decimal.Decimal `gorm:"column:min_level;type:decimal(18,4);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ProductionStatusModel) TableName() string {
	return "production_status"
}

// ToDomain converts the persistence model to a domain ProductionStatusRecord.
// Closing and status are recomputed from the stored inputs.
func (m *ProductionStatusModel) ToDomain() *production.ProductionStatusRecord {
	r := &production.ProductionStatusRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		Key: production.SheetKey{
			Date:    m.Date.UTC(),
			Stage:   production.ProcessStage(m.ProcessStage),
			Process: m.Process,
		},
		Name:        m.Name,
		Category:    m.Category,
		Opening:     m.Opening,
		Assigned:    m.Assigned,
		Completed:   m.Completed,
		Wastage:     m.Wastage,
		Pending:     m.Pending,
		Adjustments: m.Adjustments,
		MinLevel:    m.MinLevel,
		Closing:     m.Closing,
		Status:      stock.Status(m.Status),
	}
	r.Recompute()
	return r
}

// FromDomain populates the persistence model from a domain ProductionStatusRecord
func (m *ProductionStatusModel) FromDomain(r *production.ProductionStatusRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Date = r.Key.Date
	m.ProcessStage = string(r.Key.Stage)
	m.Process = r.Key.Process
	m.Month = r.Key.Period().String()
	m.Name = r.Name
	m.Category = r.Category
	m.Opening = r.Opening
	m.Assigned = r.Assigned
	m.Completed = r.Completed
	m.Wastage = r.Wastage
	m.Pending = r.Pending
	m.Adjustments = r.Adjustments
	m.Closing = r.Closing
	m.MinLevel = r.MinLevel
	m.Status = string(r.Status)
}

// ProductionStatusModelFromDomain creates a persistence model from a domain ProductionStatusRecord
func ProductionStatusModelFromDomain(r *production.ProductionStatusRecord) *ProductionStatusModel {
	m := &ProductionStatusModel{}
	m.FromDomain(r)
	return m
}
