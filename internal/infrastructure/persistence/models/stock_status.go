package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// StockStatusModel is one row of the monthly stock status sheet.
// Date holds the first day of the month.
type StockStatusModel struct {
	BaseModel
	Date       time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:idx_stock_status_date_name,priority:1"`
	Name       string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_stock_status_date_name,priority:2"`
	Category   string          `gorm:"type:varchar(100)"`
	OpeningBal decimal.Decimal `gorm:"column:opening_bal;type:decimal(18,4);not null;default:0"`
	Purchases  decimal.Decimal `gorm:"column:purchases;type:decimal(18,4);not null;default:0"`
	Utilised   decimal.Decimal `gorm:"column:utilised;type:decimal(18,4);not null;default:0"`
	AdjPlus    decimal.Decimal `gorm:"column:adj_plus;type:decimal(18,4);not null;default:0"`
	ClosingBal decimal.Decimal `gorm:"column:closing_bal;type:decimal(18,4);not null;default:0"`
	MinLevel   decimal.Decimal `gorm:"column:min_level;type:decimal(18,4);not null;default:0"`
	Status     string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (StockStatusModel) TableName() string {
	return "stock_status"
}

// ToDomain converts the persistence model to a domain StockStatusRecord.
// Closing balance and status are recomputed from the stored inputs.
func (m *StockStatusModel) ToDomain() *stock.StockStatusRecord {
	r := &stock.StockStatusRecord{
		BaseEntity:     m.BaseModel.ToDomain(),
		Period:         stock.PeriodOf(m.Date),
		Name:           m.Name,
		Category:       m.Category,
		OpeningBalance: m.OpeningBal,
		PurchasedQty:   m.Purchases,
		UtilisedQty:    m.Utilised,
		Adjustment:     m.AdjPlus,
		MinLevel:       m.MinLevel,
		ClosingBalance: m.ClosingBal,
		Status:         stock.Status(m.Status),
	}
	r.Recompute()
	return r
}

// FromDomain populates the persistence model from a domain StockStatusRecord
func (m *StockStatusModel) FromDomain(r *stock.StockStatusRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Date = r.Period.Start()
	m.Name = r.Name
	m.Category = r.Category
	m.OpeningBal = r.OpeningBalance
	m.Purchases = r.PurchasedQty
	m.Utilised = r.UtilisedQty
	m.AdjPlus = r.Adjustment
	m.ClosingBal = r.ClosingBalance
	m.MinLevel = r.MinLevel
	m.Status = string(r.Status)
}

// StockStatusModelFromDomain creates a persistence model from a domain StockStatusRecord
func StockStatusModelFromDomain(r *stock.StockStatusRecord) *StockStatusModel {
	m := &StockStatusModel{}
	m.FromDomain(r)
	return m
}
