package material

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// RawMaterial is the master record for a purchasable, consumable material
type RawMaterial struct {
	shared.BaseAggregateRoot
	Code             string
	Name             string
	Category         string
	Unit             string
	MinStockLevel    decimal.Decimal
	CurrentStock     decimal.Decimal
	LastPurchaseDate *time.Time
}

// NewRawMaterial creates a new raw material
func NewRawMaterial(code, name, category, unit string, minStockLevel decimal.Decimal) (*RawMaterial, error) {
	m := &RawMaterial{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CurrentStock:      decimal.Zero,
	}
	if err := m.Update(code, name, category, unit, minStockLevel); err != nil {
		return nil, err
	}
	return m, nil
}

// Update changes the descriptive fields and the reorder threshold
func (m *RawMaterial) Update(code, name, category, unit string, minStockLevel decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Material name cannot exceed 200 characters")
	}
	if minStockLevel.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Minimum stock level cannot be negative")
	}
	if err := shared.CheckQuantityScale("Minimum stock level", minStockLevel); err != nil {
		return err
	}
	if unit == "" {
		unit = "kg"
	}

	m.Code = strings.TrimSpace(code)
	m.Name = name
	m.Category = strings.TrimSpace(category)
	m.Unit = unit
	m.MinStockLevel = minStockLevel
	m.UpdatedAt = time.Now()
	return nil
}

// AdjustCurrentStock adds or removes qty from the running stock figure.
// Removal never takes the figure below zero. Additions stamp the purchase date.
func (m *RawMaterial) AdjustCurrentStock(qty decimal.Decimal, isAddition bool, purchaseDate *time.Time) {
	if isAddition {
		m.CurrentStock = m.CurrentStock.Add(qty)
		if purchaseDate != nil {
			d := *purchaseDate
			m.LastPurchaseDate = &d
		}
	} else {
		m.CurrentStock = decimal.Max(decimal.Zero, m.CurrentStock.Sub(qty))
	}
	m.UpdatedAt = time.Now()
}
