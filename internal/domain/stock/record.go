package stock

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// StockStatusRecord is one material's balance for one period.
//
// ClosingBalance and Status are derived: every mutator recomputes them from
// the four inputs and the minimum level, so they are never stored out of sync.
type StockStatusRecord struct {
	shared.BaseEntity
	Period         Period
	Name           string
	Category       string
	OpeningBalance decimal.Decimal
	PurchasedQty   decimal.Decimal
	UtilisedQty    decimal.Decimal
	Adjustment     decimal.Decimal
	MinLevel       decimal.Decimal
	ClosingBalance decimal.Decimal
	Status         Status

	policy ClassificationPolicy
}

// NewStockStatusRecord creates an empty record seeded with an opening balance
func NewStockStatusRecord(period Period, name, category string, opening, minLevel decimal.Decimal, policy ClassificationPolicy) (*StockStatusRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Material name cannot be empty")
	}
	if period.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Period is required")
	}
	if minLevel.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Minimum level cannot be negative")
	}
	if err := shared.CheckQuantityScale("Opening balance", opening); err != nil {
		return nil, err
	}
	if err := shared.CheckQuantityScale("Minimum level", minLevel); err != nil {
		return nil, err
	}

	r := &StockStatusRecord{
		BaseEntity:     shared.NewBaseEntity(),
		Period:         period,
		Name:           name,
		Category:       category,
		OpeningBalance: opening,
		PurchasedQty:   decimal.Zero,
		UtilisedQty:    decimal.Zero,
		Adjustment:     decimal.Zero,
		MinLevel:       minLevel,
		policy:         policy,
	}
	r.recompute()
	return r, nil
}

// Policy returns the classification policy in effect
func (r *StockStatusRecord) Policy() ClassificationPolicy {
	if r.policy == nil {
		return DefaultPolicy
	}
	return r.policy
}

// ApplyPolicy switches the classification policy and reclassifies
func (r *StockStatusRecord) ApplyPolicy(p ClassificationPolicy) {
	r.policy = p
	r.recompute()
}

// Recompute refreshes the derived closing balance and status.
// Call it after loading a record from storage.
func (r *StockStatusRecord) Recompute() {
	r.recompute()
}

func (r *StockStatusRecord) recompute() {
	r.ClosingBalance = ComputeClosing(r.OpeningBalance, r.PurchasedQty, r.UtilisedQty, r.Adjustment)
	r.Status = r.Policy().Classify(r.ClosingBalance, r.MinLevel)
}

func (r *StockStatusRecord) touch() {
	r.recompute()
	r.UpdatedAt = time.Now()
}

// AddPurchased adds qty (which may be negative) to the purchased total
func (r *StockStatusRecord) AddPurchased(qty decimal.Decimal) {
	r.PurchasedQty = r.PurchasedQty.Add(qty)
	r.touch()
}

// AddUtilised adds qty to the utilised total
func (r *StockStatusRecord) AddUtilised(qty decimal.Decimal) {
	r.UtilisedQty = r.UtilisedQty.Add(qty)
	r.touch()
}

// SetOpeningBalance overrides the opening balance
func (r *StockStatusRecord) SetOpeningBalance(v decimal.Decimal) error {
	if err := shared.CheckQuantityScale("Opening balance", v); err != nil {
		return err
	}
	r.OpeningBalance = v
	r.touch()
	return nil
}

// SetAdjustment sets the signed manual correction
func (r *StockStatusRecord) SetAdjustment(v decimal.Decimal) error {
	if err := shared.CheckQuantityScale("Adjustment", v); err != nil {
		return err
	}
	r.Adjustment = v
	r.touch()
	return nil
}

// SetMinLevel changes the reorder threshold
func (r *StockStatusRecord) SetMinLevel(v decimal.Decimal) error {
	if v.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Minimum level cannot be negative")
	}
	if err := shared.CheckQuantityScale("Minimum level", v); err != nil {
		return err
	}
	r.MinLevel = v
	r.touch()
	return nil
}

// SetTotals replaces the purchased and utilised totals, used when the period
// is recalculated from its source documents.
func (r *StockStatusRecord) SetTotals(purchased, utilised decimal.Decimal) error {
	if err := shared.CheckQuantityScale("Purchases", purchased); err != nil {
		return err
	}
	if err := shared.CheckQuantityScale("Utilised", utilised); err != nil {
		return err
	}
	r.PurchasedQty = purchased
	r.UtilisedQty = utilised
	r.touch()
	return nil
}

// Clone returns a copy safe to hand to readers
func (r *StockStatusRecord) Clone() *StockStatusRecord {
	c := *r
	return &c
}
