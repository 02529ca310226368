package production

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// ProcessStage groups production processes on the status sheet
type ProcessStage string

const (
	StagePreProduction ProcessStage = "Pre-Prod"
	StageProduction    ProcessStage = "Production"
)

// IsValid returns true if the stage is known
func (s ProcessStage) IsValid() bool {
	return s == StagePreProduction || s == StageProduction
}

// SheetKey identifies one production status sheet: a date, a stage and a
// process. The sheet's month is the month of Date.
type SheetKey struct {
	Date    time.Time
	Stage   ProcessStage
	Process string
}

// NewSheetKey validates and normalises a sheet key. Date is truncated to the day.
func NewSheetKey(date time.Time, stage ProcessStage, process string) (SheetKey, error) {
	if date.IsZero() {
		return SheetKey{}, shared.NewDomainError(shared.CodeInvalidInput, "Status date is required")
	}
	if !stage.IsValid() {
		return SheetKey{}, shared.NewDomainError(shared.CodeInvalidInput, "Invalid process stage "+string(stage))
	}
	process = strings.TrimSpace(process)
	if process == "" {
		return SheetKey{}, shared.NewDomainError(shared.CodeInvalidInput, "Process is required")
	}
	return SheetKey{
		Date:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Stage:   stage,
		Process: process,
	}, nil
}

// Period returns the month the sheet belongs to
func (k SheetKey) Period() stock.Period {
	return stock.PeriodOf(k.Date)
}

// ProductionInputs are the user-maintained columns of one sheet row.
// Assigned and Pending are shown for reference and do not enter the closing.
type ProductionInputs struct {
	Name        string
	Category    string
	Opening     decimal.Decimal
	Assigned    decimal.Decimal
	Completed   decimal.Decimal
	Wastage     decimal.Decimal
	Pending     decimal.Decimal
	Adjustments decimal.Decimal
	MinLevel    decimal.Decimal
}

func (in ProductionInputs) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Item name cannot be empty")
	}
	for _, q := range []struct {
		field string
		value decimal.Decimal
	}{
		{"Assigned", in.Assigned},
		{"Completed", in.Completed},
		{"Wastage", in.Wastage},
		{"Pending", in.Pending},
		{"Minimum level", in.MinLevel},
	} {
		if q.value.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, q.field+" cannot be negative")
		}
		if err := shared.CheckQuantityScale(q.field, q.value); err != nil {
			return err
		}
	}
	if err := shared.CheckQuantityScale("Opening", in.Opening); err != nil {
		return err
	}
	return shared.CheckQuantityScale("Adjustments", in.Adjustments)
}

// ProductionStatusRecord is one item's balance on a production status sheet.
// Closing and Status are derived from the inputs on every change:
//
//	closing = opening + completed - wastage + adjustments
type ProductionStatusRecord struct {
	shared.BaseEntity
	Key         SheetKey
	Name        string
	Category    string
	Opening     decimal.Decimal
	Assigned    decimal.Decimal
	Completed   decimal.Decimal
	Wastage     decimal.Decimal
	Pending     decimal.Decimal
	Adjustments decimal.Decimal
	MinLevel    decimal.Decimal
	Closing     decimal.Decimal
	Status      stock.Status

	policy stock.ClassificationPolicy
}

// NewProductionStatusRecord creates a sheet row
func NewProductionStatusRecord(key SheetKey, in ProductionInputs, policy stock.ClassificationPolicy) (*ProductionStatusRecord, error) {
	if key.Date.IsZero() || !key.Stage.IsValid() || key.Process == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid production status sheet")
	}
	r := &ProductionStatusRecord{
		BaseEntity: shared.NewBaseEntity(),
		Key:        key,
		policy:     policy,
	}
	if err := r.SetInputs(in); err != nil {
		return nil, err
	}
	return r, nil
}

// SetInputs replaces every user-maintained column
func (r *ProductionStatusRecord) SetInputs(in ProductionInputs) error {
	if err := in.validate(); err != nil {
		return err
	}
	r.Name = strings.TrimSpace(in.Name)
	r.Category = strings.TrimSpace(in.Category)
	r.Opening = in.Opening
	r.Assigned = in.Assigned
	r.Completed = in.Completed
	r.Wastage = in.Wastage
	r.Pending = in.Pending
	r.Adjustments = in.Adjustments
	r.MinLevel = in.MinLevel
	r.touch()
	return nil
}

// Inputs returns the user-maintained columns
func (r *ProductionStatusRecord) Inputs() ProductionInputs {
	return ProductionInputs{
		Name:        r.Name,
		Category:    r.Category,
		Opening:     r.Opening,
		Assigned:    r.Assigned,
		Completed:   r.Completed,
		Wastage:     r.Wastage,
		Pending:     r.Pending,
		Adjustments: r.Adjustments,
		MinLevel:    r.MinLevel,
	}
}

// CarryForward starts the row for a later sheet: the closing becomes the
// opening and the movement columns start at zero.
func (r *ProductionStatusRecord) CarryForward(key SheetKey) (*ProductionStatusRecord, error) {
	return NewProductionStatusRecord(key, ProductionInputs{
		Name:     r.Name,
		Category: r.Category,
		Opening:  r.Closing,
		MinLevel: r.MinLevel,
	}, r.policy)
}

// Policy returns the classification policy in effect. Production sheets
// default to three tiers.
func (r *ProductionStatusRecord) Policy() stock.ClassificationPolicy {
	if r.policy == nil {
		return stock.ThreeTierPolicy{}
	}
	return r.policy
}

// ApplyPolicy switches the classification policy and reclassifies
func (r *ProductionStatusRecord) ApplyPolicy(p stock.ClassificationPolicy) {
	r.policy = p
	r.Recompute()
}

// Recompute refreshes closing and status. Call it after loading from storage.
func (r *ProductionStatusRecord) Recompute() {
	r.Closing = stock.ComputeClosing(r.Opening, r.Completed, r.Wastage, r.Adjustments)
	r.Status = r.Policy().Classify(r.Closing, r.MinLevel)
}

func (r *ProductionStatusRecord) touch() {
	r.Recompute()
	r.UpdatedAt = time.Now()
}
