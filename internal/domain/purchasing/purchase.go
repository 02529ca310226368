package purchasing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// PurchaseStatus is the lifecycle state of a stock purchase
type PurchaseStatus string

const (
	PurchaseStatusOrdered   PurchaseStatus = "ordered"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid returns true if the status is known
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusOrdered, PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s PurchaseStatus) String() string {
	return string(s)
}

// StockPurchase is a purchase order line for one raw material.
// Only received purchases count towards stock.
type StockPurchase struct {
	shared.BaseAggregateRoot
	PurchaseDate  time.Time
	VendorID      *uuid.UUID
	VendorName    string
	PurchaseOrder string
	Invoice       string
	MaterialID    uuid.UUID
	MaterialName  string
	Quantity      decimal.Decimal
	Unit          string
	UnitPrice     decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        PurchaseStatus
}

// PurchaseDetails carries the editable purchase fields
type PurchaseDetails struct {
	PurchaseDate  time.Time
	VendorID      *uuid.UUID
	VendorName    string
	PurchaseOrder string
	Invoice       string
	MaterialID    uuid.UUID
	MaterialName  string
	Quantity      decimal.Decimal
	Unit          string
	UnitPrice     decimal.Decimal
	Status        PurchaseStatus
}

func (d PurchaseDetails) validate() error {
	if d.PurchaseDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase date is required")
	}
	if strings.TrimSpace(d.VendorName) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Vendor name is required")
	}
	if strings.TrimSpace(d.PurchaseOrder) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase order number is required")
	}
	if d.MaterialID == uuid.Nil && strings.TrimSpace(d.MaterialName) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Material is required")
	}
	if !d.Quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if err := shared.CheckQuantityScale("Quantity", d.Quantity); err != nil {
		return err
	}
	if d.UnitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	if !d.Status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid purchase status")
	}
	return nil
}

// NewStockPurchase creates a purchase. Status defaults to ordered; creating it
// directly as received raises PurchaseReceived.
func NewStockPurchase(details PurchaseDetails) (*StockPurchase, error) {
	if details.Status == "" {
		details.Status = PurchaseStatusOrdered
	}
	if err := details.validate(); err != nil {
		return nil, err
	}

	p := &StockPurchase{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	p.apply(details)

	if p.IsReceived() {
		p.AddDomainEvent(stock.NewPurchaseReceivedEvent(p.ID, p.movement()))
	}
	return p, nil
}

// Update replaces the purchase details and raises the events that keep stock
// consistent with the change:
//
//	not received -> received            PurchaseReceived(new)
//	received -> not received            PurchaseUnreceived(old)
//	received -> received, line changed  PurchaseEdited(old, new)
func (p *StockPurchase) Update(details PurchaseDetails) error {
	if details.Status == "" {
		details.Status = p.Status
	}
	if err := details.validate(); err != nil {
		return err
	}

	wasReceived := p.IsReceived()
	old := p.movement()

	p.apply(details)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	current := p.movement()
	switch {
	case !wasReceived && p.IsReceived():
		p.AddDomainEvent(stock.NewPurchaseReceivedEvent(p.ID, current))
	case wasReceived && !p.IsReceived():
		p.AddDomainEvent(stock.NewPurchaseUnreceivedEvent(p.ID, old))
	case wasReceived && p.IsReceived() && movementChanged(old, current):
		p.AddDomainEvent(stock.NewPurchaseEditedEvent(p.ID, old, current))
	}
	return nil
}

// MarkReceived moves the purchase to received
func (p *StockPurchase) MarkReceived() error {
	if p.Status == PurchaseStatusReceived {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase is already received")
	}
	p.Status = PurchaseStatusReceived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(stock.NewPurchaseReceivedEvent(p.ID, p.movement()))
	return nil
}

// Cancel cancels the purchase, reversing stock if it had been received
func (p *StockPurchase) Cancel() error {
	if p.Status == PurchaseStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase is already cancelled")
	}
	wasReceived := p.IsReceived()
	p.Status = PurchaseStatusCancelled
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	if wasReceived {
		p.AddDomainEvent(stock.NewPurchaseUnreceivedEvent(p.ID, p.movement()))
	}
	return nil
}

// MarkDeleted raises PurchaseUnreceived when a received purchase is removed
func (p *StockPurchase) MarkDeleted() {
	if p.IsReceived() {
		p.AddDomainEvent(stock.NewPurchaseUnreceivedEvent(p.ID, p.movement()))
	}
}

// IsReceived returns true if the purchase counts towards stock
func (p *StockPurchase) IsReceived() bool {
	return p.Status == PurchaseStatusReceived
}

func (p *StockPurchase) apply(d PurchaseDetails) {
	p.PurchaseDate = d.PurchaseDate
	p.VendorID = d.VendorID
	p.VendorName = strings.TrimSpace(d.VendorName)
	p.PurchaseOrder = strings.TrimSpace(d.PurchaseOrder)
	p.Invoice = strings.TrimSpace(d.Invoice)
	p.MaterialID = d.MaterialID
	p.MaterialName = strings.TrimSpace(d.MaterialName)
	p.Quantity = d.Quantity
	p.Unit = d.Unit
	if p.Unit == "" {
		p.Unit = "kg"
	}
	p.UnitPrice = d.UnitPrice
	p.TotalAmount = d.Quantity.Mul(d.UnitPrice)
	p.Status = d.Status
}

func (p *StockPurchase) movement() stock.Movement {
	return stock.Movement{
		Material: stock.MaterialRef{ID: p.MaterialID, Name: p.MaterialName},
		Quantity: p.Quantity,
		Date:     p.PurchaseDate,
	}
}

func movementChanged(a, b stock.Movement) bool {
	return a.Material != b.Material ||
		!a.Quantity.Equal(b.Quantity) ||
		stock.PeriodOf(a.Date) != stock.PeriodOf(b.Date)
}
