package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// Event types consumed by stock propagation. Purchases and tasks emit them;
// the stock status module only reads them.
const (
	EventTypePurchaseReceived   = "PurchaseReceived"
	EventTypePurchaseUnreceived = "PurchaseUnreceived"
	EventTypePurchaseEdited     = "PurchaseEdited"
	EventTypeTaskUtilised       = "TaskUtilised"
)

// Aggregate types for the event sources
const (
	AggregateTypePurchase = "StockPurchase"
	AggregateTypeTask     = "Task"
)

// MaterialRef identifies a material by ID, by name, or both.
// Propagation resolves by ID when present.
type MaterialRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Movement is a quantity of one material moved on one date
type Movement struct {
	Material MaterialRef     `json:"material"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     time.Time       `json:"date"`
}

// Period returns the period the movement belongs to
func (m Movement) Period() Period {
	return PeriodOf(m.Date)
}

// PurchaseReceivedEvent is raised when a purchase enters the received state
type PurchaseReceivedEvent struct {
	shared.BaseDomainEvent
	Movement
}

// NewPurchaseReceivedEvent creates a PurchaseReceivedEvent
func NewPurchaseReceivedEvent(purchaseID uuid.UUID, m Movement) *PurchaseReceivedEvent {
	return &PurchaseReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReceived, AggregateTypePurchase, purchaseID),
		Movement:        m,
	}
}

// PurchaseUnreceivedEvent is raised when a received purchase leaves the
// received state or is deleted
type PurchaseUnreceivedEvent struct {
	shared.BaseDomainEvent
	Movement
}

// NewPurchaseUnreceivedEvent creates a PurchaseUnreceivedEvent
func NewPurchaseUnreceivedEvent(purchaseID uuid.UUID, m Movement) *PurchaseUnreceivedEvent {
	return &PurchaseUnreceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseUnreceived, AggregateTypePurchase, purchaseID),
		Movement:        m,
	}
}

// PurchaseEditedEvent is raised when a purchase stays received but its
// material, quantity or date changed. It is applied as Old reversed then New
// applied, atomically.
type PurchaseEditedEvent struct {
	shared.BaseDomainEvent
	Old Movement `json:"old"`
	New Movement `json:"new"`
}

// NewPurchaseEditedEvent creates a PurchaseEditedEvent
func NewPurchaseEditedEvent(purchaseID uuid.UUID, old, updated Movement) *PurchaseEditedEvent {
	return &PurchaseEditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseEdited, AggregateTypePurchase, purchaseID),
		Old:             old,
		New:             updated,
	}
}

// TaskUtilisedEvent is raised once per task when it first leaves pending
type TaskUtilisedEvent struct {
	shared.BaseDomainEvent
	Movement
}

// NewTaskUtilisedEvent creates a TaskUtilisedEvent
func NewTaskUtilisedEvent(taskID uuid.UUID, m Movement) *TaskUtilisedEvent {
	return &TaskUtilisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskUtilised, AggregateTypeTask, taskID),
		Movement:        m,
	}
}

// PropagationEventTypes lists every event type the propagator handles
func PropagationEventTypes() []string {
	return []string{
		EventTypePurchaseReceived,
		EventTypePurchaseUnreceived,
		EventTypePurchaseEdited,
		EventTypeTaskUtilised,
	}
}
