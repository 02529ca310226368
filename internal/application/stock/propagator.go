package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"go.uber.org/zap"
)

// PropagationObserver receives the outcome of each propagated event
type PropagationObserver interface {
	ObservePropagation(eventType string, err error, elapsed time.Duration)
}

// Changes are the records written by one propagation, to be pushed into the
// registry once the surrounding transaction has committed
type Changes []*stock.StockStatusRecord

type applyFunc func(ctx context.Context, repos TransactionalRepositories, event shared.DomainEvent) (Changes, error)

// Propagator keeps each material's period purchased and utilised totals in
// line with purchase and task transitions. Each event type has exactly one
// entry in the dispatch table.
type Propagator struct {
	scope    TransactionScope
	policy   stock.ClassificationPolicy
	registry *Registry
	observer PropagationObserver
	logger   *zap.Logger
	dispatch map[string]applyFunc
}

// NewPropagator creates a Propagator
func NewPropagator(scope TransactionScope, policy stock.ClassificationPolicy, logger *zap.Logger) *Propagator {
	if policy == nil {
		policy = stock.DefaultPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Propagator{
		scope:  scope,
		policy: policy,
		logger: logger,
	}
	p.dispatch = map[string]applyFunc{
		stock.EventTypePurchaseReceived:   p.applyPurchaseReceived,
		stock.EventTypePurchaseUnreceived: p.applyPurchaseUnreceived,
		stock.EventTypePurchaseEdited:     p.applyPurchaseEdited,
		stock.EventTypeTaskUtilised:       p.applyTaskUtilised,
	}
	return p
}

// SetRegistry attaches the shared stock registry
func (p *Propagator) SetRegistry(r *Registry) {
	p.registry = r
}

// SetObserver attaches a metrics observer
func (p *Propagator) SetObserver(o PropagationObserver) {
	p.observer = o
}

// EventTypes returns the event types this handler consumes
func (p *Propagator) EventTypes() []string {
	return stock.PropagationEventTypes()
}

// Handle propagates one event. Inside a Unit the event joins the caller's
// transaction and the registry refresh waits for Unit.Committed; otherwise
// it runs in its own transaction.
func (p *Propagator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if u := unitFrom(ctx); u != nil {
		changes, err := p.Apply(ctx, u.repos, event)
		if err != nil {
			return err
		}
		u.record(p.registry, changes)
		return nil
	}
	return p.Propagate(ctx, event)
}

// Propagate applies events in a single transaction and refreshes the registry
// after commit. On failure nothing is written and the registry is untouched;
// the caller may retry with the same events.
func (p *Propagator) Propagate(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	var changes Changes
	err := p.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		changes, err = p.Apply(ctx, repos, events...)
		return err
	})
	if err != nil {
		return err
	}
	p.Committed(ctx, changes)
	return nil
}

// Apply runs the events against repositories of an open transaction.
// Callers that own the transaction must call Committed after it commits.
func (p *Propagator) Apply(ctx context.Context, repos TransactionalRepositories, events ...shared.DomainEvent) (Changes, error) {
	var all Changes
	for _, event := range events {
		fn, ok := p.dispatch[event.EventType()]
		if !ok {
			continue
		}
		start := time.Now()
		changes, err := fn(ctx, repos, event)
		p.observe(event.EventType(), err, time.Since(start))
		if err != nil {
			p.logger.Error("stock propagation failed",
				zap.String("event_id", event.EventID().String()),
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
			return nil, wrapPropagation(event.EventType(), err)
		}
		all = append(all, changes...)
	}
	return all, nil
}

// Committed pushes committed changes into the registry
func (p *Propagator) Committed(ctx context.Context, changes Changes) {
	if len(changes) == 0 {
		return
	}
	p.registry.Update(ctx, changes...)
}

// OnPurchaseReceived adds a received purchase to its period's purchases
func (p *Propagator) OnPurchaseReceived(ctx context.Context, m stock.Movement) error {
	return p.Propagate(ctx, stock.NewPurchaseReceivedEvent(uuid.Nil, m))
}

// OnPurchaseUnreceived removes a previously received purchase
func (p *Propagator) OnPurchaseUnreceived(ctx context.Context, m stock.Movement) error {
	return p.Propagate(ctx, stock.NewPurchaseUnreceivedEvent(uuid.Nil, m))
}

// OnPurchaseEdited reverses old and applies updated as one atomic step
func (p *Propagator) OnPurchaseEdited(ctx context.Context, old, updated stock.Movement) error {
	return p.Propagate(ctx, stock.NewPurchaseEditedEvent(uuid.Nil, old, updated))
}

// OnTaskUtilised adds a task's assigned quantity to its period's utilisation
func (p *Propagator) OnTaskUtilised(ctx context.Context, m stock.Movement) error {
	return p.Propagate(ctx, stock.NewTaskUtilisedEvent(uuid.Nil, m))
}

func (p *Propagator) applyPurchaseReceived(ctx context.Context, repos TransactionalRepositories, event shared.DomainEvent) (Changes, error) {
	e, ok := event.(*stock.PurchaseReceivedEvent)
	if !ok {
		return nil, unexpectedEvent(event)
	}
	rec, err := p.receive(ctx, repos, e.Movement)
	if err != nil {
		return nil, err
	}
	return Changes{rec}, nil
}

func (p *Propagator) applyPurchaseUnreceived(ctx context.Context, repos TransactionalRepositories, event shared.DomainEvent) (Changes, error) {
	e, ok := event.(*stock.PurchaseUnreceivedEvent)
	if !ok {
		return nil, unexpectedEvent(event)
	}
	rec, err := p.unreceive(ctx, repos, e.Movement)
	if err != nil {
		return nil, err
	}
	return Changes{rec}, nil
}

func (p *Propagator) applyPurchaseEdited(ctx context.Context, repos TransactionalRepositories, event shared.DomainEvent) (Changes, error) {
	e, ok := event.(*stock.PurchaseEditedEvent)
	if !ok {
		return nil, unexpectedEvent(event)
	}
	reversed, err := p.unreceive(ctx, repos, e.Old)
	if err != nil {
		return nil, err
	}
	applied, err := p.receive(ctx, repos, e.New)
	if err != nil {
		return nil, err
	}
	return Changes{reversed, applied}, nil
}

func (p *Propagator) applyTaskUtilised(ctx context.Context, repos TransactionalRepositories, event shared.DomainEvent) (Changes, error) {
	e, ok := event.(*stock.TaskUtilisedEvent)
	if !ok {
		return nil, unexpectedEvent(event)
	}
	rec, err := p.adjust(ctx, repos, e.Movement, func(r *stock.StockStatusRecord, qty decimal.Decimal) {
		r.AddUtilised(qty)
	}, false)
	if err != nil {
		return nil, err
	}
	return Changes{rec}, nil
}

func (p *Propagator) receive(ctx context.Context, repos TransactionalRepositories, m stock.Movement) (*stock.StockStatusRecord, error) {
	return p.adjust(ctx, repos, m, func(r *stock.StockStatusRecord, qty decimal.Decimal) {
		r.AddPurchased(qty)
	}, true)
}

func (p *Propagator) unreceive(ctx context.Context, repos TransactionalRepositories, m stock.Movement) (*stock.StockStatusRecord, error) {
	return p.adjust(ctx, repos, m, func(r *stock.StockStatusRecord, qty decimal.Decimal) {
		r.AddPurchased(qty.Neg())
	}, false)
}

// adjust loads (or seeds) the movement's record, applies change, and saves it.
// The material's running stock figure moves in the same direction.
func (p *Propagator) adjust(
	ctx context.Context,
	repos TransactionalRepositories,
	m stock.Movement,
	change func(*stock.StockStatusRecord, decimal.Decimal),
	isAddition bool,
) (*stock.StockStatusRecord, error) {
	mat, err := resolveMaterial(ctx, repos.MaterialRepo(), m.Material)
	if err != nil {
		return nil, err
	}

	rec, _, err := getOrSeed(ctx, repos.StockStatusRepo(), mat, m.Period(), p.policy)
	if err != nil {
		return nil, err
	}
	change(rec, m.Quantity)
	if err := repos.StockStatusRepo().Save(ctx, rec); err != nil {
		return nil, shared.SaveFailed("stock status", err)
	}

	var date *time.Time
	if isAddition {
		date = &m.Date
	}
	mat.AdjustCurrentStock(m.Quantity, isAddition, date)
	if err := repos.MaterialRepo().Save(ctx, mat); err != nil {
		return nil, shared.SaveFailed("material stock", err)
	}
	return rec, nil
}

func (p *Propagator) observe(eventType string, err error, elapsed time.Duration) {
	if p.observer != nil {
		p.observer.ObservePropagation(eventType, err, elapsed)
	}
}

// wrapPropagation keeps NOT_FOUND as is and reports everything else as a
// failed propagation
func wrapPropagation(eventType string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return shared.PropagationFailed(eventType, err)
}

func unexpectedEvent(event shared.DomainEvent) error {
	return fmt.Errorf("unexpected payload %T for event type %s", event, event.EventType())
}
