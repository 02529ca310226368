package stock

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// Policy names
const (
	PolicyTwoTier   = "two_tier"
	PolicyThreeTier = "three_tier"
)

// criticalRatio is the fraction of minLevel at or below which the
// three-tier policy reports Critical.
var criticalRatio = decimal.NewFromFloat(0.3)

// ComputeClosing returns opening + purchased - utilised + adjustment.
// No rounding is applied.
func ComputeClosing(opening, purchased, utilised, adjustment decimal.Decimal) decimal.Decimal {
	return opening.Add(purchased).Sub(utilised).Add(adjustment)
}

// ClassificationPolicy maps a closing balance and minimum level to a Status
type ClassificationPolicy interface {
	Name() string
	Classify(closing, minLevel decimal.Decimal) Status
}

// TwoTierPolicy classifies into Normal, Low Stock and Out of Stock.
//
//	closing <= 0           -> Out of Stock
//	0 < closing < minLevel -> Low Stock
//	closing >= minLevel    -> Normal
type TwoTierPolicy struct{}

// Name returns the policy name
func (TwoTierPolicy) Name() string { return PolicyTwoTier }

// Classify applies the two-tier thresholds
func (TwoTierPolicy) Classify(closing, minLevel decimal.Decimal) Status {
	if closing.LessThanOrEqual(decimal.Zero) {
		return StatusOutOfStock
	}
	if closing.LessThan(minLevel) {
		return StatusLowStock
	}
	return StatusNormal
}

// ThreeTierPolicy adds a Critical band at 30% of minLevel.
//
//	closing <= 0              -> Out of Stock
//	closing <= minLevel * 0.3 -> Critical
//	closing <= minLevel       -> Low Stock
//	otherwise                 -> Normal
//
// Unlike TwoTierPolicy, a closing equal to minLevel is Low Stock.
type ThreeTierPolicy struct{}

// Name returns the policy name
func (ThreeTierPolicy) Name() string { return PolicyThreeTier }

// Classify applies the three-tier thresholds
func (ThreeTierPolicy) Classify(closing, minLevel decimal.Decimal) Status {
	if closing.LessThanOrEqual(decimal.Zero) {
		return StatusOutOfStock
	}
	if closing.LessThanOrEqual(minLevel.Mul(criticalRatio)) {
		return StatusCritical
	}
	if closing.LessThanOrEqual(minLevel) {
		return StatusLowStock
	}
	return StatusNormal
}

// DefaultPolicy is used when a record has no explicit policy
var DefaultPolicy ClassificationPolicy = TwoTierPolicy{}

// PolicyRegistry holds named classification policies and a default
type PolicyRegistry struct {
	mu          sync.RWMutex
	policies    map[string]ClassificationPolicy
	defaultName string
}

// NewPolicyRegistry creates a registry with the two-tier and three-tier
// policies registered and two-tier as the default.
func NewPolicyRegistry() *PolicyRegistry {
	r := &PolicyRegistry{
		policies:    make(map[string]ClassificationPolicy),
		defaultName: PolicyTwoTier,
	}
	r.policies[PolicyTwoTier] = TwoTierPolicy{}
	r.policies[PolicyThreeTier] = ThreeTierPolicy{}
	return r
}

// Register adds a policy
func (r *PolicyRegistry) Register(p ClassificationPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.policies[name]; exists {
		return fmt.Errorf("%w: policy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.policies[name] = p
	return nil
}

// SetDefault selects the policy used when a caller passes an empty name
func (r *PolicyRegistry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.policies[name]; !exists {
		return fmt.Errorf("%w: policy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultName = name
	return nil
}

// Get returns a policy by name, or the default if name is empty
func (r *PolicyRegistry) Get(name string) (ClassificationPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultName
	}
	p, exists := r.policies[name]
	if !exists {
		return nil, fmt.Errorf("%w: policy '%s' not found", shared.ErrNotFound, name)
	}
	return p, nil
}

// Default returns the default policy
func (r *PolicyRegistry) Default() ClassificationPolicy {
	p, err := r.Get("")
	if err != nil {
		return DefaultPolicy
	}
	return p
}

// Names returns all registered policy names, sorted
func (r *PolicyRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
