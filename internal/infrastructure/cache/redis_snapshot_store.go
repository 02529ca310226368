package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

const defaultSnapshotPrefix = "stockledger:registry:"

// snapshot is the JSON form of a registry entry
type snapshot struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Opening   decimal.Decimal `json:"opening_bal"`
	Purchases decimal.Decimal `json:"purchases"`
	Utilised  decimal.Decimal `json:"utilised"`
	AdjPlus   decimal.Decimal `json:"adj_plus"`
	MinLevel  decimal.Decimal `json:"min_level"`
	Policy    string          `json:"policy"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RedisSnapshotStore keeps registry snapshots in one Redis hash per period,
// field = material name, so several API instances share the same view
type RedisSnapshotStore struct {
	client    redis.UniversalClient
	keyPrefix string
	policies  *stock.PolicyRegistry
}

// NewRedisSnapshotStore creates a snapshot store. policies resolves the
// policy name stored with each snapshot; nil uses the built-in policies.
func NewRedisSnapshotStore(client redis.UniversalClient, keyPrefix string, policies *stock.PolicyRegistry) *RedisSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = defaultSnapshotPrefix
	}
	if policies == nil {
		policies = stock.NewPolicyRegistry()
	}
	return &RedisSnapshotStore{client: client, keyPrefix: keyPrefix, policies: policies}
}

func (s *RedisSnapshotStore) key(period stock.Period) string {
	return s.keyPrefix + period.String()
}

// Put writes records into the period hash
func (s *RedisSnapshotStore) Put(ctx context.Context, period stock.Period, records ...stock.StockStatusRecord) error {
	if len(records) == 0 {
		return nil
	}
	values := make(map[string]any, len(records))
	for i := range records {
		data, err := json.Marshal(toSnapshot(&records[i]))
		if err != nil {
			return fmt.Errorf("encode snapshot %s: %w", records[i].Name, err)
		}
		values[records[i].Name] = data
	}
	if err := s.client.HSet(ctx, s.key(period), values).Err(); err != nil {
		return fmt.Errorf("write registry snapshot: %w", err)
	}
	return nil
}

// Get reads one material's snapshot
func (s *RedisSnapshotStore) Get(ctx context.Context, period stock.Period, name string) (*stock.StockStatusRecord, bool, error) {
	data, err := s.client.HGet(ctx, s.key(period), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read registry snapshot: %w", err)
	}
	rec, err := s.decode(period, data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// All reads every snapshot of the period
func (s *RedisSnapshotStore) All(ctx context.Context, period stock.Period) ([]stock.StockStatusRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key(period)).Result()
	if err != nil {
		return nil, fmt.Errorf("read registry snapshots: %w", err)
	}
	out := make([]stock.StockStatusRecord, 0, len(fields))
	for _, data := range fields {
		rec, err := s.decode(period, []byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Clear deletes the period hash
func (s *RedisSnapshotStore) Clear(ctx context.Context, period stock.Period) error {
	if err := s.client.Del(ctx, s.key(period)).Err(); err != nil {
		return fmt.Errorf("clear registry snapshots: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) decode(period stock.Period, data []byte) (*stock.StockStatusRecord, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode registry snapshot: %w", err)
	}
	rec := &stock.StockStatusRecord{
		BaseEntity: shared.BaseEntity{
			ID:        snap.ID,
			CreatedAt: snap.CreatedAt,
			UpdatedAt: snap.UpdatedAt,
		},
		Period:         period,
		Name:           snap.Name,
		Category:       snap.Category,
		OpeningBalance: snap.Opening,
		PurchasedQty:   snap.Purchases,
		UtilisedQty:    snap.Utilised,
		Adjustment:     snap.AdjPlus,
		MinLevel:       snap.MinLevel,
	}
	policy, err := s.policies.Get(snap.Policy)
	if err != nil {
		policy = s.policies.Default()
	}
	rec.ApplyPolicy(policy)
	return rec, nil
}

func toSnapshot(r *stock.StockStatusRecord) snapshot {
	return snapshot{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Opening:   r.OpeningBalance,
		Purchases: r.PurchasedQty,
		Utilised:  r.UtilisedQty,
		AdjPlus:   r.Adjustment,
		MinLevel:  r.MinLevel,
		Policy:    r.Policy().Name(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Ensure RedisSnapshotStore implements SnapshotStore
var _ stockapp.SnapshotStore = (*RedisSnapshotStore)(nil)
