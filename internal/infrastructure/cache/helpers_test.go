package cache

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/stretchr/testify/require"
)

// staticRecords serves a fixed set of records for one period
type staticRecords struct {
	records []stock.StockStatusRecord
}

func (s *staticRecords) FindByID(context.Context, uuid.UUID) (*stock.StockStatusRecord, error) {
	return nil, shared.ErrNotFound
}

func (s *staticRecords) FindByNameAndPeriod(_ context.Context, name string, _ stock.Period) (*stock.StockStatusRecord, error) {
	for i := range s.records {
		if s.records[i].Name == name {
			r := s.records[i]
			return &r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *staticRecords) FindByPeriod(context.Context, stock.Period) ([]stock.StockStatusRecord, error) {
	return append([]stock.StockStatusRecord(nil), s.records...), nil
}

func (s *staticRecords) Save(context.Context, *stock.StockStatusRecord) error { return nil }

func (s *staticRecords) SaveBatch(context.Context, []*stock.StockStatusRecord) error { return nil }

func (s *staticRecords) ExistsForPeriod(context.Context, stock.Period) (bool, error) {
	return len(s.records) > 0, nil
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
