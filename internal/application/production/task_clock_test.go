package production

import (
	"testing"
	"time"

	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/stretchr/testify/assert"
)

func TestTaskService_NowFollowsConfiguredZone(t *testing.T) {
	instant := time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)

	ist := NewTaskService(nil, nil, nil, nil, nil, time.FixedZone("IST", 5*3600+1800), nil)
	ist.clock = func() time.Time { return instant }
	now := ist.now()
	assert.Equal(t, stock.Period{Year: 2024, Month: time.April}, stock.PeriodOf(now))
	assert.Equal(t, time.UTC, now.Location())
	assert.Equal(t, 1, now.Hour())
	assert.Equal(t, 30, now.Minute())

	utc := NewTaskService(nil, nil, nil, nil, nil, nil, nil)
	utc.clock = func() time.Time { return instant }
	assert.Equal(t, stock.Period{Year: 2024, Month: time.March}, stock.PeriodOf(utc.now()))
}
