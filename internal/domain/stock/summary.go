package stock

// Summary is the presentation view of a period's records
type Summary struct {
	Items           []StockStatusRecord
	TotalItems      int
	NormalCount     int
	LowStockCount   int
	CriticalCount   int
	OutOfStockCount int
}

// Summarize counts records by status
func Summarize(items []StockStatusRecord) Summary {
	s := Summary{Items: items, TotalItems: len(items)}
	for i := range items {
		switch items[i].Status {
		case StatusNormal:
			s.NormalCount++
		case StatusLowStock:
			s.LowStockCount++
		case StatusCritical:
			s.CriticalCount++
		case StatusOutOfStock:
			s.OutOfStockCount++
		}
	}
	return s
}

// Stats is the compact inventory widget view: items needing attention
type Stats struct {
	TotalItems    int
	LowStock      int
	CriticalStock int
}

// StatsOf computes Stats. Out of stock items count as critical.
func StatsOf(items []StockStatusRecord) Stats {
	st := Stats{TotalItems: len(items)}
	for i := range items {
		switch items[i].Status {
		case StatusLowStock:
			st.LowStock++
		case StatusCritical, StatusOutOfStock:
			st.CriticalStock++
		}
	}
	return st
}
