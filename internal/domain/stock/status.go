package stock

// Status is the classification of a closing balance against its minimum level.
// Values match the labels stored in the stock_status.status column.
type Status string

const (
	StatusNormal     Status = "Normal"
	StatusLowStock   Status = "Low Stock"
	StatusCritical   Status = "Critical"
	StatusOutOfStock Status = "Out of Stock"
)

// IsValid returns true if s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusNormal, StatusLowStock, StatusCritical, StatusOutOfStock:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// NeedsReorder returns true for any status below Normal
func (s Status) NeedsReorder() bool {
	return s == StatusLowStock || s == StatusCritical || s == StatusOutOfStock
}
