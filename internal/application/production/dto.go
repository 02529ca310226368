package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// TaskRequest creates or replaces a task.
// The material is identified by MaterialID or, failing that, MaterialName.
type TaskRequest struct {
	TaskNo        string           `json:"task_id" binding:"max=20"`
	Description   string           `json:"description" binding:"max=500"`
	DateAssigned  string           `json:"date_assigned" binding:"omitempty,datetime=2006-01-02"`
	MaterialID    *uuid.UUID       `json:"material_id"`
	MaterialName  string           `json:"raw_material" binding:"max=200"`
	Process       string           `json:"process" binding:"required,max=50"`
	QtyAssigned   decimal.Decimal  `json:"qty_assigned" binding:"maxscale=4"`
	StaffID       *uuid.UUID       `json:"staff_id"`
	StaffName     string           `json:"staff_name" binding:"max=100"`
	DateCompleted string           `json:"date_completed" binding:"omitempty,datetime=2006-01-02"`
	CompletedQty  *decimal.Decimal `json:"completed_qty" binding:"omitempty,maxscale=4"`
	WastageQty    *decimal.Decimal `json:"wastage_qty" binding:"omitempty,maxscale=4"`
	Remarks       string           `json:"remarks" binding:"max=1000"`
	Status        string           `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
}

// ChangeTaskStatusRequest moves a task to another status
type ChangeTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// TaskResponse represents a task
type TaskResponse struct {
	ID                 uuid.UUID        `json:"id"`
	TaskNo             string           `json:"task_id"`
	Description        string           `json:"description"`
	DateAssigned       string           `json:"date_assigned"`
	MaterialID         uuid.UUID        `json:"material_id"`
	MaterialName       string           `json:"raw_material"`
	Process            string           `json:"process"`
	QtyAssigned        decimal.Decimal  `json:"qty_assigned"`
	StaffID            *uuid.UUID       `json:"staff_id"`
	StaffName          string           `json:"staff_name"`
	DateCompleted      *string          `json:"date_completed"`
	CompletedQty       *decimal.Decimal `json:"completed_qty"`
	WastageQty         *decimal.Decimal `json:"wastage_qty"`
	Remarks            string           `json:"remarks"`
	Status             string           `json:"status"`
	UtilisationApplied bool             `json:"utilisation_applied"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TaskListFilter represents filter options for the task list
type TaskListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToTaskResponse converts a domain Task to TaskResponse
func ToTaskResponse(t *production.Task) TaskResponse {
	resp := TaskResponse{
		ID:                 t.ID,
		TaskNo:             t.TaskNo,
		Description:        t.Description,
		DateAssigned:       t.DateAssigned.Format(time.DateOnly),
		MaterialID:         t.MaterialID,
		MaterialName:       t.MaterialName,
		Process:            t.Process,
		QtyAssigned:        t.QtyAssigned,
		StaffID:            t.StaffID,
		StaffName:          t.StaffName,
		CompletedQty:       t.CompletedQty,
		WastageQty:         t.WastageQty,
		Remarks:            t.Remarks,
		Status:             string(t.Status),
		UtilisationApplied: t.UtilisationApplied,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if t.DateCompleted != nil {
		s := t.DateCompleted.Format(time.DateOnly)
		resp.DateCompleted = &s
	}
	return resp
}

// =============================================================================
// Staff DTOs
// =============================================================================

// StaffRequest creates or replaces a staff member
type StaffRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	StaffCode  string `json:"staff_id" binding:"max=20"`
	BloodGroup string `json:"blood_group" binding:"max=5"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
	Address    string `json:"address" binding:"max=500"`
	Aadhaar    string `json:"aadhaar" binding:"max=14"`
	Status     string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r StaffRequest) details() production.StaffDetails {
	return production.StaffDetails{
		Name:       r.Name,
		StaffCode:  r.StaffCode,
		BloodGroup: r.BloodGroup,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		Aadhaar:    r.Aadhaar,
		Status:     production.StaffStatus(r.Status),
	}
}

// StaffResponse represents a staff member
type StaffResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StaffCode  string    `json:"staff_id"`
	BloodGroup string    `json:"blood_group"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	Aadhaar    string    `json:"aadhaar"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StaffListFilter represents filter options for the staff list
type StaffListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToStaffResponse converts a domain Staff to StaffResponse
func ToStaffResponse(s *production.Staff) StaffResponse {
	return StaffResponse{
		ID:         s.ID,
		Name:       s.Name,
		StaffCode:  s.StaffCode,
		BloodGroup: s.BloodGroup,
		Email:      s.Email,
		Phone:      s.Phone,
		Address:    s.Address,
		Aadhaar:    s.Aadhaar,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// =============================================================================
// Production status DTOs
// =============================================================================

// SheetQuery selects one production status sheet
type SheetQuery struct {
	Date    string `form:"date" json:"date" binding:"required,datetime=2006-01-02"`
	Stage   string `form:"stage" json:"stage" binding:"required,oneof=Pre-Prod Production"`
	Process string `form:"process" json:"process" binding:"required,max=50"`
	Policy  string `form:"policy" json:"-" binding:"omitempty,oneof=two_tier three_tier"`
}

// ProductionStatusItem is one row of a batch save. Rows without an ID are inserted.
type ProductionStatusItem struct {
	ID          *uuid.UUID      `json:"id"`
	Name        string          `json:"name" binding:"required,max=200"`
	Category    string          `json:"category" binding:"max=100"`
	Opening     decimal.Decimal `json:"opening" binding:"maxscale=4"`
	Assigned    decimal.Decimal `json:"assigned" binding:"nonneg,maxscale=4"`
	Completed   decimal.Decimal `json:"completed" binding:"nonneg,maxscale=4"`
	Wastage     decimal.Decimal `json:"wastage" binding:"nonneg,maxscale=4"`
	Pending     decimal.Decimal `json:"pending" binding:"nonneg,maxscale=4"`
	Adjustments decimal.Decimal `json:"adjustments" binding:"maxscale=4"`
	MinLevel    decimal.Decimal `json:"min_level" binding:"nonneg,maxscale=4"`
}

func (i ProductionStatusItem) inputs() production.ProductionInputs {
	return production.ProductionInputs{
		Name:        i.Name,
		Category:    i.Category,
		Opening:     i.Opening,
		Assigned:    i.Assigned,
		Completed:   i.Completed,
		Wastage:     i.Wastage,
		Pending:     i.Pending,
		Adjustments: i.Adjustments,
		MinLevel:    i.MinLevel,
	}
}

// SaveProductionStatusRequest saves a whole sheet
type SaveProductionStatusRequest struct {
	SheetQuery
	Items []ProductionStatusItem `json:"items" binding:"required,dive"`
}

// AdjustProductionStatusRequest edits one row. Omitted fields are left unchanged.
type AdjustProductionStatusRequest struct {
	Opening     *decimal.Decimal `json:"opening" binding:"omitempty,maxscale=4"`
	Adjustments *decimal.Decimal `json:"adjustments" binding:"omitempty,maxscale=4"`
	MinLevel    *decimal.Decimal `json:"min_level" binding:"omitempty,nonneg,maxscale=4"`
}

// ProductionStatusResponse is one displayed sheet row, quantities to two decimals
type ProductionStatusResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Month       string    `json:"month"`
	Stage       string    `json:"process_stage"`
	Process     string    `json:"process"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Opening     string    `json:"opening"`
	Assigned    string    `json:"assigned"`
	Completed   string    `json:"completed"`
	Wastage     string    `json:"wastage"`
	Pending     string    `json:"pending"`
	Adjustments string    `json:"adjustments"`
	Closing     string    `json:"closing"`
	MinLevel    string    `json:"min_level"`
	Status      string    `json:"status"`
}

// ProductionStatusSheetResponse is a sheet with its status counts
type ProductionStatusSheetResponse struct {
	Date            string                     `json:"date"`
	Month           string                     `json:"month"`
	Stage           string                     `json:"process_stage"`
	Process         string                     `json:"process"`
	Policy          string                     `json:"policy"`
	Items           []ProductionStatusResponse `json:"items"`
	TotalItems      int                        `json:"totalItems"`
	NormalCount     int                        `json:"normalCount"`
	LowStockCount   int                        `json:"lowStockCount"`
	CriticalCount   int                        `json:"criticalCount"`
	OutOfStockCount int                        `json:"outOfStockCount"`
}

// ToProductionStatusResponse converts a record for display
func ToProductionStatusResponse(r *production.ProductionStatusRecord) ProductionStatusResponse {
	return ProductionStatusResponse{
		ID:          r.ID,
		Date:        r.Key.Date.Format(time.DateOnly),
		Month:       r.Key.Period().String(),
		Stage:       string(r.Key.Stage),
		Process:     r.Key.Process,
		Name:        r.Name,
		Category:    r.Category,
		Opening:     r.Opening.StringFixed(2),
		Assigned:    r.Assigned.StringFixed(2),
		Completed:   r.Completed.StringFixed(2),
		Wastage:     r.Wastage.StringFixed(2),
		Pending:     r.Pending.StringFixed(2),
		Adjustments: r.Adjustments.StringFixed(2),
		Closing:     r.Closing.StringFixed(2),
		MinLevel:    r.MinLevel.StringFixed(2),
		Status:      r.Status.String(),
	}
}

// ToProductionStatusSheetResponse builds the sheet view and counts rows by status
func ToProductionStatusSheetResponse(key production.SheetKey, policy string, records []*production.ProductionStatusRecord) ProductionStatusSheetResponse {
	resp := ProductionStatusSheetResponse{
		Date:       key.Date.Format(time.DateOnly),
		Month:      key.Period().String(),
		Stage:      string(key.Stage),
		Process:    key.Process,
		Policy:     policy,
		Items:      make([]ProductionStatusResponse, len(records)),
		TotalItems: len(records),
	}
	for i, r := range records {
		resp.Items[i] = ToProductionStatusResponse(r)
		switch r.Status {
		case stock.StatusNormal:
			resp.NormalCount++
		case stock.StatusLowStock:
			resp.LowStockCount++
		case stock.StatusCritical:
			resp.CriticalCount++
		case stock.StatusOutOfStock:
			resp.OutOfStockCount++
		}
	}
	return resp
}
