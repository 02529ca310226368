package production

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// TaskStatus is the lifecycle state of a production task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid returns true if the status is known
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// consumesMaterial is true for the states in which the assigned raw
// material has been drawn from stock
func (s TaskStatus) consumesMaterial() bool {
	return s == TaskStatusInProgress || s == TaskStatusCompleted
}

// Processes a task can be assigned to
var Processes = []string{
	"Cleaning", "Grinding", "Packing", "CBD", "Seeds CBD", "RFR", "Roasting", "RTP", "Sample",
}

// Task assigns a quantity of raw material to a production process
type Task struct {
	shared.BaseAggregateRoot
	TaskNo        string
	Description   string
	DateAssigned  time.Time
	MaterialID    uuid.UUID
	MaterialName  string
	Process       string
	QtyAssigned   decimal.Decimal
	StaffID       *uuid.UUID
	StaffName     string
	DateCompleted *time.Time
	CompletedQty  *decimal.Decimal
	WastageQty    *decimal.Decimal
	Remarks       string
	Status        TaskStatus

	// UtilisationApplied records that the assigned quantity has been counted
	// as utilised. It is set on the first move out of pending and never cleared.
	UtilisationApplied bool
	UtilisedAt         *time.Time
}

// TaskDetails carries the editable task fields
type TaskDetails struct {
	TaskNo        string
	Description   string
	DateAssigned  time.Time
	MaterialID    uuid.UUID
	MaterialName  string
	Process       string
	QtyAssigned   decimal.Decimal
	StaffID       *uuid.UUID
	StaffName     string
	DateCompleted *time.Time
	CompletedQty  *decimal.Decimal
	WastageQty    *decimal.Decimal
	Remarks       string
	Status        TaskStatus
}

func (d TaskDetails) validate() error {
	if strings.TrimSpace(d.MaterialName) == "" && d.MaterialID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Raw material is required")
	}
	if strings.TrimSpace(d.Process) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Process is required")
	}
	if !d.QtyAssigned.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Assigned quantity must be positive")
	}
	if err := shared.CheckQuantityScale("Assigned quantity", d.QtyAssigned); err != nil {
		return err
	}
	if d.CompletedQty != nil {
		if d.CompletedQty.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, "Completed quantity cannot be negative")
		}
		if err := shared.CheckQuantityScale("Completed quantity", *d.CompletedQty); err != nil {
			return err
		}
	}
	if d.WastageQty != nil {
		if d.WastageQty.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidInput, "Wastage quantity cannot be negative")
		}
		if err := shared.CheckQuantityScale("Wastage quantity", *d.WastageQty); err != nil {
			return err
		}
	}
	if !d.Status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid task status")
	}
	return nil
}

// FormatTaskNo returns the display number for the n-th task, e.g. TASK007
func FormatTaskNo(n int) string {
	return fmt.Sprintf("TASK%03d", n)
}

// NewTask creates a task. A task created already in progress or completed
// raises TaskUtilised immediately.
func NewTask(details TaskDetails, now time.Time) (*Task, error) {
	if details.Status == "" {
		details.Status = TaskStatusPending
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	if details.DateAssigned.IsZero() {
		details.DateAssigned = now
	}

	t := &Task{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	t.apply(details)
	t.recordUtilisation(now)
	return t, nil
}

// Update replaces the task details. The first move from pending to
// in-progress or completed raises TaskUtilised; later moves never do.
func (t *Task) Update(details TaskDetails, now time.Time) error {
	if details.Status == "" {
		details.Status = t.Status
	}
	if err := details.validate(); err != nil {
		return err
	}
	if details.TaskNo == "" {
		details.TaskNo = t.TaskNo
	}
	if details.DateAssigned.IsZero() {
		details.DateAssigned = t.DateAssigned
	}

	t.apply(details)
	t.UpdatedAt = now
	t.IncrementVersion()
	t.recordUtilisation(now)
	return nil
}

// ChangeStatus moves the task to status
func (t *Task) ChangeStatus(status TaskStatus, now time.Time) error {
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid task status")
	}
	if status == t.Status {
		return nil
	}
	t.Status = status
	if status == TaskStatusCompleted && t.DateCompleted == nil {
		completed := now
		t.DateCompleted = &completed
	}
	t.UpdatedAt = now
	t.IncrementVersion()
	t.recordUtilisation(now)
	return nil
}

func (t *Task) recordUtilisation(now time.Time) {
	if t.UtilisationApplied || !t.Status.consumesMaterial() {
		return
	}
	t.UtilisationApplied = true
	at := now
	t.UtilisedAt = &at
	t.AddDomainEvent(stock.NewTaskUtilisedEvent(t.ID, stock.Movement{
		Material: stock.MaterialRef{ID: t.MaterialID, Name: t.MaterialName},
		Quantity: t.QtyAssigned,
		Date:     now,
	}))
}

func (t *Task) apply(d TaskDetails) {
	t.TaskNo = strings.TrimSpace(d.TaskNo)
	t.Description = strings.TrimSpace(d.Description)
	t.DateAssigned = d.DateAssigned
	t.MaterialID = d.MaterialID
	t.MaterialName = strings.TrimSpace(d.MaterialName)
	t.Process = strings.TrimSpace(d.Process)
	t.QtyAssigned = d.QtyAssigned
	t.StaffID = d.StaffID
	t.StaffName = strings.TrimSpace(d.StaffName)
	t.DateCompleted = d.DateCompleted
	t.CompletedQty = d.CompletedQty
	t.WastageQty = d.WastageQty
	t.Remarks = strings.TrimSpace(d.Remarks)
	t.Status = d.Status
}
