package production

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"go.uber.org/zap"
)

// TaskService handles production tasks. Moving a task out of pending draws its
// assigned quantity from stock in the same transaction as the task write.
type TaskService struct {
	scope     stockapp.TransactionScope
	tasks     production.TaskRepository
	materials material.RawMaterialRepository
	staff     production.StaffRepository
	publisher shared.EventPublisher
	location  *time.Location
	logger    *zap.Logger
	clock     func() time.Time
}

// NewTaskService creates a new TaskService. location is the zone whose
// calendar decides which month a task is utilised in; nil means UTC.
func NewTaskService(
	scope stockapp.TransactionScope,
	tasks production.TaskRepository,
	materials material.RawMaterialRepository,
	staff production.StaffRepository,
	publisher shared.EventPublisher,
	location *time.Location,
	logger *zap.Logger,
) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &TaskService{
		scope:     scope,
		tasks:     tasks,
		materials: materials,
		staff:     staff,
		publisher: publisher,
		location:  location,
		logger:    logger,
		clock:     time.Now,
	}
}

// now is the wall-clock time in the configured zone, labelled UTC. Task dates
// are calendar values like purchase dates, so the month a task is utilised in
// is the month the stock sheet shows for that zone.
func (s *TaskService) now() time.Time {
	t := s.clock().In(s.location)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Create creates a task, numbering it TASKnnn when no number is given
func (s *TaskService) Create(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	details, err := s.details(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	if details.TaskNo == "" {
		count, err := s.tasks.Count(ctx)
		if err != nil {
			return nil, shared.FetchFailed("task count", err)
		}
		details.TaskNo = production.FormatTaskNo(int(count) + 1)
	}

	task, err := production.NewTask(details, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, task, false); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// GetByID retrieves a task by ID
func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTaskResponse(task)
	return &response, nil
}

// List retrieves tasks newest first
func (s *TaskService) List(ctx context.Context, filter TaskListFilter) ([]TaskResponse, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "created_at"
	f.OrderDir = "desc"
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
		f.OrderDir = filter.OrderDir
	}

	tasks, err := s.tasks.FindAll(ctx, f)
	if err != nil {
		return nil, shared.FetchFailed("tasks", err)
	}
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out, nil
}

// Update replaces a task's details
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, req TaskRequest) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, req, task)
	if err != nil {
		return nil, err
	}
	if err := task.Update(details, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, task, false); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// ChangeStatus moves a task to another status
func (s *TaskService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeTaskStatusRequest) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.ChangeStatus(production.TaskStatus(req.Status), s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, task, false); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Delete removes a task. Utilisation already counted stays counted.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.persist(ctx, task, true)
}

func (s *TaskService) persist(ctx context.Context, task *production.Task, remove bool) error {
	var unit *stockapp.Unit
	err := s.scope.Execute(ctx, func(repos stockapp.TransactionalRepositories) error {
		if remove {
			if err := repos.TaskRepo().Delete(ctx, task.ID); err != nil {
				return shared.SaveFailed("task", err)
			}
			return nil
		}
		if err := repos.TaskRepo().Save(ctx, task); err != nil {
			return shared.SaveFailed("task", err)
		}

		events := task.GetDomainEvents()
		if len(events) == 0 || s.publisher == nil {
			return nil
		}
		txCtx, u := stockapp.BeginUnit(ctx, repos)
		unit = u
		return s.publisher.Publish(txCtx, events...)
	})
	if err != nil {
		s.logger.Warn("task write rolled back",
			zap.String("task_no", task.TaskNo),
			zap.Error(err),
		)
		return err
	}

	unit.Committed(ctx)
	task.ClearDomainEvents()
	return nil
}

// details resolves the request's material and staff. current is the task
// being updated, nil on create.
func (s *TaskService) details(ctx context.Context, req TaskRequest, current *production.Task) (production.TaskDetails, error) {
	var (
		m   *material.RawMaterial
		err error
	)
	if req.MaterialID != nil && *req.MaterialID != uuid.Nil {
		m, err = s.materials.FindByID(ctx, *req.MaterialID)
	} else {
		m, err = s.materials.FindByName(ctx, req.MaterialName)
	}
	if err != nil {
		return production.TaskDetails{}, err
	}
	staffID, staffName, err := s.resolveStaff(ctx, req, current)
	if err != nil {
		return production.TaskDetails{}, err
	}

	details := production.TaskDetails{
		TaskNo:       req.TaskNo,
		Description:  req.Description,
		MaterialID:   m.ID,
		MaterialName: m.Name,
		Process:      req.Process,
		QtyAssigned:  req.QtyAssigned,
		StaffID:      staffID,
		StaffName:    staffName,
		CompletedQty: req.CompletedQty,
		WastageQty:   req.WastageQty,
		Remarks:      req.Remarks,
		Status:       production.TaskStatus(req.Status),
	}
	if req.DateAssigned != "" {
		if details.DateAssigned, err = parseDate(req.DateAssigned); err != nil {
			return production.TaskDetails{}, err
		}
	}
	if req.DateCompleted != "" {
		completed, err := parseDate(req.DateCompleted)
		if err != nil {
			return production.TaskDetails{}, err
		}
		details.DateCompleted = &completed
	}
	return details, nil
}

// resolveStaff maps the request's staff_id or staff_name to a staff record.
// No staff leaves the task unassigned. New assignments must name an active
// staff member; a task may keep the staff it already has.
func (s *TaskService) resolveStaff(ctx context.Context, req TaskRequest, current *production.Task) (*uuid.UUID, string, error) {
	name := strings.TrimSpace(req.StaffName)
	var (
		st  *production.Staff
		err error
	)
	switch {
	case req.StaffID != nil && *req.StaffID != uuid.Nil:
		st, err = s.staff.FindByID(ctx, *req.StaffID)
	case name != "":
		if current != nil && current.StaffID == nil && current.StaffName == name {
			return nil, name, nil
		}
		st, err = s.staff.FindByName(ctx, name)
	default:
		return nil, "", nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, "", shared.WrapDomainError(shared.CodeNotFound, "Staff member not found", err)
	}
	if err != nil {
		return nil, "", shared.FetchFailed("staff", err)
	}

	keeps := current != nil && current.StaffID != nil && *current.StaffID == st.ID
	if !st.IsActive() && !keeps {
		return nil, "", shared.NewDomainError(shared.CodeInvalidState, "Staff member "+st.Name+" is inactive")
	}
	id := st.ID
	return &id, st.Name, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, shared.WrapDomainError(shared.CodeInvalidInput, "Invalid date "+s, err)
	}
	return t, nil
}
