package production

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// StaffService handles staff maintenance
type StaffService struct {
	staffRepo production.StaffRepository
}

// NewStaffService creates a new StaffService
func NewStaffService(staffRepo production.StaffRepository) *StaffService {
	return &StaffService{staffRepo: staffRepo}
}

// Create creates a staff member. Names are unique.
func (s *StaffService) Create(ctx context.Context, req StaffRequest) (*StaffResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}
	staff, err := production.NewStaff(req.details())
	if err != nil {
		return nil, err
	}
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, shared.SaveFailed("staff", err)
	}

	response := ToStaffResponse(staff)
	return &response, nil
}

// GetByID retrieves a staff member by ID
func (s *StaffService) GetByID(ctx context.Context, id uuid.UUID) (*StaffResponse, error) {
	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToStaffResponse(staff)
	return &response, nil
}

// List retrieves staff ordered by name
func (s *StaffService) List(ctx context.Context, filter StaffListFilter) ([]StaffResponse, error) {
	f := production.StaffFilter{
		Filter: shared.DefaultFilter(),
		Status: production.StaffStatus(filter.Status),
	}
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

	staff, err := s.staffRepo.FindAll(ctx, f)
	if err != nil {
		return nil, shared.FetchFailed("staff", err)
	}

	out := make([]StaffResponse, len(staff))
	for i := range staff {
		out[i] = ToStaffResponse(&staff[i])
	}
	return out, nil
}

// Update replaces a staff member's details. Tasks keep the staff name they
// were saved with.
func (s *StaffService) Update(ctx context.Context, id uuid.UUID, req StaffRequest) (*StaffResponse, error) {
	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, req.Name, id); err != nil {
		return nil, err
	}
	if err := staff.Update(req.details()); err != nil {
		return nil, err
	}
	staff.IncrementVersion()
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, shared.SaveFailed("staff", err)
	}

	response := ToStaffResponse(staff)
	return &response, nil
}

// Delete removes a staff member
func (s *StaffService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.staffRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.staffRepo.Delete(ctx, id)
}

func (s *StaffService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.staffRepo.FindByName(ctx, strings.TrimSpace(name))
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return shared.FetchFailed("staff", err)
	case existing.ID != self:
		return shared.NewDomainError(shared.CodeAlreadyExists, "Staff member with this name already exists")
	}
	return nil
}
