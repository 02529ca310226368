package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// VendorService handles vendor maintenance
type VendorService struct {
	vendorRepo purchasing.VendorRepository
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo purchasing.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, req VendorRequest) (*VendorResponse, error) {
	vendor, err := purchasing.NewVendor(req.details())
	if err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, shared.SaveFailed("vendor", err)
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID retrieves a vendor by ID
func (s *VendorService) GetByID(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// List retrieves vendors ordered by name
func (s *VendorService) List(ctx context.Context, filter VendorListFilter) ([]VendorResponse, error) {
	f := shared.DefaultFilter()
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

	vendors, err := s.vendorRepo.FindAll(ctx, f)
	if err != nil {
		return nil, shared.FetchFailed("vendors", err)
	}

	out := make([]VendorResponse, len(vendors))
	for i := range vendors {
		out[i] = ToVendorResponse(&vendors[i])
	}
	return out, nil
}

// Update replaces a vendor's details
func (s *VendorService) Update(ctx context.Context, id uuid.UUID, req VendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := vendor.Update(req.details()); err != nil {
		return nil, err
	}
	vendor.IncrementVersion()
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, shared.SaveFailed("vendor", err)
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// Delete removes a vendor. Purchases keep the vendor name they were saved with.
func (s *VendorService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.vendorRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.vendorRepo.Delete(ctx, id)
}
