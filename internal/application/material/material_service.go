package material

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// MaterialService maintains the raw material master
type MaterialService struct {
	materialRepo material.RawMaterialRepository
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(materialRepo material.RawMaterialRepository) *MaterialService {
	return &MaterialService{materialRepo: materialRepo}
}

// Create creates a raw material. Names are unique.
func (s *MaterialService) Create(ctx context.Context, req MaterialRequest) (*MaterialResponse, error) {
	exists, err := s.materialRepo.ExistsByName(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, shared.FetchFailed("material", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Material with this name already exists")
	}

	m, err := material.NewRawMaterial(req.Code, req.Name, req.Category, req.Unit, req.MinStockLevel)
	if err != nil {
		return nil, err
	}
	if err := s.materialRepo.Save(ctx, m); err != nil {
		return nil, shared.SaveFailed("material", err)
	}

	response := ToMaterialResponse(m)
	return &response, nil
}

// GetByID retrieves a raw material by ID
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMaterialResponse(m)
	return &response, nil
}

// List retrieves raw materials ordered by name
func (s *MaterialService) List(ctx context.Context, filter MaterialListFilter) ([]MaterialResponse, error) {
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

	materials, err := s.materialRepo.FindAll(ctx, f)
	if err != nil {
		return nil, shared.FetchFailed("materials", err)
	}
	out := make([]MaterialResponse, len(materials))
	for i := range materials {
		out[i] = ToMaterialResponse(&materials[i])
	}
	return out, nil
}

// Update replaces a material's descriptive fields and reorder threshold.
// Stock figures are owned by propagation and cannot be edited here.
func (s *MaterialService) Update(ctx context.Context, id uuid.UUID, req MaterialRequest) (*MaterialResponse, error) {
	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name != m.Name {
		exists, err := s.materialRepo.ExistsByName(ctx, name)
		if err != nil {
			return nil, shared.FetchFailed("material", err)
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Material with this name already exists")
		}
	}

	if err := m.Update(req.Code, req.Name, req.Category, req.Unit, req.MinStockLevel); err != nil {
		return nil, err
	}
	m.IncrementVersion()
	if err := s.materialRepo.Save(ctx, m); err != nil {
		return nil, shared.SaveFailed("material", err)
	}

	response := ToMaterialResponse(m)
	return &response, nil
}

// Delete removes a raw material
func (s *MaterialService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.materialRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.materialRepo.Delete(ctx, id)
}
