package material

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
	csvimport "github.com/spicemill/stockledger/internal/infrastructure/import"
	"go.uber.org/zap"
)

// ConflictMode defines how a row naming an existing material is handled
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "skip"
	ConflictModeUpdate ConflictMode = "update"
	ConflictModeFail   ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// Import columns. Only name is required.
const (
	colCode     = "code"
	colName     = "name"
	colCategory = "category"
	colUnit     = "unit"
	colMinLevel = "min_stock_level"
)

// ImportResult reports what a bulk import did
type ImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

type importRow struct {
	line     int
	code     string
	name     string
	category string
	unit     string
	minLevel decimal.Decimal
}

// ImportService loads the material master from a CSV export
type ImportService struct {
	materialRepo material.RawMaterialRepository
	maxErrors    int
	logger       *zap.Logger
}

// NewImportService creates an ImportService
func NewImportService(materialRepo material.RawMaterialRepository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{materialRepo: materialRepo, maxErrors: 100, logger: logger}
}

// Import validates the whole file first. Rows with errors are reported and
// not written. In fail mode any error or conflict aborts before writing.
func (s *ImportService) Import(ctx context.Context, r io.Reader, mode ConflictMode) (*ImportResult, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "conflict mode must be skip, update or fail")
	}

	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, invalidFile(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, invalidFile(err)
	}
	if missing := parser.MissingHeaders(colName); len(missing) > 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "missing required column: "+strings.Join(missing, ", "))
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, invalidFile(err)
	}
	if len(rows) == 0 {
		return nil, invalidFile(csvimport.ErrNoDataRows)
	}

	errs := csvimport.NewErrorCollection(s.maxErrors)
	parsed := s.validate(rows, errs)

	existing := make(map[string]*material.RawMaterial, len(parsed))
	for _, row := range parsed {
		m, err := s.materialRepo.FindByName(ctx, row.name)
		switch {
		case err == nil:
			existing[row.name] = m
			if mode == ConflictModeFail {
				errs.AddDuplicate(row.line, colName, row.name, true)
			}
		case errors.Is(err, shared.ErrNotFound):
		default:
			return nil, shared.FetchFailed("material", err)
		}
	}

	result := &ImportResult{TotalRows: len(rows)}
	if mode == ConflictModeFail && errs.HasErrors() {
		return s.finish(result, errs), nil
	}

	for _, row := range parsed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, found := existing[row.name]
		switch {
		case found && mode == ConflictModeSkip:
			result.SkippedRows++
			continue
		case found:
			if err := m.Update(row.code, row.name, row.category, row.unit, row.minLevel); err != nil {
				errs.AddInvalid(row.line, colName, csvimport.ErrCodeMalformedRow, err.Error(), row.name)
				continue
			}
			m.IncrementVersion()
			result.UpdatedRows++
		default:
			m, err = material.NewRawMaterial(row.code, row.name, row.category, row.unit, row.minLevel)
			if err != nil {
				errs.AddInvalid(row.line, colName, csvimport.ErrCodeMalformedRow, err.Error(), row.name)
				continue
			}
			result.ImportedRows++
		}
		if err := s.materialRepo.Save(ctx, m); err != nil {
			return nil, shared.SaveFailed("material", err)
		}
	}

	s.logger.Info("material import finished",
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("updated", result.UpdatedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", errs.TotalCount()),
	)
	return s.finish(result, errs), nil
}

func (s *ImportService) finish(result *ImportResult, errs *csvimport.ErrorCollection) *ImportResult {
	result.ErrorRows = errs.RowCount()
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
	return result
}

// validate parses each row and drops the ones with errors.
// A name repeated in the file is kept only on its first row.
func (s *ImportService) validate(rows []*csvimport.Row, errs *csvimport.ErrorCollection) []importRow {
	seen := make(map[string]int, len(rows))
	out := make([]importRow, 0, len(rows))

	for _, r := range rows {
		row := importRow{
			line:     r.Line,
			code:     r.Get(colCode),
			name:     r.Get(colName),
			category: r.Get(colCategory),
			unit:     r.Get(colUnit),
			minLevel: decimal.Zero,
		}

		if row.name == "" {
			errs.AddRequired(r.Line, colName)
		} else if len(row.name) > 200 {
			errs.AddInvalid(r.Line, colName, csvimport.ErrCodeInvalidLength, "must be at most 200 characters", "")
		} else if _, dup := seen[strings.ToLower(row.name)]; dup {
			errs.AddDuplicate(r.Line, colName, row.name, false)
		} else {
			seen[strings.ToLower(row.name)] = r.Line
		}

		if v := r.Get(colMinLevel); v != "" {
			d, err := decimal.NewFromString(v)
			switch {
			case err != nil:
				errs.AddInvalid(r.Line, colMinLevel, csvimport.ErrCodeInvalidType, "must be a number", v)
			case d.IsNegative():
				errs.AddInvalid(r.Line, colMinLevel, csvimport.ErrCodeInvalidRange, "cannot be negative", v)
			default:
				row.minLevel = d
			}
		}

		if !errs.HasRow(r.Line) {
			out = append(out, row)
		}
	}
	return out
}

func invalidFile(err error) error {
	return shared.WrapDomainError(shared.CodeInvalidInput, err.Error(), err)
}
