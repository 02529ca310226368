package production

import (
	"net/mail"
	"strings"
	"time"

	"github.com/spicemill/stockledger/internal/domain/shared"
)

// StaffStatus is the state of a staff record
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
)

// IsValid returns true if the status is known
func (s StaffStatus) IsValid() bool {
	return s == StaffStatusActive || s == StaffStatusInactive
}

// Staff is a worker production tasks are assigned to. Tasks refer to staff by
// name, so names are unique.
type Staff struct {
	shared.BaseAggregateRoot
	Name       string
	StaffCode  string
	BloodGroup string
	Email      string
	Phone      string
	Address    string
	Aadhaar    string
	Status     StaffStatus
}

// StaffDetails carries the editable staff fields
type StaffDetails struct {
	Name       string
	StaffCode  string
	BloodGroup string
	Email      string
	Phone      string
	Address    string
	Aadhaar    string
	Status     StaffStatus
}

// NewStaff creates a staff record
func NewStaff(details StaffDetails) (*Staff, error) {
	s := &Staff{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := s.Update(details); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the staff details
func (s *Staff) Update(details StaffDetails) error {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Staff name cannot be empty")
	}
	if details.Email != "" {
		if _, err := mail.ParseAddress(details.Email); err != nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Invalid staff email")
		}
	}
	aadhaar := strings.ReplaceAll(strings.TrimSpace(details.Aadhaar), " ", "")
	if aadhaar != "" && !isDigits(aadhaar, 12) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Aadhaar number must be 12 digits")
	}
	status := details.Status
	if status == "" {
		status = StaffStatusActive
	}
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid staff status")
	}

	s.Name = name
	s.StaffCode = strings.TrimSpace(details.StaffCode)
	s.BloodGroup = strings.ToUpper(strings.TrimSpace(details.BloodGroup))
	s.Email = strings.TrimSpace(details.Email)
	s.Phone = strings.TrimSpace(details.Phone)
	s.Address = strings.TrimSpace(details.Address)
	s.Aadhaar = aadhaar
	s.Status = status
	s.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if new work can be assigned to the staff member
func (s *Staff) IsActive() bool {
	return s.Status == StaffStatusActive
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
