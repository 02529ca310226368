package purchasing

import (
	"net/mail"
	"strings"
	"time"

	"github.com/spicemill/stockledger/internal/domain/shared"
)

// VendorStatus is the state of a vendor record
type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "active"
	VendorStatusInactive VendorStatus = "inactive"
)

// IsValid returns true if the status is known
func (s VendorStatus) IsValid() bool {
	return s == VendorStatusActive || s == VendorStatusInactive
}

// Vendor is a supplier of raw materials
type Vendor struct {
	shared.BaseAggregateRoot
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	GSTIN         string
	Status        VendorStatus
}

// VendorDetails carries the editable vendor fields
type VendorDetails struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	GSTIN         string
	Status        VendorStatus
}

// NewVendor creates a vendor
func NewVendor(details VendorDetails) (*Vendor, error) {
	v := &Vendor{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := v.Update(details); err != nil {
		return nil, err
	}
	return v, nil
}

// Update replaces the vendor details
func (v *Vendor) Update(details VendorDetails) error {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Vendor name cannot be empty")
	}
	if details.Email != "" {
		if _, err := mail.ParseAddress(details.Email); err != nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Invalid vendor email")
		}
	}
	gstin := strings.ToUpper(strings.TrimSpace(details.GSTIN))
	if gstin != "" && len(gstin) != 15 {
		return shared.NewDomainError(shared.CodeInvalidInput, "GSTIN must be 15 characters")
	}
	status := details.Status
	if status == "" {
		status = VendorStatusActive
	}
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid vendor status")
	}

	v.Name = name
	v.ContactPerson = strings.TrimSpace(details.ContactPerson)
	v.Email = strings.TrimSpace(details.Email)
	v.Phone = strings.TrimSpace(details.Phone)
	v.Address = strings.TrimSpace(details.Address)
	v.GSTIN = gstin
	v.Status = status
	v.UpdatedAt = time.Now()
	return nil
}
