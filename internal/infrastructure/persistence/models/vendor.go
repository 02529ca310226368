package models

import (
	"github.com/spicemill/stockledger/internal/domain/purchasing"
)

// VendorModel is the persistence model for the Vendor aggregate root
type VendorModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null;index"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Email         string `gorm:"type:varchar(200)"`
	Phone         string `gorm:"type:varchar(50)"`
	Address       string `gorm:"type:varchar(500)"`
	GSTIN         string `gorm:"column:gstin;type:varchar(15)"`
	Status        string `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *purchasing.Vendor {
	return &purchasing.Vendor{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		GSTIN:             m.GSTIN,
		Status:            purchasing.VendorStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Vendor
func (m *VendorModel) FromDomain(v *purchasing.Vendor) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Name = v.Name
	m.ContactPerson = v.ContactPerson
	m.Email = v.Email
	m.Phone = v.Phone
	m.Address = v.Address
	m.GSTIN = v.GSTIN
	m.Status = string(v.Status)
}

// VendorModelFromDomain creates a persistence model from a domain Vendor
func VendorModelFromDomain(v *purchasing.Vendor) *VendorModel {
	m := &VendorModel{}
	m.FromDomain(v)
	return m
}
