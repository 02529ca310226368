package models

import (
	"github.com/spicemill/stockledger/internal/domain/production"
)

// StaffModel is the persistence model for the Staff aggregate root
type StaffModel struct {
	AggregateModel
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_staff_name"`
	StaffCode  string `gorm:"column:staff_id;type:varchar(20);index"`
	BloodGroup string `gorm:"type:varchar(5)"`
	Email      string `gorm:"type:varchar(200)"`
	Phone      string `gorm:"type:varchar(50)"`
	Address    string `gorm:"type:varchar(500)"`
	Aadhaar    string `gorm:"type:varchar(12)"`
	Status     string `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (StaffModel) TableName() string {
	return "staff"
}

// ToDomain converts the persistence model to a domain Staff
func (m *StaffModel) ToDomain() *production.Staff {
	return &production.Staff{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		StaffCode:         m.StaffCode,
		BloodGroup:        m.BloodGroup,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		Aadhaar:           m.Aadhaar,
		Status:            production.StaffStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Staff
func (m *StaffModel) FromDomain(s *production.Staff) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.StaffCode = s.StaffCode
	m.BloodGroup = s.BloodGroup
	m.Email = s.Email
	m.Phone = s.Phone
	m.Address = s.Address
	m.Aadhaar = s.Aadhaar
	m.Status = string(s.Status)
}

// StaffModelFromDomain creates a persistence model from a domain Staff
func StaffModelFromDomain(s *production.Staff) *StaffModel {
	m := &StaffModel{}
	m.FromDomain(s)
	return m
}
