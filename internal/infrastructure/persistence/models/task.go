package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/production"
)

// TaskModel is the persistence model for the Task aggregate root
type TaskModel struct {
	AggregateModel
	TaskNo             string           `gorm:"column:task_no;type:varchar(20);not null;index"`
	Description        string           `gorm:"type:varchar(500)"`
	DateAssigned       time.Time        `gorm:"type:date;not null"`
	MaterialID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	MaterialName       string           `gorm:"type:varchar(200);not null"`
	Process            string           `gorm:"type:varchar(50);not null"`
	QtyAssigned        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	StaffID            *uuid.UUID       `gorm:"type:uuid;index"`
	StaffName          string           `gorm:"type:varchar(100)"`
	DateCompleted      *time.Time       `gorm:"type:date"`
	CompletedQty       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	WastageQty         *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Remarks            string           `gorm:"type:text"`
	Status             string           `gorm:"type:varchar(20);not null;default:'pending'"`
	UtilisationApplied bool             `gorm:"not null;default:false"`
	UtilisedAt         *time.Time       `gorm:"index"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *production.Task {
	return &production.Task{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		TaskNo:             m.TaskNo,
		Description:        m.Description,
		DateAssigned:       m.DateAssigned,
		MaterialID:         m.MaterialID,
		MaterialName:       m.MaterialName,
		Process:            m.Process,
		QtyAssigned:        m.QtyAssigned,
		StaffID:            m.StaffID,
		StaffName:          m.StaffName,
		DateCompleted:      m.DateCompleted,
		CompletedQty:       m.CompletedQty,
		WastageQty:         m.WastageQty,
		Remarks:            m.Remarks,
		Status:             production.TaskStatus(m.Status),
		UtilisationApplied: m.UtilisationApplied,
		UtilisedAt:         m.UtilisedAt,
	}
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *production.Task) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TaskNo = t.TaskNo
	m.Description = t.Description
	m.DateAssigned = t.DateAssigned
	m.MaterialID = t.MaterialID
	m.MaterialName = t.MaterialName
	m.Process = t.Process
	m.QtyAssigned = t.QtyAssigned
	m.StaffID = t.StaffID
	m.StaffName = t.StaffName
	m.DateCompleted = t.DateCompleted
	m.CompletedQty = t.CompletedQty
	m.WastageQty = t.WastageQty
	m.Remarks = t.Remarks
	m.Status = string(t.Status)
	m.UtilisationApplied = t.UtilisationApplied
	m.UtilisedAt = t.UtilisedAt
}

// TaskModelFromDomain creates a persistence model from a domain Task
func TaskModelFromDomain(t *production.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}
