// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel, AggregateModel and the AutoMigrate list
//   - raw_material.go: raw_materials
//   - vendor.go, stock_purchase.go: vendors, stock_purchases
//   - staff.go, task.go: staff, tasks
//   - stock_status.go: stock_status, one row per material per month
//   - production_status.go: production_status, one row per item per sheet
package models
