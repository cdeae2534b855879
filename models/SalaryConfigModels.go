package models

import (
	"time"
)

// SalaryConfig represents the salary_config table with GORM tags. It
// follows the same derive-on-edit pattern as a line item: totalSalary is
// never accepted from the client, only recomputed.
type SalaryConfig struct {
	ID            uint           `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Role          string         `gorm:"column:role;not null" json:"role" example:"Site engineer"`
	FromDate      time.Time      `gorm:"column:from_date;not null" json:"fromDate"`
	ToDate        time.Time      `gorm:"column:to_date;not null" json:"toDate"`
	SalaryPerHead float64        `gorm:"column:salary_per_head;not null" json:"salaryPerHead" example:"45000"`
	Count         int            `gorm:"column:count;not null;default:1" json:"count" example:"4"`
	TotalSalary   float64        `gorm:"column:total_salary" json:"totalSalary" example:"180000"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for SalaryConfig
func (SalaryConfig) TableName() string {
	return "salary_config"
}

// Recalculate derives the total from the two inputs, in full, every time.
func (s *SalaryConfig) Recalculate() {
	s.TotalSalary = s.SalaryPerHead * float64(s.Count)
}

// SalaryConfigRequest is the create/update payload for salary rows.
type SalaryConfigRequest struct {
	Role          string    `json:"role" binding:"required" example:"Site engineer"`
	FromDate      time.Time `json:"fromDate" binding:"required"`
	ToDate        time.Time `json:"toDate" binding:"required"`
	SalaryPerHead float64   `json:"salaryPerHead" example:"45000"`
	Count         int       `json:"count" binding:"required,min=1" example:"4"`
}
