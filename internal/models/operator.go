package models

import "time"

// Operator is a collaborator who can be booked on the roster or pinned to a
// task definition.
type Operator struct {
	ID                  uint64     `gorm:"primarykey" json:"id"`
	DocumentID          string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"document_id"`
	FirstName           string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName            string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone               string     `gorm:"type:varchar(30)" json:"phone"`
	EmploymentStartDate *time.Time `gorm:"type:date" json:"employment_start_date"`
	EmploymentEndDate   *time.Time `gorm:"type:date" json:"employment_end_date"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsActiveOn reports whether the operator's employment window covers the
// given date. Missing bounds are treated as open-ended.
func (o *Operator) IsActiveOn(date time.Time) bool {
	if date.IsZero() {
		return false
	}
	if o.EmploymentStartDate != nil && date.Before(*o.EmploymentStartDate) {
		return false
	}
	if o.EmploymentEndDate != nil && date.After(*o.EmploymentEndDate) {
		return false
	}
	return true
}
