package models

import "time"

// PositionDefinition is a workstation on a farm that the roster books
// operators into: a milking line, a building round, a set of rooms.
type PositionDefinition struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"type:varchar(150);not null" json:"name"`
	Code         string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DisplayOrder int        `gorm:"default:0;index" json:"display_order"`
	FarmID       uint64     `gorm:"not null" json:"farm_id"`
	BuildingID   *uint64    `json:"building_id"`
	ValidFrom    time.Time  `gorm:"type:date;not null" json:"valid_from"`
	ValidUntil   *time.Time `gorm:"type:date" json:"valid_until"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Farm     Farm      `gorm:"foreignKey:FarmID" json:"farm,omitempty"`
	Building *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Rooms    []Room    `gorm:"many2many:position_rooms;" json:"rooms,omitempty"`
}

// IsActiveOn reports whether the position exists on the given date.
func (p *PositionDefinition) IsActiveOn(date time.Time) bool {
	if date.IsZero() {
		return false
	}
	if date.Before(p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && date.After(*p.ValidUntil) {
		return false
	}
	return true
}
