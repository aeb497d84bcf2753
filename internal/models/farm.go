package models

import "time"

type Farm struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Buildings []Building `gorm:"foreignKey:FarmID" json:"buildings,omitempty"`
}

type Building struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	FarmID    uint64    `gorm:"not null;index" json:"farm_id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	AreaM2    float64   `json:"area_m2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Farm  Farm   `gorm:"foreignKey:FarmID" json:"farm,omitempty"`
	Rooms []Room `gorm:"foreignKey:BuildingID" json:"rooms,omitempty"`
}

type Room struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	BuildingID uint64    `gorm:"not null;index" json:"building_id"`
	Name       string    `gorm:"type:varchar(150);not null" json:"name"`
	AreaM2     float64   `json:"area_m2"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}
