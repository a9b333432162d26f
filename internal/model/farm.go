package model

import "gorm.io/gorm"

// Farm is the owned resource provisioned alongside a self-service
// registration. The record controllers scope their queries to it.
type Farm struct {
	gorm.Model
	Name     string `gorm:"column:name;not null"`
	Location string `gorm:"column:location"`
	OwnerID  uint   `gorm:"column:owner_id;index;not null"`
}
