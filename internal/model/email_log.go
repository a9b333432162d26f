package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmailLog records every outbound notification dispatch attempt.
// Delivery is fire-and-forget, so this log is the only durable trace of
// whether a message left the building.
type EmailLog struct {
	gorm.Model
	Recipient string         `gorm:"column:recipient;index;not null"`
	Template  string         `gorm:"column:template;not null"`
	Subject   string         `gorm:"column:subject"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	Success   bool           `gorm:"column:success;not null;default:false"`
	ErrorText string         `gorm:"column:error_text"`
}
