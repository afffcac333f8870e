package models

import "time"

// APIToken maps a bearer credential to the profile it acts as. Token
// issuance lives in the main application; this service only reads.
type APIToken struct {
	Token     string    `gorm:"column:token;primaryKey;type:varchar(64)"`
	ProfileID string    `gorm:"column:profile_id;type:varchar(36);not null"`
	Revogado  bool      `gorm:"column:revogado;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
