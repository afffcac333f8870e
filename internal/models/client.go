package models

import "time"

// Client represents a paying party, keyed by its tax id (CNPJ or CPF).
// Auto-provisioned rows carry the parsed payer name in both name
// fields; this pipeline never updates a client after creation.
type Client struct {
	ID           string    `gorm:"column:client_id;primaryKey;type:varchar(36)"`
	Documento    string    `gorm:"column:documento;type:varchar(14);uniqueIndex;not null"`
	RazaoSocial  string    `gorm:"column:razao_social;type:varchar(255);not null"`
	NomeFantasia string    `gorm:"column:nome_fantasia;type:varchar(255)"`
	CreatedBy    string    `gorm:"column:created_by;type:varchar(36)"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
