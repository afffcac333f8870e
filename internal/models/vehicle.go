package models

import "time"

// SentinelPlate identifies the single shared vehicle row assigned to
// shipments whose document carries no resolvable plate.
const SentinelPlate = "NAO-IDENTIFICADO"

// VehicleOrigin tags rows auto-provisioned by the CT-e import.
const VehicleOrigin = "importacao_cte"

// Vehicle represents a fleet vehicle, keyed by its plate.
type Vehicle struct {
	ID            string    `gorm:"column:vehicle_id;primaryKey;type:varchar(36)"`
	Placa         string    `gorm:"column:placa;type:varchar(20);uniqueIndex;not null"`
	UF            string    `gorm:"column:uf;type:varchar(2)"`
	Modelo        string    `gorm:"column:modelo;type:varchar(100)"`
	AnoFabricacao int       `gorm:"column:ano_fabricacao"`
	Ativo         bool      `gorm:"column:ativo;default:true"`
	Origem        string    `gorm:"column:origem;type:varchar(50)"`
	CreatedBy     string    `gorm:"column:created_by;type:varchar(36)"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
