package models

import "time"

// CTeStatusEmitido is set on every imported shipment so that the
// store-side trigger creates the matching accounts-receivable entry.
const CTeStatusEmitido = "emitido"

// CTe represents one imported freight waybill, keyed by its number.
type CTe struct {
	ID          string `gorm:"column:cte_id;primaryKey;type:varchar(36)"`
	Numero      string `gorm:"column:numero;type:varchar(20);uniqueIndex;not null"`
	ChaveAcesso string `gorm:"column:chave_acesso;type:varchar(44)"`

	DataEmissao    time.Time `gorm:"column:data_emissao"`
	DataVencimento time.Time `gorm:"column:data_vencimento"`

	RemetenteNome      string `gorm:"column:remetente_nome;type:varchar(255)"`
	RemetenteDocumento string `gorm:"column:remetente_documento;type:varchar(14)"`
	RemetenteEndereco  string `gorm:"column:remetente_endereco;type:varchar(255)"`
	RemetenteMunicipio string `gorm:"column:remetente_municipio;type:varchar(100)"`
	RemetenteUF        string `gorm:"column:remetente_uf;type:varchar(2)"`
	RemetenteCEP       string `gorm:"column:remetente_cep;type:varchar(8)"`

	DestinatarioNome      string `gorm:"column:destinatario_nome;type:varchar(255)"`
	DestinatarioDocumento string `gorm:"column:destinatario_documento;type:varchar(14)"`
	DestinatarioEndereco  string `gorm:"column:destinatario_endereco;type:varchar(255)"`
	DestinatarioMunicipio string `gorm:"column:destinatario_municipio;type:varchar(100)"`
	DestinatarioUF        string `gorm:"column:destinatario_uf;type:varchar(2)"`
	DestinatarioCEP       string `gorm:"column:destinatario_cep;type:varchar(8)"`

	TomadorNome      string  `gorm:"column:tomador_nome;type:varchar(255)"`
	TomadorDocumento string  `gorm:"column:tomador_documento;type:varchar(14)"`
	TomadorPapel     string  `gorm:"column:tomador_papel;type:varchar(20)"`
	ClientID         *string `gorm:"column:client_id;type:varchar(36);index"`
	Client           *Client `gorm:"foreignKey:ClientID"`

	CargaPredominante string  `gorm:"column:carga_predominante;type:varchar(255)"`
	PesoBruto         float64 `gorm:"column:peso_bruto;type:decimal(12,3)"`
	PesoCubado        float64 `gorm:"column:peso_cubado;type:decimal(12,3)"`
	Volumes           int     `gorm:"column:volumes"`

	ValorCarga   float64 `gorm:"column:valor_carga;type:decimal(12,2)"`
	ValorFrete   float64 `gorm:"column:valor_frete;type:decimal(12,2)"`
	ValorPedagio float64 `gorm:"column:valor_pedagio;type:decimal(12,2)"`
	ValorTotal   float64 `gorm:"column:valor_total;type:decimal(12,2)"`

	VehicleID    string   `gorm:"column:vehicle_id;type:varchar(36);index;not null"`
	Vehicle      *Vehicle `gorm:"foreignKey:VehicleID"`
	PlacaVeiculo string   `gorm:"column:placa_veiculo;type:varchar(20)"`
	PlacaReboque string   `gorm:"column:placa_reboque;type:varchar(20)"`
	UFVeiculo    string   `gorm:"column:uf_veiculo;type:varchar(2)"`

	Modalidade string `gorm:"column:modalidade;type:varchar(3)"`
	Modal      string `gorm:"column:modal;type:varchar(20)"`

	Status    string    `gorm:"column:status;type:varchar(20);default:'emitido'"`
	CreatedBy string    `gorm:"column:created_by;type:varchar(36)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
