package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/rodologic/backend/internal/cte"
	"github.com/rodologic/backend/internal/dedupe"
	"github.com/rodologic/backend/internal/models"
	"github.com/rodologic/backend/internal/store"
)

// ErrEmptyBatch is the only batch-level failure: nothing was submitted.
var ErrEmptyBatch = errors.New("nenhum arquivo XML informado")

// numeroDesconhecido keys report errors for documents whose CT-e number
// could not even be extracted.
const numeroDesconhecido = "desconhecido"

// Store is the persistence surface the orchestrator drives. Existence
// checks and inserts are per-document units of work; there is no
// cross-document transaction.
type Store interface {
	CTeExists(ctx context.Context, numero string) (bool, error)
	CreateCTe(ctx context.Context, c *models.CTe) error
	EnsureVehicle(ctx context.Context, placa, uf, principal string) (id string, created bool, err error)
	EnsureClient(ctx context.Context, documento, nome, principal string) (id string, created bool, err error)
}

// Recalculator triggers the downstream financial recalculation. It is
// invoked exactly once per batch.
type Recalculator interface {
	Recalculate(ctx context.Context, principal string) error
}

// DocumentError is one per-document failure in the report.
type DocumentError struct {
	NumeroCTe string `json:"numero_cte"`
	Error     string `json:"error"`
}

// Report aggregates the outcome of one batch.
type Report struct {
	Success         []string        `json:"success"`
	Errors          []DocumentError `json:"errors"`
	ClientsCreated  int             `json:"clients_created"`
	VehiclesCreated int             `json:"vehicles_created"`
	CTesCreated     int             `json:"ctes_created"`
}

func (r *Report) fail(numero, message string) {
	r.Errors = append(r.Errors, DocumentError{NumeroCTe: numero, Error: message})
}

// Importer runs the per-document pipeline over a batch.
type Importer struct {
	store  Store
	recalc Recalculator
	recent *dedupe.Cache
	log    *slog.Logger
}

// New assembles the orchestrator.
func New(st Store, recalc Recalculator, recent *dedupe.Cache, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer{store: st, recalc: recalc, recent: recent, log: logger}
}

// Run processes the batch strictly sequentially and returns the
// assembled report. Only an empty batch is a batch-level error; every
// other failure is recorded per document and processing continues, so
// len(Success)+len(Errors) always equals len(xmls).
func (imp *Importer) Run(ctx context.Context, xmls []string, principal string) (*Report, error) {
	if len(xmls) == 0 {
		return nil, ErrEmptyBatch
	}

	rep := &Report{Success: []string{}, Errors: []DocumentError{}}
	for i, raw := range xmls {
		imp.processDocument(ctx, raw, principal, rep)
		imp.log.Debug("document processed",
			slog.Int("position", i+1),
			slog.Int("total", len(xmls)),
		)
	}

	if err := imp.recalc.Recalculate(ctx, principal); err != nil {
		imp.log.Warn("recalculation not triggered", slog.Any("err", err))
	}

	imp.log.Info("batch imported",
		slog.Int("success", len(rep.Success)),
		slog.Int("errors", len(rep.Errors)),
		slog.Int("ctes_created", rep.CTesCreated),
	)
	return rep, nil
}

func (imp *Importer) processDocument(ctx context.Context, raw, principal string, rep *Report) {
	shipment, err := cte.Parse(raw)
	if err != nil {
		rep.fail(numeroDesconhecido, err.Error())
		return
	}
	numero := shipment.Numero

	// Duplicate check comes before any provisioning so a re-imported
	// document causes no writes at all.
	if imp.recent.Seen(numero) {
		rep.fail(numero, "CT-e já importado")
		return
	}
	exists, err := imp.store.CTeExists(ctx, numero)
	if err != nil {
		rep.fail(numero, "falha ao verificar duplicidade: "+err.Error())
		return
	}
	if exists {
		imp.recent.Remember(numero)
		rep.fail(numero, "CT-e já importado")
		return
	}

	placa := shipment.PlacaVeiculo
	if placa == "" {
		placa = models.SentinelPlate
	}
	vehicleID, vehicleCreated, err := imp.store.EnsureVehicle(ctx, placa, shipment.UFVeiculo, principal)
	if err != nil {
		rep.fail(numero, "falha ao provisionar veículo: "+err.Error())
		return
	}
	if vehicleCreated {
		rep.VehiclesCreated++
	}

	var clientID *string
	if shipment.TomadorDocumento != "" {
		id, clientCreated, err := imp.store.EnsureClient(ctx, shipment.TomadorDocumento, shipment.TomadorNome, principal)
		if err != nil {
			rep.fail(numero, "falha ao provisionar cliente: "+err.Error())
			return
		}
		if clientCreated {
			rep.ClientsCreated++
		}
		clientID = &id
	}

	row := buildRow(shipment, vehicleID, clientID, principal)
	if err := imp.store.CreateCTe(ctx, row); err != nil {
		if errors.Is(err, store.ErrDuplicateNumero) {
			imp.recent.Remember(numero)
			rep.fail(numero, "CT-e já importado")
			return
		}
		rep.fail(numero, "falha ao gravar CT-e: "+err.Error())
		return
	}

	imp.recent.Remember(numero)
	rep.Success = append(rep.Success, numero)
	rep.CTesCreated++
}

func buildRow(s *cte.Shipment, vehicleID string, clientID *string, principal string) *models.CTe {
	return &models.CTe{
		Numero:         s.Numero,
		ChaveAcesso:    s.ChaveAcesso,
		DataEmissao:    s.DataEmissao,
		DataVencimento: s.DataVencimento,

		RemetenteNome:      s.Remetente.Nome,
		RemetenteDocumento: s.Remetente.Documento,
		RemetenteEndereco:  s.Remetente.Endereco,
		RemetenteMunicipio: s.Remetente.Municipio,
		RemetenteUF:        s.Remetente.UF,
		RemetenteCEP:       s.Remetente.CEP,

		DestinatarioNome:      s.Destinatario.Nome,
		DestinatarioDocumento: s.Destinatario.Documento,
		DestinatarioEndereco:  s.Destinatario.Endereco,
		DestinatarioMunicipio: s.Destinatario.Municipio,
		DestinatarioUF:        s.Destinatario.UF,
		DestinatarioCEP:       s.Destinatario.CEP,

		TomadorNome:      s.TomadorNome,
		TomadorDocumento: s.TomadorDocumento,
		TomadorPapel:     s.TomadorPapel,
		ClientID:         clientID,

		CargaPredominante: s.CargaPredominante,
		PesoBruto:         s.PesoBruto,
		PesoCubado:        s.PesoCubado,
		Volumes:           s.Volumes,

		ValorCarga:   s.ValorCarga,
		ValorFrete:   s.ValorFrete,
		ValorPedagio: s.ValorPedagio,
		ValorTotal:   s.ValorTotal,

		VehicleID:    vehicleID,
		PlacaVeiculo: s.PlacaVeiculo,
		PlacaReboque: s.PlacaReboque,
		UFVeiculo:    s.UFVeiculo,

		Modalidade: s.Modalidade,
		Modal:      s.Modal,

		Status:    models.CTeStatusEmitido,
		CreatedBy: principal,
	}
}
