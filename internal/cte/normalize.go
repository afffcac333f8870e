package cte

import (
	"errors"
	"strings"
	"time"
)

// Tomador role tags.
const (
	TomadorRemetente    = "remetente"
	TomadorDestinatario = "destinatario"
	TomadorOutros       = "outros"
)

// Transport modal and freight-payment modality literals.
const (
	ModalRodoviario = "rodoviario"
	ModalAereo      = "aereo"

	ModalidadeCIF = "CIF"
	ModalidadeFOB = "FOB"
)

// ErrNumeroAusente marks a document from which no CT-e number could be
// extracted. It is the only condition that fails normalization.
var ErrNumeroAusente = errors.New("não foi possível extrair o número do CT-e")

// Identity holds the name, tax id and address of a document party.
type Identity struct {
	Nome      string
	Documento string
	Endereco  string
	Municipio string
	UF        string
	CEP       string
}

// Shipment is the canonical record normalized from one CT-e XML.
type Shipment struct {
	Numero         string
	ChaveAcesso    string
	DataEmissao    time.Time
	DataVencimento time.Time

	Remetente    Identity
	Destinatario Identity

	TomadorNome      string
	TomadorDocumento string
	TomadorPapel     string

	CargaPredominante string
	PesoBruto         float64
	PesoCubado        float64
	Volumes           int

	ValorCarga   float64
	ValorFrete   float64
	ValorPedagio float64
	ValorTotal   float64

	// PlacaVeiculo is empty when no valid plate could be resolved; the
	// reconciler then assigns the shared sentinel vehicle.
	PlacaVeiculo string
	PlacaReboque string
	UFVeiculo    string

	Modalidade string
	Modal      string
}

// Parse normalizes one raw CT-e XML into a Shipment. It fails only when
// the document number is unextractable; every other field degrades to
// its zero value or a documented fallback.
func Parse(raw string) (*Shipment, error) {
	numero := Tag(raw, "nCT")
	if numero == "" {
		return nil, ErrNumeroAusente
	}

	emissao := parseDate(Tag(raw, "dhEmi"))

	s := &Shipment{
		Numero:      numero,
		ChaveAcesso: Tag(raw, "chCTe"),
		DataEmissao: emissao,
		// Net-30 due date is a fixed billing policy, not configurable.
		DataVencimento: emissao.AddDate(0, 0, 30),
		Remetente:      parseIdentity(raw, "rem", "enderReme"),
		Destinatario:   parseIdentity(raw, "dest", "enderDest"),
	}

	s.resolveTomador(raw)
	s.resolveCarga(raw)
	s.resolveValores(raw)
	s.resolveVeiculo(raw)

	if Tag(raw, "modal") == "01" {
		s.Modal = ModalRodoviario
	} else {
		s.Modal = ModalAereo
	}
	if Tag(raw, "tpServ") == "0" {
		s.Modalidade = ModalidadeCIF
	} else {
		s.Modalidade = ModalidadeFOB
	}

	return s, nil
}

func parseIdentity(raw, party, ender string) Identity {
	sec := Section(raw, party)
	id := Identity{
		Nome:      Tag(sec, "xNome"),
		Documento: Tag(sec, "CNPJ"),
	}
	if id.Documento == "" {
		id.Documento = Tag(sec, "CPF")
	}

	addr := Section(sec, ender)
	id.Endereco = Tag(addr, "xLgr")
	id.Municipio = Tag(addr, "xMun")
	id.UF = Tag(addr, "UF")
	id.CEP = Tag(addr, "CEP")
	return id
}

// resolveTomador applies the payer precedence: indicator "0" means the
// sender pays, "1" the recipient; any other value points at the
// explicit toma4 party, falling back to the sender when that section is
// absent or empty.
func (s *Shipment) resolveTomador(raw string) {
	ind := Tag(Section(raw, "toma3"), "toma")
	if ind == "" {
		ind = Tag(Section(raw, "toma4"), "toma")
	}

	switch ind {
	case "0":
		s.setTomador(s.Remetente, TomadorRemetente)
	case "1":
		s.setTomador(s.Destinatario, TomadorDestinatario)
	default:
		sec := Section(raw, "toma4")
		nome := Tag(sec, "xNome")
		doc := Tag(sec, "CNPJ")
		if doc == "" {
			doc = Tag(sec, "CPF")
		}
		if nome == "" && doc == "" {
			s.setTomador(s.Remetente, TomadorRemetente)
			return
		}
		s.TomadorNome = nome
		s.TomadorDocumento = doc
		s.TomadorPapel = TomadorOutros
	}
}

func (s *Shipment) setTomador(id Identity, papel string) {
	s.TomadorNome = id.Nome
	s.TomadorDocumento = id.Documento
	s.TomadorPapel = papel
}

func (s *Shipment) resolveCarga(raw string) {
	carga := Section(raw, "infCarga")
	s.CargaPredominante = Tag(carga, "proPred")
	s.ValorCarga = Float(carga, "vCarga")

	for _, q := range Sections(carga, "infQ") {
		medida := strings.ToUpper(Tag(q, "tpMed"))
		switch {
		case strings.Contains(medida, "PESO"):
			if s.PesoBruto == 0 {
				s.PesoBruto = Float(q, "qCarga")
			}
		case strings.Contains(medida, "VOLUME") || strings.Contains(medida, "UNIDADE"):
			if s.Volumes == 0 {
				s.Volumes = int(Float(q, "qCarga"))
			}
		}
	}

	// Fixed cubage approximation; exact cubage needs warehouse measurement.
	if s.PesoBruto > 0 {
		s.PesoCubado = s.PesoBruto * 1.1
	}
}

func (s *Shipment) resolveValores(raw string) {
	prest := Section(raw, "vPrest")
	s.ValorTotal = Float(prest, "vTPrest")
	s.ValorFrete = s.ValorTotal

	freteComp := false
	for _, comp := range Sections(prest, "Comp") {
		nome := strings.ToUpper(Tag(comp, "xNome"))
		switch {
		case strings.Contains(nome, "PEDAG") || strings.Contains(nome, "PEDÁG"):
			s.ValorPedagio += Float(comp, "vComp")
		case strings.Contains(nome, "FRETE") && !freteComp:
			s.ValorFrete = Float(comp, "vComp")
			freteComp = true
		}
	}
}

// resolveVeiculo walks the plate candidates in strict precedence order:
// the traction-vehicle section, the first top-level placa element, the
// veic sections nested in the road-modal block, then a whole-document
// scan of placa-tagged text. When none validates, a valid trailer plate
// substitutes as the vehicle identity.
func (s *Shipment) resolveVeiculo(raw string) {
	tracao := Section(raw, "veicTracao")
	s.UFVeiculo = Tag(tracao, "UF")

	if placa, ok := NormalizePlate(Tag(tracao, "placa")); ok {
		s.PlacaVeiculo = placa
	}
	if placa, ok := NormalizePlate(Tag(Section(raw, "veicReboque"), "placa")); ok {
		s.PlacaReboque = placa
	}
	if s.PlacaVeiculo != "" {
		return
	}

	if placa, ok := NormalizePlate(Tag(raw, "placa")); ok {
		s.PlacaVeiculo = placa
		return
	}

	for _, veic := range Sections(Section(raw, "infModal"), "veic") {
		if placa, ok := NormalizePlate(Tag(veic, "placa")); ok {
			s.PlacaVeiculo = placa
			return
		}
	}

	for _, cand := range Tags(raw, "placa") {
		placa, ok := NormalizePlate(cand)
		if !ok || placa == s.PlacaReboque {
			continue
		}
		s.PlacaVeiculo = placa
		return
	}

	if s.PlacaReboque != "" {
		s.PlacaVeiculo = s.PlacaReboque
	}
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		formats := []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02",
		}
		for _, f := range formats {
			if ts, err := time.Parse(f, raw); err == nil {
				return ts
			}
		}
	}
	return time.Now().UTC()
}
