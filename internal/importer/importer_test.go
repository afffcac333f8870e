package importer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rodologic/backend/internal/dedupe"
	"github.com/rodologic/backend/internal/importer"
	"github.com/rodologic/backend/internal/models"
	"github.com/rodologic/backend/internal/store"
)

type fakeStore struct {
	vehicles map[string]string
	clients  map[string]string
	ctes     map[string]*models.CTe

	createCTeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles: map[string]string{},
		clients:  map[string]string{},
		ctes:     map[string]*models.CTe{},
	}
}

func (f *fakeStore) CTeExists(_ context.Context, numero string) (bool, error) {
	_, ok := f.ctes[numero]
	return ok, nil
}

func (f *fakeStore) CreateCTe(_ context.Context, c *models.CTe) error {
	if f.createCTeErr != nil {
		return f.createCTeErr
	}
	if _, ok := f.ctes[c.Numero]; ok {
		return fmt.Errorf("inserir CT-e %s: %w", c.Numero, store.ErrDuplicateNumero)
	}
	f.ctes[c.Numero] = c
	return nil
}

func (f *fakeStore) EnsureVehicle(_ context.Context, placa, _, _ string) (string, bool, error) {
	if id, ok := f.vehicles[placa]; ok {
		return id, false, nil
	}
	id := "veh-" + placa
	f.vehicles[placa] = id
	return id, true, nil
}

func (f *fakeStore) EnsureClient(_ context.Context, documento, _, _ string) (string, bool, error) {
	if id, ok := f.clients[documento]; ok {
		return id, false, nil
	}
	id := "cli-" + documento
	f.clients[documento] = id
	return id, true, nil
}

type fakeRecalc struct {
	calls int
}

func (f *fakeRecalc) Recalculate(context.Context, string) error {
	f.calls++
	return nil
}

func docXML(numero, placa, cnpj string) string {
	return fmt.Sprintf(`<CTe><infCte>
<ide><nCT>%s</nCT><dhEmi>2024-05-01T10:00:00-03:00</dhEmi><modal>01</modal><tpServ>0</tpServ><toma3><toma>0</toma></toma3></ide>
<rem><CNPJ>%s</CNPJ><xNome>Remetente Teste</xNome></rem>
<dest><CNPJ>00000000000191</CNPJ><xNome>Destinatario Teste</xNome></dest>
<infModal><rodo><veicTracao><placa>%s</placa><UF>SP</UF></veicTracao></rodo></infModal>
</infCte></CTe>`, numero, cnpj, placa)
}

func newImporter(st importer.Store, rc importer.Recalculator) *importer.Importer {
	return importer.New(st, rc, dedupe.New(100, time.Hour), nil)
}

func TestRunEmptyBatch(t *testing.T) {
	imp := newImporter(newFakeStore(), &fakeRecalc{})
	_, err := imp.Run(context.Background(), nil, "user-1")
	require.ErrorIs(t, err, importer.ErrEmptyBatch)
}

func TestRunSharedVehicleCreatedOnce(t *testing.T) {
	st := newFakeStore()
	rc := &fakeRecalc{}
	imp := newImporter(st, rc)

	xmls := []string{
		docXML("100", "XYZ9988", "11222333000181"),
		docXML("101", "XYZ9988", "55444333000122"),
	}
	rep, err := imp.Run(context.Background(), xmls, "user-1")
	require.NoError(t, err)

	require.Equal(t, []string{"100", "101"}, rep.Success)
	require.Empty(t, rep.Errors)
	require.Equal(t, 1, rep.VehiclesCreated)
	require.Equal(t, 2, rep.ClientsCreated)
	require.Equal(t, 2, rep.CTesCreated)
	require.Equal(t, 1, rc.calls)

	require.Equal(t, st.ctes["100"].VehicleID, st.ctes["101"].VehicleID)
	require.Equal(t, "emitido", st.ctes["100"].Status)
	require.Equal(t, "user-1", st.ctes["100"].CreatedBy)
}

func TestRunIsolatesDocumentFailures(t *testing.T) {
	st := newFakeStore()
	rc := &fakeRecalc{}
	imp := newImporter(st, rc)

	xmls := []string{
		docXML("200", "ABC1234", "11222333000181"),
		docXML("201", "ABC1234", "11222333000181"),
		`<CTe><infCte><ide><dhEmi>2024-`, // truncated, no number
		docXML("203", "ABC1234", "11222333000181"),
		docXML("204", "ABC1234", "11222333000181"),
	}
	rep, err := imp.Run(context.Background(), xmls, "user-1")
	require.NoError(t, err)

	require.Len(t, rep.Success, 4)
	require.Len(t, rep.Errors, 1)
	require.Equal(t, len(xmls), len(rep.Success)+len(rep.Errors))
	require.Equal(t, "desconhecido", rep.Errors[0].NumeroCTe)
	require.Equal(t, 1, rc.calls)
}

func TestRunDuplicateResubmission(t *testing.T) {
	st := newFakeStore()
	xmls := []string{docXML("300", "ABC1234", "11222333000181")}

	first := newImporter(st, &fakeRecalc{})
	rep, err := first.Run(context.Background(), xmls, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, rep.CTesCreated)

	// Fresh importer (empty cache), same store: the duplicate must be
	// caught by the persisted natural key, with no new rows.
	rc := &fakeRecalc{}
	second := newImporter(st, rc)
	rep, err = second.Run(context.Background(), xmls, "user-1")
	require.NoError(t, err)

	require.Empty(t, rep.Success)
	require.Len(t, rep.Errors, 1)
	require.Equal(t, "300", rep.Errors[0].NumeroCTe)
	require.Equal(t, "CT-e já importado", rep.Errors[0].Error)
	require.Equal(t, 0, rep.CTesCreated)
	require.Equal(t, 0, rep.VehiclesCreated)
	require.Equal(t, 0, rep.ClientsCreated)
	require.Len(t, st.ctes, 1)
	require.Equal(t, 1, rc.calls)
}

func TestRunDuplicateWithinBatch(t *testing.T) {
	st := newFakeStore()
	imp := newImporter(st, &fakeRecalc{})

	doc := docXML("400", "ABC1234", "11222333000181")
	rep, err := imp.Run(context.Background(), []string{doc, doc}, "user-1")
	require.NoError(t, err)

	require.Equal(t, []string{"400"}, rep.Success)
	require.Len(t, rep.Errors, 1)
	require.Equal(t, "CT-e já importado", rep.Errors[0].Error)
	require.Equal(t, 1, rep.CTesCreated)
}

func TestRunSentinelVehicle(t *testing.T) {
	st := newFakeStore()
	imp := newImporter(st, &fakeRecalc{})

	rep, err := imp.Run(context.Background(), []string{docXML("500", "12AB@@", "11222333000181")}, "user-1")
	require.NoError(t, err)

	require.Equal(t, []string{"500"}, rep.Success)
	require.Contains(t, st.vehicles, models.SentinelPlate)
	require.Equal(t, st.vehicles[models.SentinelPlate], st.ctes["500"].VehicleID)
	require.Equal(t, "", st.ctes["500"].PlacaVeiculo)
}

func TestRunInsertRaceReportsDuplicate(t *testing.T) {
	st := newFakeStore()
	st.createCTeErr = fmt.Errorf("inserir CT-e 600: %w", store.ErrDuplicateNumero)
	imp := newImporter(st, &fakeRecalc{})

	rep, err := imp.Run(context.Background(), []string{docXML("600", "ABC1234", "11222333000181")}, "user-1")
	require.NoError(t, err)

	require.Empty(t, rep.Success)
	require.Len(t, rep.Errors, 1)
	require.Equal(t, "CT-e já importado", rep.Errors[0].Error)
	require.Equal(t, 0, rep.CTesCreated)
	// Provisioning committed before the race was detected.
	require.Equal(t, 1, rep.VehiclesCreated)
}
