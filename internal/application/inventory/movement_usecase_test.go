package inventory_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/movimientos-api/internal/application/dto"
	"github.com/jhoicas/movimientos-api/internal/application/inventory"
	"github.com/jhoicas/movimientos-api/internal/application/ports"
	"github.com/jhoicas/movimientos-api/internal/domain"
	"github.com/jhoicas/movimientos-api/internal/domain/entity"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

const central int64 = 1

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeAPI struct {
	calls    []movement.Payload
	tokens   []string
	err      error
	returnID *int64
	during   func() // se ejecuta mientras "viaja" la request
}

func (f *fakeAPI) CreateMovimiento(_ context.Context, token string, p movement.Payload) (*ports.CreatedMovimiento, error) {
	if f.during != nil {
		f.during()
	}
	f.calls = append(f.calls, p)
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	return &ports.CreatedMovimiento{ID: f.returnID, Raw: json.RawMessage(`{"ok":true}`)}, nil
}

type fakeRecords struct {
	mu   sync.Mutex
	byID map[string]*entity.MovementRecord
	ids  []string
	err  error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byID: map[string]*entity.MovementRecord{}}
}

func (f *fakeRecords) Create(_ context.Context, rec *entity.MovementRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[rec.ID] = rec
	f.ids = append(f.ids, rec.ID)
	return nil
}

func (f *fakeRecords) GetByID(_ context.Context, companyID, id string) (*entity.MovementRecord, error) {
	rec := f.byID[id]
	if rec == nil || rec.CompanyID != companyID {
		return nil, nil
	}
	return rec, nil
}

func (f *fakeRecords) ofCompany(companyID string) []*entity.MovementRecord {
	var out []*entity.MovementRecord
	for _, id := range f.ids {
		if rec := f.byID[id]; rec.CompanyID == companyID {
			out = append(out, rec)
		}
	}
	return out
}

func (f *fakeRecords) List(_ context.Context, companyID string, limit, offset int) ([]*entity.MovementRecord, error) {
	all := f.ofCompany(companyID)
	var out []*entity.MovementRecord
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakeRecords) Count(_ context.Context, companyID string) (int, error) {
	return len(f.ofCompany(companyID)), nil
}

type fakeIdem struct {
	keys       map[string]bool
	acquired   []string
	released   []string
	releaseErr []error // ctx.Err() visto en cada Release
	err        error
}

func (f *fakeIdem) Acquire(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	f.acquired = append(f.acquired, key)
	return true, nil
}

func (f *fakeIdem) Release(ctx context.Context, key string) error {
	f.releaseErr = append(f.releaseErr, ctx.Err())
	delete(f.keys, key)
	f.released = append(f.released, key)
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateMovementReceipt(_ context.Context, rec *entity.MovementRecord) ([]byte, error) {
	return []byte("%PDF-" + rec.ID), nil
}

func validForm() movement.FormState {
	return movement.FormState{
		Tipo:         movement.TipoIngreso,
		ProductoID:   movement.ID(42),
		Quantity:     "2.345",
		ToLocationID: movement.ID(central),
		Nota:         " prueba ",
		ConfirmUnit:  true,
	}
}

const (
	companyA = "c-1"
	companyB = "c-2"
)

func submitInput(key string, form movement.FormState) inventory.SubmitMovementInput {
	return inventory.SubmitMovementInput{CompanyID: companyA, UserID: "u-1", Token: "tok", IdempotencyKey: key, Form: form}
}

type fixture struct {
	api     *fakeAPI
	records *fakeRecords
	idem    *fakeIdem
	uc      *inventory.MovementUseCase
}

func newFixture() *fixture {
	f := &fixture{
		api:     &fakeAPI{returnID: movement.ID(900)},
		records: newFakeRecords(),
		idem:    &fakeIdem{keys: map[string]bool{}},
	}
	f.uc = inventory.NewMovementUseCase(inventory.MovementDeps{
		API:               f.api,
		Records:           f.records,
		Idempotency:       f.idem,
		Receipts:          fakeReceipts{},
		CentralLocationID: central,
		Logger:            zerolog.Nop(),
	})
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_EnviaPayloadYRegistraDiario(t *testing.T) {
	f := newFixture()
	out, err := f.uc.Submit(context.Background(), submitInput("k-1", validForm()))
	require.NoError(t, err)

	require.Len(t, f.api.calls, 1)
	sent := f.api.calls[0]
	assert.Equal(t, movement.TipoIngreso, sent.Tipo)
	assert.Equal(t, int64(42), sent.ProductoID)
	assert.Equal(t, 2.345, sent.Cantidad)
	require.NotNil(t, sent.Nota)
	assert.Equal(t, "prueba", *sent.Nota)
	assert.Equal(t, "tok", f.api.tokens[0])

	require.NotEmpty(t, out.RecordID)
	assert.Equal(t, int64(900), *out.BackendID)
	rec := f.records.byID[out.RecordID]
	require.NotNil(t, rec)
	assert.Equal(t, "2.345", rec.Cantidad.String())
	assert.Equal(t, "u-1", rec.UserID)
	assert.Equal(t, companyA, rec.CompanyID)
	assert.Equal(t, "k-1", rec.IdempotencyKey)
}

func TestSubmit_FormularioInvalidoNoLlamaBackend(t *testing.T) {
	f := newFixture()
	form := validForm()
	form.ToLocationID = movement.ID(999)

	_, err := f.uc.Submit(context.Background(), submitInput("", form))

	var vErr *movement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, vErr.Fields[movement.FieldToLocationID], "ingresos")
	assert.Empty(t, f.api.calls)
}

func TestSubmit_ClaveRepetidaEsDuplicado(t *testing.T) {
	f := newFixture()
	in := submitInput("k-1", validForm())

	_, err := f.uc.Submit(context.Background(), in)
	require.NoError(t, err)
	_, err = f.uc.Submit(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, f.api.calls, 1, "el segundo envío no debe llegar al backend")
}

func TestSubmit_FalloBackendLiberaClave(t *testing.T) {
	f := newFixture()
	f.api.err = &ports.APIError{Status: 409, Message: "stock insuficiente en origen"}

	_, err := f.uc.Submit(context.Background(), submitInput("k-2", validForm()))

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, []string{"c-1:u-1:k-2"}, f.idem.released)
	assert.Empty(t, f.records.ids)
}

func TestSubmit_StoreIdempotenciaCaidoNoBloquea(t *testing.T) {
	f := newFixture()
	f.idem.err = errors.New("redis caído")

	out, err := f.uc.Submit(context.Background(), submitInput("k-3", validForm()))
	require.NoError(t, err)
	assert.NotEmpty(t, out.RecordID)
}

func TestSubmit_FalloDiarioNoFallaEnvio(t *testing.T) {
	f := newFixture()
	f.records.err = errors.New("db caída")

	out, err := f.uc.Submit(context.Background(), submitInput("", validForm()))
	require.NoError(t, err)
	assert.Empty(t, out.RecordID)
	assert.Len(t, f.api.calls, 1)
}

func TestValidate_VistaPrevia(t *testing.T) {
	f := newFixture()

	ok := f.uc.Validate(validForm())
	assert.True(t, ok.IsValid)
	require.NotNil(t, ok.Payload)
	assert.Equal(t, 2.345, ok.Payload.Cantidad)

	bad := validForm()
	bad.Quantity = "abc"
	res := f.uc.Validate(bad)
	assert.False(t, res.IsValid)
	assert.Nil(t, res.Payload)
	assert.Contains(t, res.Errors[movement.FieldQuantity], "numerica")
}

func TestRules(t *testing.T) {
	f := newFixture()
	r, err := f.uc.Rules(movement.TipoTraspaso)
	require.NoError(t, err)
	assert.True(t, r.Rules.RequiresBothDistinct)

	_, err = f.uc.Rules("merma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, f.uc.AllRules(), 5)
}

func TestRecords_ListarObtenerYComprobante(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		_, err := f.uc.Submit(context.Background(), submitInput("", validForm()))
		require.NoError(t, err)
	}

	list, err := f.uc.ListRecords(context.Background(), companyA, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 3, list.Page.Total)

	id := list.Items[0].ID
	rec, err := f.uc.GetRecord(context.Background(), companyA, id)
	require.NoError(t, err)
	assert.Equal(t, "ingreso", rec.Tipo)

	pdf, err := f.uc.Receipt(context.Background(), companyA, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+id, string(pdf))

	_, err = f.uc.GetRecord(context.Background(), companyA, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.GetRecord(context.Background(), companyA, "7d0b7f7e-2a5c-4f0e-9b7e-0f6d1f3a1c11")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecords_OtraEmpresaNoVeNada(t *testing.T) {
	f := newFixture()
	out, err := f.uc.Submit(context.Background(), submitInput("", validForm()))
	require.NoError(t, err)

	_, err = f.uc.GetRecord(context.Background(), companyB, out.RecordID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Receipt(context.Background(), companyB, out.RecordID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.uc.ListRecords(context.Background(), companyB, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Zero(t, list.Page.Total)

	_, err = f.uc.ListRecords(context.Background(), "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSubmit_SinEmpresaNoAutorizado(t *testing.T) {
	f := newFixture()
	in := submitInput("", validForm())
	in.CompanyID = ""

	_, err := f.uc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.api.calls)
}

func TestSubmit_MismaClaveDistintoUsuarioNoChoca(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Submit(context.Background(), submitInput("k-1", validForm()))
	require.NoError(t, err)

	other := submitInput("k-1", validForm())
	other.CompanyID, other.UserID = companyB, "u-9"
	_, err = f.uc.Submit(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, []string{"c-1:u-1:k-1", "c-2:u-9:k-1"}, f.idem.acquired)
	assert.Len(t, f.api.calls, 2)
}

func TestSubmit_LiberaClaveAunqueSeCanceleLaRequest(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.api.during = cancel
	f.api.err = context.Canceled

	_, err := f.uc.Submit(ctx, submitInput("k-4", validForm()))

	assert.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"c-1:u-1:k-4"}, f.idem.released)
	assert.NoError(t, f.idem.releaseErr[0], "la liberación no debe heredar la cancelación")
	assert.Empty(t, f.idem.keys)
}
