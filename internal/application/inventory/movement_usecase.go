package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/movimientos-api/internal/application/dto"
	"github.com/jhoicas/movimientos-api/internal/application/ports"
	"github.com/jhoicas/movimientos-api/internal/domain"
	"github.com/jhoicas/movimientos-api/internal/domain/entity"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
	"github.com/jhoicas/movimientos-api/internal/domain/repository"
)

// MovementUseCase valida formularios de movimiento, arma el payload y lo registra en el backend.
// Ciclo de un envío: Validate → BuildPayload → reserva de idempotencia → backend → diario local.
type MovementUseCase struct {
	api               ports.MovementsAPI
	records           repository.MovementRecordRepository // opcional
	idempotency       ports.IdempotencyStore              // opcional
	receipts          ports.ReceiptGenerator              // opcional
	centralLocationID int64
	log               zerolog.Logger
	now               func() time.Time
}

// MovementDeps dependencias del caso de uso. Sólo API y CentralLocationID son obligatorias.
type MovementDeps struct {
	API               ports.MovementsAPI
	Records           repository.MovementRecordRepository
	Idempotency       ports.IdempotencyStore
	Receipts          ports.ReceiptGenerator
	CentralLocationID int64
	Logger            zerolog.Logger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(deps MovementDeps) *MovementUseCase {
	return &MovementUseCase{
		api:               deps.API,
		records:           deps.Records,
		idempotency:       deps.Idempotency,
		receipts:          deps.Receipts,
		centralLocationID: deps.CentralLocationID,
		log:               deps.Logger,
		now:               time.Now,
	}
}

// SubmitMovementInput datos de un envío: el formulario más el contexto del usuario.
type SubmitMovementInput struct {
	CompanyID      string
	UserID         string
	Token          string
	IdempotencyKey string
	Form           movement.FormState
}

// Rules devuelve las reglas de locación de un tipo. ErrNotFound si el tipo no existe.
func (uc *MovementUseCase) Rules(tipo movement.MovementType) (*dto.RulesResponse, error) {
	if !tipo.Valid() {
		return nil, domain.ErrNotFound
	}
	return &dto.RulesResponse{Tipo: tipo.String(), Rules: movement.ResolveRules(tipo)}, nil
}

// AllRules devuelve las reglas de todos los tipos en orden de formulario.
func (uc *MovementUseCase) AllRules() []dto.RulesResponse {
	out := make([]dto.RulesResponse, 0, len(movement.AllTypes))
	for _, t := range movement.AllTypes {
		out = append(out, dto.RulesResponse{Tipo: t.String(), Rules: movement.ResolveRules(t)})
	}
	return out
}

// Validate valida sin enviar. Si el formulario es válido incluye la vista previa del payload.
func (uc *MovementUseCase) Validate(form movement.FormState) dto.ValidationResponse {
	res := movement.Validate(form, uc.centralLocationID)
	out := dto.ValidationResponse{IsValid: res.IsValid, Errors: res.Errors, Quantity: res.Quantity}
	if res.IsValid {
		p := movement.BuildPayload(form, *res.Quantity)
		out.Payload = &p
	}
	return out
}

// Submit valida el formulario y, si es válido, lo registra en el backend.
// Errores: domain.ErrUnauthorized (sin empresa o usuario), *movement.ValidationError (formulario),
// domain.ErrDuplicate (clave de idempotencia ya usada), *ports.APIError (rechazo del backend)
// o domain.ErrBackendUnavailable.
func (uc *MovementUseCase) Submit(ctx context.Context, in SubmitMovementInput) (*dto.SubmitMovementResponse, error) {
	if in.CompanyID == "" || in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	res := movement.Validate(in.Form, uc.centralLocationID)
	if !res.IsValid {
		return nil, movement.NewValidationError(res.Errors)
	}
	payload := movement.BuildPayload(in.Form, *res.Quantity)

	idemKey := scopedKey(in)
	acquired, err := uc.acquire(ctx, idemKey)
	if err != nil {
		return nil, err
	}

	created, err := uc.api.CreateMovimiento(ctx, in.Token, payload)
	if err != nil {
		if acquired {
			// la request pudo cancelarse; la clave se libera igual
			uc.release(context.WithoutCancel(ctx), idemKey)
		}
		return nil, err
	}

	out := &dto.SubmitMovementResponse{Payload: payload, BackendID: created.ID, Backend: created.Raw}
	if uc.records == nil {
		return out, nil
	}
	rec := uc.newRecord(in, payload, created)
	if err := uc.records.Create(ctx, rec); err != nil {
		// el backend ya lo registró: no se revierte por un fallo del diario
		uc.log.Warn().Err(err).
			Str("tipo", payload.Tipo.String()).
			Int64("producto_id", payload.ProductoID).
			Msg("no se pudo guardar el movimiento en el diario")
		return out, nil
	}
	out.RecordID = rec.ID
	return out, nil
}

// scopedKey aísla las claves por empresa y usuario: la misma clave de dos usuarios no choca.
func scopedKey(in SubmitMovementInput) string {
	if in.IdempotencyKey == "" {
		return ""
	}
	return in.CompanyID + ":" + in.UserID + ":" + in.IdempotencyKey
}

// acquire reserva la clave de idempotencia. Si el store falla se continúa sin reserva.
func (uc *MovementUseCase) acquire(ctx context.Context, key string) (bool, error) {
	if uc.idempotency == nil || key == "" {
		return false, nil
	}
	ok, err := uc.idempotency.Acquire(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("idempotency_key", key).Msg("store de idempotencia no disponible")
		return false, nil
	}
	if !ok {
		return false, domain.ErrDuplicate
	}
	return true, nil
}

func (uc *MovementUseCase) release(ctx context.Context, key string) {
	if err := uc.idempotency.Release(ctx, key); err != nil {
		uc.log.Warn().Err(err).Str("idempotency_key", key).Msg("no se pudo liberar la clave de idempotencia")
	}
}

func (uc *MovementUseCase) newRecord(in SubmitMovementInput, p movement.Payload, created *ports.CreatedMovimiento) *entity.MovementRecord {
	return &entity.MovementRecord{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		BackendID:      created.ID,
		Tipo:           p.Tipo.String(),
		ProductoID:     p.ProductoID,
		Cantidad:       decimal.NewFromFloat(p.Cantidad),
		FromLocacionID: p.FromLocacionID,
		ToLocacionID:   p.ToLocacionID,
		PersonaID:      p.PersonaID,
		ProveedorID:    p.ProveedorID,
		Nota:           p.Nota,
		UserID:         in.UserID,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      uc.now(),
	}
}

// GetRecord obtiene un movimiento del diario de la empresa. ErrNotFound si no existe, es de otra
// empresa o no hay diario.
func (uc *MovementUseCase) GetRecord(ctx context.Context, companyID, id string) (*dto.MovementRecordResponse, error) {
	rec, err := uc.getRecord(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toRecordResponse(rec), nil
}

// ListRecords lista el diario de la empresa con paginación.
func (uc *MovementUseCase) ListRecords(ctx context.Context, companyID string, page dto.PageRequest) (*dto.MovementRecordListResponse, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	page.DefaultPage()
	out := &dto.MovementRecordListResponse{
		Items: []dto.MovementRecordResponse{},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	if uc.records == nil {
		return out, nil
	}
	list, err := uc.records.List(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.records.Count(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		out.Items = append(out.Items, *toRecordResponse(r))
	}
	out.Page.Total = total
	return out, nil
}

// Receipt genera el PDF del comprobante de un movimiento del diario.
func (uc *MovementUseCase) Receipt(ctx context.Context, companyID, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, domain.ErrNotFound
	}
	rec, err := uc.getRecord(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateMovementReceipt(ctx, rec)
}

func (uc *MovementUseCase) getRecord(ctx context.Context, companyID, id string) (*entity.MovementRecord, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	if uc.records == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	rec, err := uc.records.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func toRecordResponse(r *entity.MovementRecord) *dto.MovementRecordResponse {
	return &dto.MovementRecordResponse{
		ID:             r.ID,
		BackendID:      r.BackendID,
		Tipo:           r.Tipo,
		ProductoID:     r.ProductoID,
		Cantidad:       r.Cantidad,
		FromLocacionID: r.FromLocacionID,
		ToLocacionID:   r.ToLocacionID,
		PersonaID:      r.PersonaID,
		ProveedorID:    r.ProveedorID,
		Nota:           r.Nota,
		UserID:         r.UserID,
		CreatedAt:      r.CreatedAt,
	}
}
