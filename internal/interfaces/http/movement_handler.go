package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/movimientos-api/internal/application/dto"
	"github.com/jhoicas/movimientos-api/internal/application/inventory"
	"github.com/jhoicas/movimientos-api/internal/application/ports"
	"github.com/jhoicas/movimientos-api/internal/domain"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

// HeaderIdempotencyKey cabecera opcional para evitar registrar dos veces el mismo envío.
const HeaderIdempotencyKey = "Idempotency-Key"

// MovementHandler maneja las peticiones HTTP de movimientos de stock (protegido).
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// ListRules godoc
// @Summary      Reglas de locación de todos los tipos
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.RulesResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/movimientos/reglas [get]
func (h *MovementHandler) ListRules(c *fiber.Ctx) error {
	return c.JSON(h.uc.AllRules())
}

// GetRules godoc
// @Summary      Reglas de locación de un tipo
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        tipo  path  string  true  "ingreso | egreso | uso | traspaso | ajuste"
// @Success      200  {object}  dto.RulesResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimientos/reglas/{tipo} [get]
func (h *MovementHandler) GetRules(c *fiber.Ctx) error {
	out, err := h.uc.Rules(movement.ParseMovementType(c.Params("tipo")))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de movimiento desconocido"})
	}
	return c.JSON(out)
}

// Validate godoc
// @Summary      Validar formulario de movimiento sin registrarlo
// @Description  Devuelve todos los errores por campo. Si es válido incluye la cantidad parseada y la vista previa del payload.
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementFormRequest  true  "Estado del formulario"
// @Success      200   {object}  dto.ValidationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/movimientos/validar [post]
func (h *MovementHandler) Validate(c *fiber.Ctx) error {
	var in dto.MovementFormRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	normalizeForm(&in)
	out := h.uc.Validate(in.ToFormState())
	if shape := shapeErrors(in); len(shape) > 0 {
		out.Errors = mergeErrors(out.Errors, shape)
		out.IsValid = false
		out.Quantity = nil
		out.Payload = nil
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar movimiento de stock
// @Description  Valida el formulario, arma el payload canónico y lo envía al backend de inventario.
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.MovementFormRequest  true  "Estado del formulario"
// @Success      201   {object}  dto.SubmitMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/movimientos [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return writeUnauthorized(c)
	}
	var in dto.MovementFormRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	normalizeForm(&in)
	form := in.ToFormState()
	if shape := shapeErrors(in); len(shape) > 0 {
		fields := mergeErrors(h.uc.Validate(form).Errors, shape)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "movimiento inválido", Fields: fields})
	}

	out, err := h.uc.Submit(c.UserContext(), inventory.SubmitMovementInput{
		CompanyID:      companyID,
		UserID:         userID,
		Token:          GetToken(c),
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
		Form:           form,
	})
	if err != nil {
		return writeSubmitError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func writeSubmitError(c *fiber.Ctx, err error) error {
	var vErr *movement.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "movimiento inválido", Fields: vErr.Fields})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "este movimiento ya fue enviado"})
	}
	var apiErr *ports.APIError
	if errors.As(err, &apiErr) {
		resp := dto.ErrorResponse{Code: "BACKEND_REJECTED", Message: apiErr.Message, Detail: apiErr.ErrorDetail}
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			resp.Code = "INSUFFICIENT_STOCK"
			return c.Status(fiber.StatusConflict).JSON(resp)
		case apiErr.Status >= 400 && apiErr.Status < 500:
			return c.Status(apiErr.Status).JSON(resp)
		default:
			resp.Code = "BACKEND_ERROR"
			return c.Status(fiber.StatusBadGateway).JSON(resp)
		}
	}
	if errors.Is(err, domain.ErrBackendUnavailable) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "BACKEND_UNAVAILABLE", Message: "no se pudo contactar al backend de inventario"})
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return writeUnauthorized(c)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// ListRecords godoc
// @Summary      Listar movimientos enviados desde este servicio
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo 100 (por defecto 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.MovementRecordListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/movimientos/registros [get]
func (h *MovementHandler) ListRecords(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit y offset deben ser enteros"})
	}
	out, err := h.uc.ListRecords(c.UserContext(), GetCompanyID(c), page)
	if err != nil {
		return writeRecordError(c, err)
	}
	return c.JSON(out)
}

// GetRecord godoc
// @Summary      Obtener un movimiento del diario
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID (UUID) del registro"
// @Success      200  {object}  dto.MovementRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimientos/registros/{id} [get]
func (h *MovementHandler) GetRecord(c *fiber.Ctx) error {
	out, err := h.uc.GetRecord(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeRecordError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de un movimiento
// @Tags         movimientos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID (UUID) del registro"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimientos/registros/{id}/comprobante [get]
func (h *MovementHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Receipt(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return writeRecordError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="movimiento-`+id+`.pdf"`)
	return c.Send(pdf)
}

func writeRecordError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return writeUnauthorized(c)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func writeUnauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: domain.ErrUnauthorized.Error() + ": el token no identifica empresa y usuario"})
}
