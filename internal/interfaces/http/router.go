package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/movimientos-api/internal/application/inventory"
	"github.com/jhoicas/movimientos-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MovementUC *inventory.MovementUseCase
	JWTSecret  string
	JWTIssuer  string
	Logger     zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	movimientos := api.Group("/movimientos")
	h := NewMovementHandler(deps.MovementUC)
	movimientos.Get("/reglas", h.ListRules)
	movimientos.Get("/reglas/:tipo", h.GetRules)
	movimientos.Post("/validar", h.Validate)
	movimientos.Post("/", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), h.Create)
	movimientos.Get("/registros", h.ListRecords)
	movimientos.Get("/registros/:id", h.GetRecord)
	movimientos.Get("/registros/:id/comprobante", h.Receipt)
}
