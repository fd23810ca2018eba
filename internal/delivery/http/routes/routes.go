package routes

import (
	"log"

	"skill-swap/internal/config"
	"skill-swap/internal/database"
	"skill-swap/internal/delivery/http/handler"
	v1 "skill-swap/internal/delivery/http/routes/v1"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
}

func NewRegistry() *Registry {
	return &Registry{health: handler.NewHealthHandler()}
}

func (r *Registry) Register(app *fiber.App, cfg config.Config, db database.DB, redisCache *cache.Redis, hub *ws.Hub, logger *log.Logger) error {
	if app == nil {
		return nil
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	return v1.Register(api.Group("/v1"), cfg, db, redisCache, hub, logger)
}
