package app

import (
	"fmt"
	"strings"

	"skill-swap/internal/config"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func Bootstrap(cfg config.Config, container *Container) (*App, error) {
	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	errMw := middleware.NewErrorMiddleware()
	accessMw := middleware.NewAccessLogMiddleware(container.Logger)
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	registry := routes.NewRegistry()
	if err := registry.Register(f, cfg, container.DB, container.Cache, container.Hub, container.Logger); err != nil {
		return nil, err
	}

	return &App{Fiber: f, Container: container}, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
