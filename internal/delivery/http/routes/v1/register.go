package v1

import (
	"log"

	"skill-swap/internal/config"
	"skill-swap/internal/database"
	"skill-swap/internal/delivery/http/handler"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/domain/matching"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/pkg/jwt"
	"skill-swap/internal/repository"
	"skill-swap/internal/usecase"
	"skill-swap/internal/ws"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, cfg config.Config, db database.DB, redisCache *cache.Redis, hub *ws.Hub, logger *log.Logger) error {
	if r == nil {
		return nil
	}

	jwtSvc := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	scorer, err := matching.NewScorer(matching.DefaultWeights())
	if err != nil {
		return err
	}

	profileRepo := repository.NewPostgresProfileRepository(db)
	matchRepo := repository.NewPostgresMatchRepository(db)

	matchingUC := usecase.NewMatchingUsecase(profileRepo, matchRepo, scorer, redisCache, hub, cfg.Matching)
	suggestionUC := usecase.NewSuggestionEngine(profileRepo, matchRepo, scorer, redisCache, cfg.Matching)
	analyticsUC := usecase.NewAnalyticsUsecase(matchRepo)

	matchHandler := handler.NewMatchHandler(matchingUC)
	suggestionHandler := handler.NewSuggestionHandler(suggestionUC)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsUC)
	wsHandler := ws.NewHandler(hub, logger)

	protected := r.Group("", authMw.Middleware())

	matchesGroup := protected.Group("/matches")
	matchHandler.RegisterRoutes(matchesGroup)
	suggestionHandler.RegisterRoutes(matchesGroup)
	analyticsHandler.RegisterRoutes(matchesGroup)

	protected.Get("/ws/matches", wsHandler.HandleMatchesWS)

	return nil
}
