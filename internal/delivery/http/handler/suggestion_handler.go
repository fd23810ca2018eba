package handler

import (
	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SuggestionHandler struct {
	uc usecase.SuggestionUsecase
}

func NewSuggestionHandler(uc usecase.SuggestionUsecase) *SuggestionHandler {
	return &SuggestionHandler{uc: uc}
}

func (h *SuggestionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/suggestions", h.GetSuggestions)
}

func (h *SuggestionHandler) GetSuggestions(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.uc.GetSuggestions(c.Context(), userID, parseLimitQuery(c, 0))
	if err != nil {
		return mapMatchingError(err)
	}

	out := make([]dto.SuggestionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, dto.NewSuggestionResponse(s))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
