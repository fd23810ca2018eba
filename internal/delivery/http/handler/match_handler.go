package handler

import (
	"errors"
	"strconv"
	"strings"

	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/domain/match"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/repository"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	uc usecase.MatchingUsecase
}

func NewMatchHandler(uc usecase.MatchingUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/find", h.FindMatches)
	r.Get("/", h.GetUserMatches)
	r.Put("/:match_id/interest", h.UpdateInterest)
}

func (h *MatchHandler) FindMatches(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	filter := repository.CandidateFilter{
		Skills:    parseListQuery(c.Query("skills")),
		Location:  c.Query("location"),
		Languages: parseListQuery(c.Query("languages")),
	}
	if raw := strings.TrimSpace(c.Query("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid min_rating", nil, err)
		}
		filter.MinRating = v
	}

	results, err := h.uc.FindMatches(c.Context(), userID, filter, parseLimitQuery(c, 0))
	if err != nil {
		return mapMatchingError(err)
	}

	out := make([]dto.FoundMatchResponse, 0, len(results))
	for _, r := range results {
		out = append(out, dto.NewFoundMatchResponse(r))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) GetUserMatches(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var status *match.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, ok := match.ParseStatus(raw)
		if !ok {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, nil)
		}
		status = &st
	}

	items, err := h.uc.GetUserMatches(c.Context(), userID, status, parseLimitQuery(c, 0))
	if err != nil {
		return mapMatchingError(err)
	}

	out := make([]dto.UserMatchResponse, 0, len(items))
	for _, m := range items {
		out = append(out, dto.NewUserMatchResponse(m))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) UpdateInterest(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	matchID, err := uuid.Parse(c.Params("match_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.UpdateInterestRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.Interested == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Field interested is required", nil, nil)
	}

	rec, err := h.uc.UpdateMatchInterest(c.Context(), matchID, userID, *req.Interested)
	if err != nil {
		return mapMatchingError(err)
	}

	out := dto.UpdateInterestResponse{
		MatchID:       rec.ID,
		Status:        string(rec.Status),
		User1Interest: rec.User1Interest,
		User2Interest: rec.User2Interest,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func parseListQuery(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLimitQuery(c fiber.Ctx, def int) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func mapMatchingError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, usecase.ErrMatchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Match not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidFilter):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid filter", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
