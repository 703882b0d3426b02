package portfolio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	portfoliosvc "cryptoapp-backend/internal/application/portfolio"
	"cryptoapp-backend/internal/middleware"
	"cryptoapp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the portfolio endpoints with the pipeline service.
type Handlers struct {
	Service *portfoliosvc.Service
}

// Current GET /api/v1/portfolio/current — the full aggregate as a DTO.
func (h *Handlers) Current(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, _ := uuid.Parse(user.UserID)

	p, err := h.Service.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, portfoliosvc.ErrPortfolioNotFound) {
			return response.Error(c, "Portfolio not found", fiber.StatusNotFound, nil)
		}
		log.Error().Err(err).Str("user_id", user.UserID).Msg("portfolio: load failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	dto := portfoliosvc.MapToDTO(p, portfoliosvc.OwnerDTO{ID: user.UserID, Email: user.Email})
	return response.Success(c, "Portfolio fetched successfully", dto, nil)
}

// Upload POST /api/v1/portfolio/upload — multipart text file of holdings.
// Empty files and non-text content types are rejected before the pipeline
// runs; pipeline failure surfaces as a generic 500.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, _ := uuid.Parse(user.UserID)

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Size == 0 {
		return response.Error(c, "Invalid file.", fiber.StatusBadRequest, nil)
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "text/plain") {
		return response.Error(c, "Invalid file type. Only text files are allowed.", fiber.StatusBadRequest, nil)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, "Invalid file.", fiber.StatusBadRequest, nil)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return response.Error(c, "Invalid file.", fiber.StatusBadRequest, nil)
	}

	result, err := h.Service.Upload(c.Context(), userID, string(raw))
	if err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("portfolio: upload failed")
		return response.Error(c, "An error occurred while processing the file.", fiber.StatusInternalServerError, nil)
	}

	// Line diagnostics stay informational; they are not structured response data.
	msg := fmt.Sprintf("File processed: %d holdings added, %d duplicates ignored, %d lines skipped",
		result.Accepted, result.Duplicates, result.Skipped)
	return response.Success(c, msg, nil, nil)
}

// Refresh POST /api/v1/portfolio/refresh — re-price and recompute. No body;
// success/failure only.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, _ := uuid.Parse(user.UserID)

	if _, err := h.Service.Refresh(c.Context(), userID); err != nil {
		switch {
		case errors.Is(err, portfoliosvc.ErrFeedUnavailable):
			return response.Error(c, err.Error(), fiber.StatusBadGateway, nil)
		case errors.Is(err, portfoliosvc.ErrPortfolioNotFound):
			return response.Error(c, "Portfolio not found", fiber.StatusNotFound, nil)
		case errors.Is(err, portfoliosvc.ErrVersionConflict):
			return response.Error(c, "Portfolio was updated concurrently, please retry", fiber.StatusConflict, nil)
		default:
			log.Error().Err(err).Str("user_id", user.UserID).Msg("portfolio: refresh failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Portfolio refreshed successfully", nil, nil)
}
