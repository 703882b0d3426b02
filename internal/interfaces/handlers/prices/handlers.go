package prices

import (
	pricesvc "cryptoapp-backend/internal/application/prices"
	"cryptoapp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers exposes the ticker feed passthrough endpoints.
type Handlers struct {
	Client *pricesvc.Client
	Limit  int
}

// TopCoins GET /api/v1/coins/top — first page of the batch ticker feed.
func (h *Handlers) TopCoins(c *fiber.Ctx) error {
	limit := h.Limit
	if limit <= 0 {
		limit = 100
	}
	tickers, err := h.Client.FetchTickers(c.Context(), 0, limit)
	if err != nil {
		log.Error().Err(err).Msg("coins: ticker fetch failed")
		return response.Error(c, "An error occurred while fetching coins from the price feed. Please try again later.", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Coins fetched successfully", tickers, nil)
}
