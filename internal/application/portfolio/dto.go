package portfolio

import (
	"github.com/google/uuid"

	"cryptoapp-backend/internal/domain"
)

// OwnerDTO is the owning user's public identity.
type OwnerDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// HoldingDTO is the transfer shape for one holding.
type HoldingDTO struct {
	ID               uuid.UUID `json:"id"`
	Coin             string    `json:"coin"`
	Amount           float64   `json:"amount"`
	InitialBuyPrice  float64   `json:"initialBuyPrice"`
	CurrentPrice     float64   `json:"currentPrice"`
	ChangePercentage float64   `json:"changePercentage"`
}

// PortfolioDTO is the transfer shape for the whole aggregate.
type PortfolioDTO struct {
	ID                      uuid.UUID    `json:"id"`
	InitialPortfolioValue   float64      `json:"initialPortfolioValue"`
	CurrentPortfolioValue   float64      `json:"currentPortfolioValue"`
	OverallChangePercentage float64      `json:"overallChangePercentage"`
	Holdings                []HoldingDTO `json:"holdings"`
	User                    OwnerDTO     `json:"user"`
}

// MapToDTO shapes a portfolio aggregate for transport.
func MapToDTO(p *domain.Portfolio, owner OwnerDTO) *PortfolioDTO {
	dto := &PortfolioDTO{
		ID:                      p.PortfolioID,
		InitialPortfolioValue:   p.InitialPortfolioValue.InexactFloat64(),
		CurrentPortfolioValue:   p.CurrentPortfolioValue.InexactFloat64(),
		OverallChangePercentage: p.OverallChangePercentage,
		Holdings:                make([]HoldingDTO, 0, len(p.Holdings)),
		User:                    owner,
	}
	for i := range p.Holdings {
		h := &p.Holdings[i]
		dto.Holdings = append(dto.Holdings, HoldingDTO{
			ID:               h.HoldingID,
			Coin:             h.Coin,
			Amount:           h.Amount.InexactFloat64(),
			InitialBuyPrice:  h.InitialBuyPrice.InexactFloat64(),
			CurrentPrice:     h.CurrentPrice.InexactFloat64(),
			ChangePercentage: h.ChangePercentage,
		})
	}
	return dto
}
