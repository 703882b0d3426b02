package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is one asset position inside a Portfolio: the coin symbol, the
// amount owned, the buy price, and the most recently observed price.
// Coin is stored verbatim as parsed from the upload file; the symbol
// comparison rules live in the valuation engine, not here.
type Holding struct {
	HoldingID        uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	PortfolioID      uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	Coin             string          `gorm:"column:coin;not null" json:"coin"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(30,10);not null;default:0" json:"amount"`
	InitialBuyPrice  decimal.Decimal `gorm:"column:initial_buy_price;type:decimal(30,10);not null;default:0" json:"initial_buy_price"`
	CurrentPrice     decimal.Decimal `gorm:"column:current_price;type:decimal(30,10);not null;default:0" json:"current_price"`
	ChangePercentage float64         `gorm:"column:change_percentage;not null;default:0" json:"change_percentage"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Holding) TableName() string {
	return "Holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
