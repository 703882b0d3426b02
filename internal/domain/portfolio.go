package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Portfolio is the aggregate of one user's holdings plus the derived
// valuation totals. Created empty at registration, mutated only by the
// upload and refresh pipelines.
//
// Version is an optimistic concurrency token: every save must match the
// loaded version and increments it, so two concurrent refreshes for the
// same user cannot silently drop one side's update.
type Portfolio struct {
	PortfolioID             uuid.UUID       `gorm:"column:portfolio_id;type:uuid;primaryKey" json:"portfolio_id"`
	UserID                  uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	InitialPortfolioValue   decimal.Decimal `gorm:"column:initial_portfolio_value;type:decimal(30,10);not null;default:0" json:"initial_portfolio_value"`
	CurrentPortfolioValue   decimal.Decimal `gorm:"column:current_portfolio_value;type:decimal(30,10);not null;default:0" json:"current_portfolio_value"`
	OverallChangePercentage float64         `gorm:"column:overall_change_percentage;not null;default:0" json:"overall_change_percentage"`
	Version                 int64           `gorm:"column:version;not null;default:0" json:"-"`
	LastUploadReport        datatypes.JSON  `gorm:"column:last_upload_report" json:"-"`
	Holdings                []Holding       `gorm:"foreignKey:PortfolioID;references:PortfolioID" json:"holdings"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

func (Portfolio) TableName() string {
	return "Portfolios"
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	if p.PortfolioID == uuid.Nil {
		p.PortfolioID = uuid.New()
	}
	return nil
}
