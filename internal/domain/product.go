package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const PlaceholderImage = "https://via.placeholder.com/300x200?text=No+Image"

type Product struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Image             string          `json:"image"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt,omitzero"`
	IsPendingApproval bool            `json:"isPendingApproval,omitempty"`
	CreatedBy         string          `json:"createdBy,omitempty"`
}

func (p Product) GetID() string { return p.ID }
