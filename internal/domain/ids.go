package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// prices and totals travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// NewID returns a time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
