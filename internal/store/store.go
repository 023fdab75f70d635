// Package store persists the last used loan parameters so they can be shared
// between the simple and the advanced calculator views.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no loan data is stored under an id.
var ErrNotFound = errors.New("loan data not found")

// Store is implemented by every persistence driver. Implementations are safe
// for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (LoanData, error)
	Save(ctx context.Context, id string, data LoanData) error
	// Update merges partial into the data stored under id as one atomic
	// step and returns the result. It returns ErrNotFound for an unknown id.
	Update(ctx context.Context, id string, partial LoanData) (LoanData, error)
	Close() error
}

// LoanData is a partially filled set of calculator inputs. Every field is
// optional; nil means "not entered yet".
type LoanData struct {
	Amount        *float64  `json:"amount"`
	Period        *int      `json:"period"`
	Rate          *float64  `json:"rate"`
	InsuranceRate *float64  `json:"insuranceRate"`
	FixedMonths   *int      `json:"fixedMonths"`
	VariableRate  *float64  `json:"variableRate"`
	Type          *string   `json:"type,omitempty"`
	Currency      *string   `json:"currency,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Merge overlays the non-nil fields of partial onto d.
func (d LoanData) Merge(partial LoanData) LoanData {
	if partial.Amount != nil {
		d.Amount = partial.Amount
	}
	if partial.Period != nil {
		d.Period = partial.Period
	}
	if partial.Rate != nil {
		d.Rate = partial.Rate
	}
	if partial.InsuranceRate != nil {
		d.InsuranceRate = partial.InsuranceRate
	}
	if partial.FixedMonths != nil {
		d.FixedMonths = partial.FixedMonths
	}
	if partial.VariableRate != nil {
		d.VariableRate = partial.VariableRate
	}
	if partial.Type != nil {
		d.Type = partial.Type
	}
	if partial.Currency != nil {
		d.Currency = partial.Currency
	}
	return d
}
