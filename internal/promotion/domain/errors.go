package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/artisan-marketplace/pkg/apperr"
)

var (
	ErrNoStore         = errors.New("actor has no store")
	ErrProductNotFound = errors.New("product not found")
	// ErrBalanceChanged is returned by a guarded debit that found less
	// balance than it was asked to take.
	ErrBalanceChanged  = errors.New("balance lower than debit amount")
	ErrNoActivePricing = &ConfigurationError{Reason: "no active promotion pricing"}
)

type InsufficientCreditsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: %s required, %s available",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientCreditsError) Kind() apperr.Kind { return apperr.KindBusinessRule }

// Details lets a client offer a top-up for the missing amount.
func (e *InsufficientCreditsError) Details() map[string]any {
	return map[string]any{
		"required":  e.Required.StringFixed(2),
		"available": e.Available.StringFixed(2),
	}
}

// ConfigurationError means the marketplace itself is set up wrong, not the
// request.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string     { return "promotion configuration: " + e.Reason }
func (e *ConfigurationError) Kind() apperr.Kind { return apperr.KindInternal }
func (e *ConfigurationError) Public() string {
	return "promotions are not available right now"
}

// PromotionApplyError is returned after the credits were debited but the
// product could not be marked as promoted. The debit is not reversed.
type PromotionApplyError struct {
	ProductID uuid.UUID
	Err       error
}

func (e *PromotionApplyError) Error() string {
	return fmt.Sprintf("apply promotion to product %s: %v", e.ProductID, e.Err)
}

func (e *PromotionApplyError) Unwrap() error     { return e.Err }
func (e *PromotionApplyError) Kind() apperr.Kind { return apperr.KindInternal }
func (e *PromotionApplyError) Public() string {
	return "your credits were charged but the promotion could not be applied, please contact support"
}
