package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
)

// Window scopes an estimate to one post and date range so external revenue
// sources can be queried by post identity rather than raw click volume.
type Window struct {
	PostID uuid.UUID
	Start  time.Time
	End    time.Time
}

// Estimator converts a click count into estimated gross ad revenue.
// Implementations must be side-effect free from the caller's point of view.
type Estimator interface {
	Estimate(ctx context.Context, clicks int64, window Window) (decimal.Decimal, error)
}

// FixedRateEstimator prices every click at a flat configured rate.
type FixedRateEstimator struct {
	rate decimal.Decimal
}

// NewFixedRateEstimator builds the flat-rate estimator.
func NewFixedRateEstimator(ratePerClick decimal.Decimal) (*FixedRateEstimator, error) {
	if ratePerClick.IsNegative() {
		return nil, fmt.Errorf("rate per click must not be negative")
	}
	return &FixedRateEstimator{rate: ratePerClick}, nil
}

func (e *FixedRateEstimator) Estimate(_ context.Context, clicks int64, _ Window) (decimal.Decimal, error) {
	if clicks < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "clicks must not be negative")
	}
	return e.rate.Mul(decimal.NewFromInt(clicks)), nil
}
