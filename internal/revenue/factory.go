package revenue

import (
	"fmt"

	"github.com/devrecs/devrecs-backend/pkg/bigquery"
	"github.com/devrecs/devrecs-backend/pkg/config"
)

// NewFromConfig selects the estimator implementation for the configured
// revenue source. The BigQuery client may be nil when the source is fixed.
func NewFromConfig(cfg config.EarningsConfig, bq *bigquery.Client) (Estimator, error) {
	switch cfg.RevenueSource {
	case config.RevenueSourceFixed:
		return NewFixedRateEstimator(cfg.RatePerClick)
	case config.RevenueSourceAdReports:
		return NewAdReportsEstimator(bq)
	default:
		return nil, fmt.Errorf("unknown revenue source %q", cfg.RevenueSource)
	}
}
