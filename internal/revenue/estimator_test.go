package revenue

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrecs/devrecs-backend/pkg/config"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
)

func TestFixedRateEstimate(t *testing.T) {
	est, err := NewFixedRateEstimator(decimal.RequireFromString("0.02"))
	require.NoError(t, err)

	cases := []struct {
		name   string
		clicks int64
		want   string
	}{
		{name: "zero clicks", clicks: 0, want: "0"},
		{name: "single click", clicks: 1, want: "0.02"},
		{name: "first sweep volume", clicks: 150, want: "3.00"},
		{name: "next day delta", clicks: 20, want: "0.40"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := est.Estimate(context.Background(), tc.clicks, Window{})
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"expected %s, got %s", tc.want, got)
		})
	}
}

func TestFixedRateEstimateRejectsNegativeClicks(t *testing.T) {
	est, err := NewFixedRateEstimator(decimal.RequireFromString("0.02"))
	require.NoError(t, err)

	_, err = est.Estimate(context.Background(), -1, Window{})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestNewFixedRateEstimatorRejectsNegativeRate(t *testing.T) {
	_, err := NewFixedRateEstimator(decimal.RequireFromString("-0.01"))
	require.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.EarningsConfig{
		RatePerClick:  decimal.RequireFromString("0.02"),
		RevenueSource: config.RevenueSourceFixed,
	}
	est, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	_, ok := est.(*FixedRateEstimator)
	assert.True(t, ok)

	cfg.RevenueSource = config.RevenueSourceAdReports
	_, err = NewFromConfig(cfg, nil)
	require.Error(t, err, "adreports source requires a bigquery client")

	cfg.RevenueSource = "oracle"
	_, err = NewFromConfig(cfg, nil)
	require.Error(t, err)
}
