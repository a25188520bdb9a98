package revenue

import (
	"context"
	"fmt"

	cloudbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/devrecs/devrecs-backend/pkg/bigquery"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const adRevenueSQL = `
SELECT COALESCE(SUM(revenue), 0) AS revenue
FROM %s
WHERE post_id = @postID
  AND occurred_at BETWEEN @start AND @end
`

// AdReportsEstimator sources gross revenue from the ad network's reporting
// table instead of pricing clicks at a flat rate. The click count is ignored;
// the window identifies what was actually paid out for the post.
type AdReportsEstimator struct {
	client   *bigquery.Client
	tableRef string
}

// NewAdReportsEstimator builds an estimator backed by BigQuery ad reports.
func NewAdReportsEstimator(client *bigquery.Client) (*AdReportsEstimator, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	return &AdReportsEstimator{
		client:   client,
		tableRef: fmt.Sprintf("`%s`", client.AdEventsTableID()),
	}, nil
}

func (e *AdReportsEstimator) Estimate(ctx context.Context, clicks int64, window Window) (decimal.Decimal, error) {
	if clicks < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "clicks must not be negative")
	}
	if window.Start.IsZero() || window.End.IsZero() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "window start and end are required")
	}
	if window.End.Before(window.Start) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "window end must be after start")
	}

	params := []cloudbigquery.QueryParameter{
		{Name: "postID", Value: window.PostID.String()},
		{Name: "start", Value: window.Start},
		{Name: "end", Value: window.End},
	}
	iter, err := e.client.Query(ctx, fmt.Sprintf(adRevenueSQL, e.tableRef), params)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query ad revenue")
	}

	var row struct {
		Revenue float64 `bigquery:"revenue"`
	}
	if err := iter.Next(&row); err != nil {
		if err == iterator.Done {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading ad revenue row")
	}

	amount := decimal.NewFromFloat(row.Revenue)
	if amount.IsNegative() {
		return decimal.Zero, nil
	}
	return amount, nil
}
