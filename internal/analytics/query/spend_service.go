package query

import (
	"context"
	"fmt"

	cloudbigquery "cloud.google.com/go/bigquery"
	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	"github.com/tripmate-app/tripmate-backend/pkg/bigquery"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"google.golang.org/api/iterator"
)

const (
	timeSeriesExpensesSQL = `
SELECT
  FORMAT_DATE('%%F', DATE_TRUNC(COALESCE(expense_date, occurred_at), DAY)) AS day,
  COUNTIF(event_type = 'expense_created') AS value
FROM %s
WHERE trip_id = @tripID
  AND event_type = 'expense_created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	timeSeriesSpendSQL = `
SELECT
  FORMAT_DATE('%%F', DATE_TRUNC(COALESCE(expense_date, occurred_at), DAY)) AS day,
  SUM(CASE
    WHEN event_type = 'expense_created' THEN COALESCE(amount_minor, 0)
    ELSE -COALESCE(amount_minor, 0)
  END) AS value
FROM %s
WHERE trip_id = @tripID
  AND event_type IN ('expense_created', 'expense_deleted')
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	topCategoriesSQL = `
SELECT category AS label, SUM(COALESCE(amount_minor, 0)) AS value
FROM %s
WHERE trip_id = @tripID
  AND category IS NOT NULL
  AND event_type = 'expense_created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY category
ORDER BY value DESC
LIMIT 5
`

	topPayersSQL = `
SELECT paid_by_member_id AS label, SUM(COALESCE(amount_minor, 0)) AS value
FROM %s
WHERE trip_id = @tripID
  AND paid_by_member_id IS NOT NULL
  AND event_type = 'expense_created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY paid_by_member_id
ORDER BY value DESC
LIMIT 5
`

	averageExpenseSQL = `
SELECT SAFE_DIVIDE(SUM(COALESCE(amount_minor, 0)), NULLIF(COUNT(DISTINCT expense_id), 0)) AS value
FROM %s
WHERE trip_id = @tripID
  AND event_type = 'expense_created'
  AND occurred_at BETWEEN @start AND @end
`
)

// SpendService provides trip dashboard data from BigQuery expense_events.
//
// Deleted expenses stay in the event stream, so the spend series subtracts
// expense_deleted amounts instead of filtering rows. Top-N and average
// queries consider creations only; a deletion skews them until the window
// rolls past it, which is acceptable for dashboard use.
type SpendService interface {
	Query(ctx context.Context, req types.TripSpendQueryRequest) (*types.TripSpendQueryResponse, error)
}

type spendService struct {
	client   *bigquery.Client
	tableRef string
}

// NewSpendService builds a service backed by BigQuery.
func NewSpendService(client *bigquery.Client, project, dataset, table string) (SpendService, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	if project == "" || dataset == "" || table == "" {
		return nil, fmt.Errorf("project, dataset, and table are required")
	}
	return &spendService{
		client:   client,
		tableRef: fmt.Sprintf("`%s.%s.%s`", project, dataset, table),
	}, nil
}

func (s *spendService) Query(ctx context.Context, req types.TripSpendQueryRequest) (*types.TripSpendQueryResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	params := s.baseParams(req)

	expenses, err := s.querySeries(ctx, fmt.Sprintf(timeSeriesExpensesSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	spend, err := s.querySeries(ctx, fmt.Sprintf(timeSeriesSpendSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	topCategories, err := s.queryTopLabels(ctx, fmt.Sprintf(topCategoriesSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	topPayers, err := s.queryTopLabels(ctx, fmt.Sprintf(topPayersSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	average, err := s.queryAverage(ctx, fmt.Sprintf(averageExpenseSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	return &types.TripSpendQueryResponse{
		ExpensesSeries:      expenses,
		SpendSeries:         spend,
		TopCategories:       topCategories,
		TopPayers:           topPayers,
		AverageExpenseMinor: average,
	}, nil
}

func validateRequest(req types.TripSpendQueryRequest) error {
	if req.TripID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if req.End.Before(req.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return nil
}

func (s *spendService) baseParams(req types.TripSpendQueryRequest) []cloudbigquery.QueryParameter {
	return []cloudbigquery.QueryParameter{
		{Name: "tripID", Value: req.TripID},
		{Name: "start", Value: req.Start},
		{Name: "end", Value: req.End},
	}
}

func (s *spendService) querySeries(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.TimeSeriesPoint, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}

	var points []types.TimeSeriesPoint
	for {
		var row struct {
			Day   string `bigquery:"day"`
			Value int64  `bigquery:"value"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading series row: %w", err)
		}
		points = append(points, types.TimeSeriesPoint{Date: row.Day, Value: row.Value})
	}
	return points, nil
}

func (s *spendService) queryTopLabels(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.LabelValue, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query top labels: %w", err)
	}

	var result []types.LabelValue
	for {
		var row struct {
			Label string `bigquery:"label"`
			Value int64  `bigquery:"value"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading top label row: %w", err)
		}
		result = append(result, types.LabelValue{Label: row.Label, Value: row.Value})
	}
	return result, nil
}

func (s *spendService) queryAverage(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (float64, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return 0, fmt.Errorf("query average expense: %w", err)
	}
	var row struct {
		Value cloudbigquery.NullFloat64 `bigquery:"value"`
	}
	if err := iter.Next(&row); err != nil {
		if err == iterator.Done {
			return 0, nil
		}
		return 0, fmt.Errorf("reading average expense row: %w", err)
	}
	if !row.Value.Valid {
		return 0, nil
	}
	return row.Value.Float64, nil
}
