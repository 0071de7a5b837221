package analytics

import (
	"context"
	"fmt"

	"github.com/tripmate-app/tripmate-backend/internal/analytics/query"
	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	"github.com/tripmate-app/tripmate-backend/pkg/bigquery"
)

// Service provides spend reports based on the trip expense event stream.
type Service interface {
	// Query returns spend KPIs for the provided request.
	Query(ctx context.Context, req types.TripSpendQueryRequest) (*types.TripSpendQueryResponse, error)
}

type service struct {
	spend query.SpendService
}

// NewService builds an analytics service backed by BigQuery.
func NewService(client *bigquery.Client, project, dataset, table string) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}

	spend, err := query.NewSpendService(client, project, dataset, table)
	if err != nil {
		return nil, err
	}

	return &service{spend: spend}, nil
}

func (s *service) Query(ctx context.Context, req types.TripSpendQueryRequest) (*types.TripSpendQueryResponse, error) {
	return s.spend.Query(ctx, req)
}
