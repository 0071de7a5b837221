package analytics

import (
	"context"
	"time"

	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
)

type testAnalyticsService struct {
	last     types.TripSpendQueryRequest
	response *types.TripSpendQueryResponse
	err      error
}

func (s *testAnalyticsService) Query(ctx context.Context, req types.TripSpendQueryRequest) (*types.TripSpendQueryResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response == nil {
		s.response = &types.TripSpendQueryResponse{}
	}
	return s.response, nil
}

func (s *testAnalyticsService) called() bool {
	return s.last.TripID != ""
}

func (s *testAnalyticsService) period() time.Duration {
	return s.last.End.Sub(s.last.Start)
}
