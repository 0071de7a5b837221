package router

import (
	"context"

	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
)

type fakeWriter struct {
	expenses   []types.ExpenseEventRow
	activities []types.TripActivityRow
}

func (f *fakeWriter) InsertExpense(_ context.Context, row types.ExpenseEventRow) error {
	f.expenses = append(f.expenses, row)
	return nil
}

func (f *fakeWriter) InsertTripActivity(_ context.Context, row types.TripActivityRow) error {
	f.activities = append(f.activities, row)
	return nil
}
