package types

import "time"

// TripSpendQueryRequest carries the input parameters for trip spend queries.
type TripSpendQueryRequest struct {
	TripID string
	Start  time.Time
	End    time.Time
}

// TimeSeriesPoint describes a single date/value pair returned by the query service.
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// LabelValue represents a top-N entry such as category/payer.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// TripSpendQueryResponse wraps the spend KPIs for a single trip.
type TripSpendQueryResponse struct {
	ExpensesSeries      []TimeSeriesPoint `json:"expenses"`
	SpendSeries         []TimeSeriesPoint `json:"spend"`
	TopCategories       []LabelValue      `json:"top_categories"`
	TopPayers           []LabelValue      `json:"top_payers"`
	AverageExpenseMinor float64           `json:"average_expense_minor"`
}
