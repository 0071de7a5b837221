package router

import (
	"context"
	"fmt"

	"github.com/tripmate-app/tripmate-backend/internal/analytics"
	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	analyticswriter "github.com/tripmate-app/tripmate-backend/internal/analytics/writer"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	outboxpayloads "github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
)

type expenseCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newExpenseCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &expenseCreatedHandler{writer: writer, logg: logg}
}

func (h *expenseCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.ExpenseCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for expense_created")
	}

	fields := map[string]any{
		"event_type":   envelope.EventType,
		"trip_id":      event.TripID,
		"expense_id":   event.ExpenseID,
		"amount_minor": event.AmountMinor,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildExpenseCreatedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build expense row", err)
		return err
	}

	if err := h.writer.InsertExpense(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert expense row", err)
		return err
	}

	h.logg.Info(logCtx, "expense_created handler inserted expense row")
	return nil
}

func buildExpenseCreatedRow(envelope types.Envelope, event *outboxpayloads.ExpenseCreatedEvent) (types.ExpenseEventRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.ExpenseEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	spentAt := analytics.SpendTimestamp(&event.ExpenseDate, nil, envelope.OccurredAt)

	return types.ExpenseEventRow{
		EventID:        envelope.EventID,
		EventType:      string(envelope.EventType),
		OccurredAt:     envelope.OccurredAt,
		TripID:         event.TripID.String(),
		ExpenseID:      uuidPtr(event.ExpenseID),
		PaidByMemberID: uuidPtr(event.PaidByMemberID),
		AmountMinor:    int64Ptr(event.AmountMinor),
		Currency:       stringPtr(string(event.Currency)),
		Category:       stringPtr(string(event.Category)),
		SplitType:      stringPtr(string(event.SplitType)),
		ExpenseDate:    &spentAt,
		ShareCount:     int64Ptr(int64(event.ShareCount)),
		Payload:        payloadJSON,
	}, nil
}
