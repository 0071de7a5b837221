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

type expenseDeletedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newExpenseDeletedHandler(writer Writer, logg *logger.Logger) Handler {
	return &expenseDeletedHandler{writer: writer, logg: logg}
}

// The deleted row keeps the original amount; spend queries apply the sign.
func (h *expenseDeletedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.ExpenseDeletedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for expense_deleted")
	}

	fields := map[string]any{
		"event_type":   envelope.EventType,
		"trip_id":      event.TripID,
		"expense_id":   event.ExpenseID,
		"amount_minor": event.AmountMinor,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		h.logg.Error(logCtx, "failed to encode expense payload", err)
		return fmt.Errorf("encode payload json: %w", err)
	}

	spentAt := analytics.SpendTimestamp(nil, &event.DeletedAt, envelope.OccurredAt)
	row := types.ExpenseEventRow{
		EventID:     envelope.EventID,
		EventType:   string(envelope.EventType),
		OccurredAt:  envelope.OccurredAt,
		TripID:      event.TripID.String(),
		ExpenseID:   uuidPtr(event.ExpenseID),
		AmountMinor: int64Ptr(event.AmountMinor),
		ExpenseDate: &spentAt,
		Payload:     payloadJSON,
	}

	if err := h.writer.InsertExpense(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert expense row", err)
		return err
	}

	h.logg.Info(logCtx, "expense_deleted handler inserted expense row")
	return nil
}
