package router

import (
	"context"
	"fmt"

	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	outboxpayloads "github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
)

type settlementRecomputedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newSettlementRecomputedHandler(writer Writer, logg *logger.Logger) Handler {
	return &settlementRecomputedHandler{writer: writer, logg: logg}
}

func (h *settlementRecomputedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.SettlementRecomputedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for settlement_recomputed")
	}

	fields := map[string]any{
		"event_type":  envelope.EventType,
		"trip_id":     event.TripID,
		"snapshot_id": event.SnapshotID,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildTripActivityRow(envelope, event.TripID, event.ComputedAt, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build trip activity row", err)
		return err
	}
	row.SnapshotID = uuidPtr(event.SnapshotID)
	row.TotalAmountMinor = int64Ptr(event.TotalAmountMinor)
	row.ExpenseCount = int64Ptr(int64(event.ExpenseCount))
	row.MemberCount = int64Ptr(int64(event.MemberCount))

	if err := h.writer.InsertTripActivity(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert trip activity row", err)
		return err
	}

	h.logg.Info(logCtx, "settlement_recomputed handler inserted trip activity row")
	return nil
}
