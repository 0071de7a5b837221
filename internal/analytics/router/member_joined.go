package router

import (
	"context"
	"fmt"

	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	outboxpayloads "github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
)

type memberJoinedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newMemberJoinedHandler(writer Writer, logg *logger.Logger) Handler {
	return &memberJoinedHandler{writer: writer, logg: logg}
}

func (h *memberJoinedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.MemberJoinedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for member_joined")
	}

	fields := map[string]any{
		"event_type": envelope.EventType,
		"trip_id":    event.TripID,
		"member_id":  event.MemberID,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildTripActivityRow(envelope, event.TripID, event.JoinedAt, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build trip activity row", err)
		return err
	}
	row.MemberID = uuidPtr(event.MemberID)
	row.UserID = uuidPtr(event.UserID)

	if err := h.writer.InsertTripActivity(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert trip activity row", err)
		return err
	}

	h.logg.Info(logCtx, "member_joined handler inserted trip activity row")
	return nil
}
