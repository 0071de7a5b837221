package router

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	analyticswriter "github.com/tripmate-app/tripmate-backend/internal/analytics/writer"
)

func buildTripActivityRow(envelope types.Envelope, tripID uuid.UUID, occurred time.Time, payload any) (types.TripActivityRow, error) {
	if occurred.IsZero() {
		occurred = envelope.OccurredAt
	}

	payloadJSON, err := analyticswriter.EncodeJSON(payload)
	if err != nil {
		return types.TripActivityRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return types.TripActivityRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: occurred.UTC(),
		TripID:     tripID.String(),
		Payload:    payloadJSON,
	}, nil
}
