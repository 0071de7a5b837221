package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	consumers "github.com/tripmate-app/tripmate-backend/internal/consumers/analytics"
	"github.com/tripmate-app/tripmate-backend/pkg/bigquery"
	"github.com/tripmate-app/tripmate-backend/pkg/config"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/pubsub"
	"github.com/tripmate-app/tripmate-backend/pkg/redis"
)

type ServiceParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Redis        *redis.Client
	PubSub       *pubsub.Client
	BigQuery     *bigquery.Client
	Subscription *gcppubsub.Subscriber
	Consumer     *consumers.Consumer
}

// Service mirrors trip ledger events from Pub/Sub into the raw BigQuery
// event archive.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	redis        *redis.Client
	pubsub       *pubsub.Client
	bigquery     *bigquery.Client
	subscription *gcppubsub.Subscriber
	consumer     *consumers.Consumer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.BigQuery == nil {
		return nil, errors.New("bigquery client is required")
	}
	if params.Subscription == nil {
		return nil, errors.New("trip events subscription is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("trip events consumer is required")
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		redis:        params.Redis,
		pubsub:       params.PubSub,
		bigquery:     params.BigQuery,
		subscription: params.Subscription,
		consumer:     params.Consumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "bigquery", s.bigquery.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run consumes trip events until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.receive(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "worker context canceled")
			return ctx.Err()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(ctx, "consumer stopped unexpectedly", err)
				return err
			}
			return err
		case <-ticker.C:
			// s.logg.Info(ctx, "worker.heartbeat")
		}
	}
}

func (s *Service) receive(ctx context.Context) error {
	return s.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		result := s.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		s.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	// Process handles idempotency and filtering; only transient failures
	// come back as errors worth redelivering.
	if err := s.consumer.Process(ctx, enums.OutboxEventType(eventType), envelope); err != nil {
		s.logg.Error(logCtx, "trip event processing failed", err)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}
