package settlements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/money"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
)

// ErrNotComputed indicates a trip has no stored snapshot yet. Reads
// treat it as a signal to compute one rather than an error surface.
var ErrNotComputed = errors.New("settlement not computed for trip")

const recomputeLockScope = "settlement_recompute"

// Service exposes the settlement read and recompute operations.
type Service interface {
	Get(ctx context.Context, tripID uuid.UUID) (*Snapshot, error)
	GetDetail(ctx context.Context, tripID, memberID uuid.UUID) (*Detail, error)
	Recompute(ctx context.Context, tripID uuid.UUID, actorUserID uuid.UUID) (*Snapshot, error)
}

// TripReader loads the trip owning a settlement.
type TripReader interface {
	GetByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
}

// RosterReader lists a trip's members in stable (joined_at, id) order.
type RosterReader interface {
	ListRoster(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error)
}

// LedgerReader lists a trip's expenses with their resolved shares in
// enumeration order.
type LedgerReader interface {
	ListWithShares(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error)
}

// TxRunner runs a closure inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Locker provides the per-trip mutual exclusion around recompute.
type Locker interface {
	AcquireLock(ctx context.Context, scope, id string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, scope, id string) error
}

// EventEmitter appends domain events to the transactional outbox.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo    Repository
	trips   TripReader
	roster  RosterReader
	ledger  LedgerReader
	tx      TxRunner
	locker  Locker
	events  EventEmitter
	logg    *logger.Logger
	lockTTL time.Duration
	now     func() time.Time
}

// ServiceParams collects the settlement service dependencies.
type ServiceParams struct {
	Repo    Repository
	Trips   TripReader
	Roster  RosterReader
	Ledger  LedgerReader
	Tx      TxRunner
	Locker  Locker
	Events  EventEmitter
	Logger  *logger.Logger
	LockTTL time.Duration
	Now     func() time.Time
}

// NewService wires the settlement service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if params.Trips == nil {
		return nil, fmt.Errorf("trip reader required")
	}
	if params.Roster == nil {
		return nil, fmt.Errorf("roster reader required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	if params.LockTTL <= 0 {
		params.LockTTL = 30 * time.Second
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		trips:   params.Trips,
		roster:  params.Roster,
		ledger:  params.Ledger,
		tx:      params.Tx,
		locker:  params.Locker,
		events:  params.Events,
		logg:    params.Logger,
		lockTTL: params.LockTTL,
		now:     params.Now,
	}, nil
}

// Get returns the stored snapshot, computing one first when the trip
// has never been settled.
func (s *service) Get(ctx context.Context, tripID uuid.UUID) (*Snapshot, error) {
	if tripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id is required")
	}
	row, err := s.repo.GetByTripID(ctx, tripID)
	if errors.Is(err, ErrNotComputed) {
		return s.Recompute(ctx, tripID, uuid.Nil)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settlement snapshot")
	}
	return snapshotView(row), nil
}

// GetDetail returns one member's total with its per-expense breakdown.
func (s *service) GetDetail(ctx context.Context, tripID, memberID uuid.UUID) (*Detail, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	snapshot, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, entry := range snapshot.Entries {
		if entry.MemberID == memberID {
			return &Detail{
				SnapshotID:     snapshot.SnapshotID,
				TripID:         snapshot.TripID,
				MemberID:       entry.MemberID,
				MemberName:     entry.MemberName,
				Currency:       snapshot.Currency,
				TotalOwedMinor: entry.TotalOwedMinor,
				ComputedAt:     snapshot.ComputedAt,
				Breakdown:      entry.Breakdown,
			}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member has no settlement entry")
}

// Recompute rebuilds the trip's snapshot from the full ledger under a
// short-lived per-trip lock. The write is transactional: the old
// snapshot stays readable until the replacement commits.
func (s *service) Recompute(ctx context.Context, tripID uuid.UUID, actorUserID uuid.UUID) (*Snapshot, error) {
	if tripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id is required")
	}

	acquired, err := s.locker.AcquireLock(ctx, recomputeLockScope, tripID.String(), s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring recompute lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "settlement recompute already in progress")
	}
	defer func() {
		if err := s.locker.ReleaseLock(ctx, recomputeLockScope, tripID.String()); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithTripID(ctx, tripID.String()), "failed to release recompute lock")
		}
	}()

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	members, err := s.roster.ListRoster(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading trip roster")
	}
	expenses, err := s.ledger.ListWithShares(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading trip ledger")
	}

	result, err := Aggregate(rosterRefs(members), ledgerFromModels(expenses))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating settlement")
	}

	computedAt := s.now()
	snapshot := &models.SettlementSnapshot{
		TripID:           tripID,
		Currency:         trip.Currency,
		TotalAmountMinor: int64(result.Total),
		ExpenseCount:     result.ExpenseCount,
		ComputedAt:       computedAt,
	}
	entries, err := entryModels(result.Entries)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding settlement entries")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Replace(tx, snapshot, entries); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventSettlementRecomputed,
			AggregateType: enums.AggregateSettlement,
			AggregateID:   snapshot.ID,
			Version:       1,
			OccurredAt:    computedAt,
			Data: payloads.SettlementRecomputedEvent{
				SnapshotID:       snapshot.ID,
				TripID:           tripID,
				TotalAmountMinor: snapshot.TotalAmountMinor,
				ExpenseCount:     snapshot.ExpenseCount,
				MemberCount:      len(entries),
				ComputedAt:       computedAt,
			},
		}
		if actorUserID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: actorUserID, TripID: &tripID}
		}
		return s.events.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing settlement snapshot")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id":       tripID.String(),
			"expense_count": snapshot.ExpenseCount,
			"total_minor":   snapshot.TotalAmountMinor,
		})
		s.logg.Info(logCtx, "settlement snapshot recomputed")
	}

	snapshot.Entries = entries
	return snapshotView(snapshot), nil
}

func rosterRefs(members []models.TripMember) []MemberRef {
	refs := make([]MemberRef, 0, len(members))
	for _, m := range members {
		refs = append(refs, MemberRef{ID: m.ID, Name: m.DisplayName, JoinedAt: m.JoinedAt})
	}
	return refs
}

func ledgerFromModels(expenses []models.Expense) []LedgerExpense {
	ledger := make([]LedgerExpense, 0, len(expenses))
	for _, e := range expenses {
		shares := make([]LedgerShare, 0, len(e.Shares))
		for _, share := range e.Shares {
			shares = append(shares, LedgerShare{MemberID: share.MemberID, Amount: money.Amount(share.AmountMinor)})
		}
		ledger = append(ledger, LedgerExpense{
			ID:          e.ID,
			Description: e.Description,
			Amount:      money.Amount(e.AmountMinor),
			SplitType:   e.SplitType,
			ExpenseDate: e.ExpenseDate,
			Shares:      shares,
		})
	}
	return ledger
}

func entryModels(entries []Entry) ([]models.SettlementEntry, error) {
	rows := make([]models.SettlementEntry, 0, len(entries))
	for i, entry := range entries {
		breakdown, err := json.Marshal(entry.Breakdown)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.SettlementEntry{
			MemberID:       entry.MemberID,
			MemberName:     entry.MemberName,
			TotalOwedMinor: int64(entry.TotalOwed),
			Position:       i,
			Breakdown:      breakdown,
		})
	}
	return rows, nil
}
