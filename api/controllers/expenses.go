package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/api/validators"
	"github.com/tripmate-app/tripmate-backend/internal/expenses"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/pagination"
)

type expenseParticipantRequest struct {
	MemberID   string  `json:"member_id" validate:"required,uuid"`
	Amount     *string `json:"amount,omitempty"`
	Percentage *string `json:"percentage,omitempty"`
}

type expenseCreateRequest struct {
	PaidByMemberID string `json:"paid_by_member_id" validate:"required,uuid"`
	Description    string `json:"description" validate:"required,min=1,max=200"`
	Amount         string `json:"amount" validate:"required"`
	Category       string `json:"category,omitempty"`
	SplitType      string `json:"split_type" validate:"required"`
	ExpenseDate    string `json:"expense_date" validate:"required"`
	// Participants may be omitted for equal splits, which then cover
	// every active trip member.
	Participants []expenseParticipantRequest `json:"participants,omitempty" validate:"omitempty,dive"`
}

// ExpenseCreate adds a ledger row. The split is resolved before
// anything persists; a resolver error leaves the ledger untouched.
func ExpenseCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload expenseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		parsed, err := parseExpenseRequest(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		expense, err := svc.Create(ctx, expenses.CreateExpenseInput{
			TripID:          tripID,
			CreatedByUserID: uid,
			PaidByMemberID:  parsed.paidBy,
			Description:     payload.Description,
			Amount:          payload.Amount,
			Category:        parsed.category,
			SplitType:       parsed.splitType,
			ExpenseDate:     parsed.expenseDate,
			Participants:    parsed.participants,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ExpenseUpdate replaces a ledger row in full. The request carries the
// same fields as create; the service re-runs the split and swaps the
// row atomically.
func ExpenseUpdate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		expenseID, err := uuid.Parse(chi.URLParam(r, "expenseId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense id"))
			return
		}

		var payload expenseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		parsed, err := parseExpenseRequest(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		expense, err := svc.Update(ctx, expenses.UpdateExpenseInput{
			TripID:          tripID,
			ExpenseID:       expenseID,
			UpdatedByUserID: uid,
			PaidByMemberID:  parsed.paidBy,
			Description:     payload.Description,
			Amount:          payload.Amount,
			Category:        parsed.category,
			SplitType:       parsed.splitType,
			ExpenseDate:     parsed.expenseDate,
			Participants:    parsed.participants,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, expense)
	}
}

type parsedExpenseRequest struct {
	paidBy       uuid.UUID
	category     enums.ExpenseCategory
	splitType    enums.SplitType
	expenseDate  time.Time
	participants []expenses.ParticipantInput
}

// parseExpenseRequest converts the wire payload into service inputs,
// shared by create and update since both take the full row.
func parseExpenseRequest(payload expenseCreateRequest) (*parsedExpenseRequest, error) {
	paidBy, err := uuid.Parse(payload.PaidByMemberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payer member id")
	}

	category := enums.ExpenseCategoryOther
	if trimmed := strings.ToLower(strings.TrimSpace(payload.Category)); trimmed != "" {
		category = enums.ExpenseCategory(trimmed)
		if !category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown expense category")
		}
	}

	splitType := enums.SplitType(strings.ToUpper(strings.TrimSpace(payload.SplitType)))
	if !splitType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown split type")
	}

	expenseDate, err := time.Parse(dateLayout, strings.TrimSpace(payload.ExpenseDate))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense_date, expected YYYY-MM-DD")
	}

	participants := make([]expenses.ParticipantInput, 0, len(payload.Participants))
	for _, participant := range payload.Participants {
		memberID, parseErr := uuid.Parse(participant.MemberID)
		if parseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid participant member id")
		}
		participants = append(participants, expenses.ParticipantInput{
			MemberID:   memberID,
			Amount:     participant.Amount,
			Percentage: participant.Percentage,
		})
	}

	return &parsedExpenseRequest{
		paidBy:       paidBy,
		category:     category,
		splitType:    splitType,
		expenseDate:  expenseDate.UTC(),
		participants: participants,
	}, nil
}

// ExpenseList pages through the trip ledger, newest expense date first.
func ExpenseList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, expenses.ListExpensesInput{
			TripID: tripID,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ExpenseDetail returns one ledger row with its resolved shares.
func ExpenseDetail(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		expenseID, err := uuid.Parse(chi.URLParam(r, "expenseId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense id"))
			return
		}

		expense, err := svc.Get(ctx, tripID, expenseID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, expense)
	}
}

// ExpenseDelete removes a ledger row and its shares. The settlement
// snapshot is left alone; recompute stays explicit.
func ExpenseDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		expenseID, err := uuid.Parse(chi.URLParam(r, "expenseId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense id"))
			return
		}

		if err := svc.Delete(ctx, tripID, expenseID, uid); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
