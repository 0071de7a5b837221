package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/api/validators"
	"github.com/tripmate-app/tripmate-backend/internal/members"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

type memberInviteRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=80"`
}

type memberAcceptRequest struct {
	Code string `json:"code" validate:"required,min=8,max=64"`
}

type memberUpdateRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=80"`
}

// MemberRoster lists the trip roster in join order.
func MemberRoster(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		roster, err := svc.ListRoster(ctx, tripID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"members": roster})
	}
}

// MemberPendingInvites lists the roster entries still waiting on a
// code redemption.
func MemberPendingInvites(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		invites, err := svc.ListPendingInvites(ctx, tripID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"invitations": invites})
	}
}

// MemberInviteCancel withdraws an outstanding invite, removing the
// placeholder member so its code stops matching.
func MemberInviteCancel(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		memberID, err := uuid.Parse(chi.URLParam(r, "memberId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid member id"))
			return
		}

		if err := svc.CancelInvite(ctx, tripID, memberID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// MemberInvite adds a placeholder member and returns the one-time
// invite code. The code is never retrievable again.
func MemberInvite(svc members.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload memberInviteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Invite(ctx, members.InviteInput{
			TripID:          tripID,
			DisplayName:     payload.DisplayName,
			InvitedByUserID: uid,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// MemberAccept redeems an invite code. The caller is not a member yet,
// so the trip id comes straight from the URL rather than the membership
// middleware.
func MemberAccept(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tripID, err := uuid.Parse(chi.URLParam(r, "tripId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip id"))
			return
		}

		var payload memberAcceptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.Accept(ctx, members.AcceptInput{
			TripID: tripID,
			UserID: uid,
			Code:   payload.Code,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, member)
	}
}

// MemberUpdate renames a roster entry.
func MemberUpdate(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		memberID, err := uuid.Parse(chi.URLParam(r, "memberId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid member id"))
			return
		}

		var payload memberUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.Update(ctx, members.UpdateMemberInput{
			TripID:      tripID,
			MemberID:    memberID,
			DisplayName: payload.DisplayName,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, member)
	}
}
