package controllers

import (
	"net/http"

	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/api/validators"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/security"
)

type InvitePreflightBody struct {
	Code string `json:"code" validate:"required,min=4,max=40"`
}

// InvitePreflight checks an invite code's shape before the client sends
// the user through the authenticated join flow. It never touches the
// database, so it reveals nothing about which codes exist.
func InvitePreflight(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body InvitePreflightBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		normalized := security.NormalizeInviteCode(body.Code)

		responses.WriteSuccess(w, map[string]any{
			"code":        normalized,
			"well_formed": security.IsWellFormedInviteCode(normalized),
		})
	}
}
