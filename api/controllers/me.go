package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/internal/users"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

// UserProfileStore persists local user rows mirroring the external
// identity provider.
type UserProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Me returns the caller's profile, creating the local row from the token
// claims on first sight. Token issuance stays in the identity service;
// this is the point where its subjects materialize locally.
func Me(store UserProfileStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := store.FindByID(ctx, uid)
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			user, err = provisionUser(ctx, store, uid)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if logg != nil {
				logg.Info(ctx, "provisioned local user from token claims")
			}
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user"))
			return
		}

		now := time.Now().UTC()
		if err := store.UpdateLastLogin(ctx, uid, now); err != nil && logg != nil {
			logg.Error(ctx, "failed to record last login", err)
		}
		user.LastLoginAt = &now

		responses.WriteSuccess(w, users.FromModel(user))
	}
}

func provisionUser(ctx context.Context, store UserProfileStore, uid uuid.UUID) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(middleware.UserEmailFromContext(ctx)))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token carries no email, cannot provision profile")
	}

	// The email column is unique. A row under the same email with a
	// different subject means the identity was re-issued upstream.
	if existing, err := store.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered to another account")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email registration")
	}

	user, err := store.Create(ctx, users.CreateUserDTO{
		ID:          &uid,
		Email:       email,
		DisplayName: displayNameFromEmail(email),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}
	return user, nil
}

func displayNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return strings.TrimSpace(local)
}
