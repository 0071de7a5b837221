package controllers

import (
	"net/http"

	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if trip := middleware.TripIDFromContext(r.Context()); trip != "" {
			payload["trip_id"] = trip
		}
		responses.WriteSuccess(w, payload)
	}
}
