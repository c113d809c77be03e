package controllers

import (
	"net/http"
	"strings"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	"github.com/merchantiq/pricewise-backend/internal/previews"
	usersvc "github.com/merchantiq/pricewise-backend/internal/users"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

type acceptInviteRequest struct {
	Token     string `json:"token" validate:"required,min=16"`
	FirstName string `json:"first_name" validate:"required,min=1,max=80"`
	LastName  string `json:"last_name" validate:"required,min=1,max=80"`
	Password  string `json:"password" validate:"required,min=10,max=128"`
}

// PreviewFetch serves a rendered report as a standalone HTML page. The link
// is shared with clients, so it is public but unguessable.
func PreviewFetch(store *previews.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "previewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		html, err := store.Fetch(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteHTML(w, html)
	}
}

// InviteAccept redeems an invite token into an active account.
func InviteAccept(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body acceptInviteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.AcceptInvite(r.Context(), usersvc.AcceptInviteInput{
			Token:     strings.TrimSpace(body.Token),
			FirstName: strings.TrimSpace(body.FirstName),
			LastName:  strings.TrimSpace(body.LastName),
			Password:  body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toUserResponse(user))
	}
}
