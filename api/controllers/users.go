package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	usersvc "github.com/merchantiq/pricewise-backend/internal/users"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=1,max=80"`
	LastName  string `json:"last_name" validate:"required,min=1,max=80"`
	Role      string `json:"role" validate:"required,oneof=owner admin member"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=80"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=80"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=owner admin member"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=owner admin member"`
}

func serviceActor(r *http.Request) (usersvc.Actor, error) {
	userID, role, err := actorFromContext(r)
	if err != nil {
		return usersvc.Actor{}, err
	}
	return usersvc.Actor{UserID: userID, Role: enums.UserRole(role)}, nil
}

func toUserResponses(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func UserList(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toUserResponses(users))
	}
}

// UserCreate provisions an account directly with a generated temporary
// password. The password is returned exactly once.
func UserCreate(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := serviceActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateUser(r.Context(), actor, usersvc.CreateUserInput{
			Email:     body.Email,
			FirstName: strings.TrimSpace(body.FirstName),
			LastName:  strings.TrimSpace(body.LastName),
			Role:      enums.UserRole(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"user":          toUserResponse(created.User),
			"temp_password": created.TempPassword,
		})
	}
}

func UserUpdate(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := serviceActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := usersvc.UpdateUserInput{IsActive: body.IsActive}
		if body.FirstName != nil {
			trimmed := strings.TrimSpace(*body.FirstName)
			input.FirstName = &trimmed
		}
		if body.LastName != nil {
			trimmed := strings.TrimSpace(*body.LastName)
			input.LastName = &trimmed
		}
		if body.Role != nil {
			role := enums.UserRole(*body.Role)
			input.Role = &role
		}

		user, err := svc.UpdateUser(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toUserResponse(user))
	}
}

func InviteList(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.InviteStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed := enums.InviteStatus(raw)
			if !parsed.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid invite status"))
				return
			}
			status = &parsed
		}

		invites, err := svc.ListInvites(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toInviteResponses(invites))
	}
}

func InviteCreate(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := serviceActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createInviteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invite, err := svc.CreateInvite(r.Context(), actor, usersvc.CreateInviteInput{
			Email: body.Email,
			Role:  enums.UserRole(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toInviteResponse(invite, true))
	}
}

func InviteRevoke(svc *usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "inviteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RevokeInvite(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}

type inviteResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt string    `json:"expires_at"`
	CreatedAt string    `json:"created_at"`
}

// toInviteResponse hides the redeem token except at creation time, when the
// admin needs it to share the invite link.
func toInviteResponse(invite *models.Invite, includeToken bool) inviteResponse {
	resp := inviteResponse{
		ID:        invite.ID,
		Email:     invite.Email,
		Role:      string(invite.Role),
		Status:    string(invite.Status),
		ExpiresAt: invite.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		CreatedAt: invite.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if includeToken {
		resp.Token = invite.Token
	}
	return resp
}

func toInviteResponses(invites []models.Invite) []inviteResponse {
	out := make([]inviteResponse, 0, len(invites))
	for i := range invites {
		out = append(out, toInviteResponse(&invites[i], false))
	}
	return out
}
