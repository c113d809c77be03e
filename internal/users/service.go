package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/outbox/payloads"
	"github.com/merchantiq/pricewise-backend/pkg/security"
)

const (
	inviteTTL       = 7 * 24 * time.Hour
	inviteTokenSize = 32
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the user service.
type ServiceParams struct {
	Repo     Repository
	DB       *db.Client
	Outbox   outboxEmitter
	Password config.PasswordConfig
}

// Service manages dashboard accounts and invitations.
type Service struct {
	repo     Repository
	db       *db.Client
	outbox   outboxEmitter
	password config.PasswordConfig
}

// NewService builds a user service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	return &Service{
		repo:     params.Repo,
		db:       params.DB,
		outbox:   params.Outbox,
		password: params.Password,
	}, nil
}

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateUserInput holds the validated payload to create an account directly.
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      enums.UserRole
}

// CreatedUser pairs a new account with its one-time temporary password.
type CreatedUser struct {
	User         *models.User
	TempPassword string
}

// UpdateUserInput holds optional mutation values for an account.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Role      *enums.UserRole
	IsActive  *bool
}

// CreateInviteInput holds the validated payload to invite a new user.
type CreateInviteInput struct {
	Email string
	Role  enums.UserRole
}

// AcceptInviteInput redeems a pending invite into an account.
type AcceptInviteInput struct {
	Token     string
	FirstName string
	LastName  string
	Password  string
}

// ListUsers returns every account, oldest first.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser provisions an account with a generated temporary password. Only
// owners may create other owners.
func (s *Service) CreateUser(ctx context.Context, actor Actor, input CreateUserInput) (*CreatedUser, error) {
	if err := s.guardRoleAssignment(actor, input.Role); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, fmt.Errorf("generating temp password: %w", err)
	}
	hash, err := security.HashPassword(tempPassword, s.password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &CreatedUser{User: user, TempPassword: tempPassword}, nil
}

// UpdateUser applies the provided fields. Owner accounts can only be changed
// by owners, and the last active owner can neither be demoted nor deactivated.
func (s *Service) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	var updated *models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindUserByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}
		if user == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}

		if user.Role == enums.UserRoleOwner && actor.Role != enums.UserRoleOwner {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only owners can modify owner accounts")
		}
		if input.Role != nil {
			if err := s.guardRoleAssignment(actor, *input.Role); err != nil {
				return err
			}
		}

		demoting := input.Role != nil && user.Role == enums.UserRoleOwner && *input.Role != enums.UserRoleOwner
		deactivating := input.IsActive != nil && user.IsActive && !*input.IsActive
		if user.Role == enums.UserRoleOwner && (demoting || deactivating) {
			owners, err := repo.CountActiveOwners(ctx)
			if err != nil {
				return fmt.Errorf("counting owners: %w", err)
			}
			if owners <= 1 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot remove the last owner")
			}
		}

		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		if err := repo.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("updating user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateInvite records a pending invitation and queues its invite.created
// event; mail delivery happens downstream off the outbox.
func (s *Service) CreateInvite(ctx context.Context, actor Actor, input CreateInviteInput) (*models.Invite, error) {
	if err := s.guardRoleAssignment(actor, input.Role); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	existingUser, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existingUser != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	pending, err := s.repo.FindPendingInviteByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking pending invites: %w", err)
	}
	if pending != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "invite already pending for email")
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generating invite token: %w", err)
	}

	invite := &models.Invite{
		Email:     email,
		Role:      input.Role,
		Status:    enums.InviteStatusPending,
		Token:     token,
		InvitedBy: actor.UserID,
		ExpiresAt: time.Now().UTC().Add(inviteTTL),
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateInvite(ctx, invite); err != nil {
			return fmt.Errorf("creating invite: %w", err)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventInviteCreated,
			AggregateType: enums.OutboxAggregateInvite,
			AggregateID:   invite.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: payloads.InviteCreatedEvent{
				InviteID:  invite.ID,
				Email:     invite.Email,
				Role:      invite.Role,
				Token:     invite.Token,
				InvitedBy: invite.InvitedBy,
				ExpiresAt: invite.ExpiresAt,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// ListInvites returns invites, optionally filtered by status.
func (s *Service) ListInvites(ctx context.Context, status *enums.InviteStatus) ([]models.Invite, error) {
	return s.repo.ListInvites(ctx, status)
}

// RevokeInvite cancels a pending invite. Non-pending invites cannot change.
func (s *Service) RevokeInvite(ctx context.Context, id uuid.UUID) error {
	invite, err := s.repo.FindInviteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading invite: %w", err)
	}
	if invite == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
	}
	if invite.Status != enums.InviteStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invite is not pending")
	}
	invite.Status = enums.InviteStatusRevoked
	return s.repo.UpdateInvite(ctx, invite)
}

// AcceptInvite redeems a pending token into an active account.
func (s *Service) AcceptInvite(ctx context.Context, input AcceptInviteInput) (*models.User, error) {
	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invite, err := repo.FindInviteByToken(ctx, input.Token)
		if err != nil {
			return fmt.Errorf("loading invite: %w", err)
		}
		if invite == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		if invite.Status != enums.InviteStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invite is not pending")
		}
		if time.Now().UTC().After(invite.ExpiresAt) {
			invite.Status = enums.InviteStatusExpired
			if err := repo.UpdateInvite(ctx, invite); err != nil {
				return fmt.Errorf("expiring invite: %w", err)
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invite has expired")
		}

		user = &models.User{
			Email:        invite.Email,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Role:         invite.Role,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return fmt.Errorf("creating user: %w", err)
		}

		now := time.Now().UTC()
		invite.Status = enums.InviteStatusAccepted
		invite.AcceptedAt = &now
		return repo.UpdateInvite(ctx, invite)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) guardRoleAssignment(actor Actor, role enums.UserRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if !actor.Role.CanManageUsers() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if role == enums.UserRoleOwner && actor.Role != enums.UserRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only owners can grant the owner role")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
