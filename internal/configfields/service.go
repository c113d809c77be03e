package configfields

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
)

// ServiceParams groups dependencies for the configuration service.
type ServiceParams struct {
	Repo Repository
	DB   *db.Client
}

// Service manages admin-defined configuration definitions and their fields.
type Service struct {
	repo Repository
	db   *db.Client
}

// NewService builds a configuration service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	return &Service{repo: params.Repo, db: params.DB}, nil
}

// FieldInput describes one sub-field in creation/update payloads. Field order
// follows slice order.
type FieldInput struct {
	FieldKey string
	Label    string
}

// CreateDefinitionInput holds the validated payload to create a definition.
type CreateDefinitionInput struct {
	Name     string
	IsActive bool
	Fields   []FieldInput
}

// UpdateDefinitionInput holds optional mutation values for a definition.
type UpdateDefinitionInput struct {
	Name     *string
	IsActive *bool
	Fields   *[]FieldInput
}

// CreateDefinition inserts a definition with its ordered fields.
func (s *Service) CreateDefinition(ctx context.Context, input CreateDefinitionInput) (*models.ConfigurationDefinition, error) {
	if err := validateFields(input.Fields); err != nil {
		return nil, err
	}

	definition := &models.ConfigurationDefinition{
		Name:     input.Name,
		IsActive: input.IsActive,
		Fields:   buildFields(uuid.Nil, input.Fields),
	}
	if err := s.repo.Create(ctx, definition); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "configuration name already exists").
				WithDetails(map[string]string{"name": input.Name})
		}
		return nil, fmt.Errorf("creating configuration: %w", err)
	}
	return definition, nil
}

// UpdateDefinition applies the provided fields. Passing Fields replaces the
// whole field set atomically.
func (s *Service) UpdateDefinition(ctx context.Context, id uuid.UUID, input UpdateDefinitionInput) (*models.ConfigurationDefinition, error) {
	if input.Fields != nil {
		if err := validateFields(*input.Fields); err != nil {
			return nil, err
		}
	}

	var updated *models.ConfigurationDefinition
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		definition, err := repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if definition == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
		}

		if input.Name != nil {
			definition.Name = *input.Name
		}
		if input.IsActive != nil {
			definition.IsActive = *input.IsActive
		}
		if err := repo.Update(ctx, definition); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "configuration name already exists")
			}
			return fmt.Errorf("updating configuration: %w", err)
		}

		if input.Fields != nil {
			fields := buildFields(definition.ID, *input.Fields)
			if err := repo.ReplaceFields(ctx, definition.ID, fields); err != nil {
				return fmt.Errorf("replacing fields: %w", err)
			}
			definition.Fields = fields
		}

		updated = definition
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDefinition removes a definition and its fields (cascade).
func (s *Service) DeleteDefinition(ctx context.Context, id uuid.UUID) error {
	definition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if definition == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
	}
	return s.repo.Delete(ctx, id)
}

// GetDefinition loads one definition with ordered fields.
func (s *Service) GetDefinition(ctx context.Context, id uuid.UUID) (*models.ConfigurationDefinition, error) {
	definition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if definition == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
	}
	return definition, nil
}

// ListDefinitions returns all definitions, or only active ones when requested.
// Report assembly uses the active listing to filter rendered content.
func (s *Service) ListDefinitions(ctx context.Context, activeOnly bool) ([]models.ConfigurationDefinition, error) {
	return s.repo.List(ctx, activeOnly)
}

func validateFields(fields []FieldInput) error {
	seen := map[string]struct{}{}
	for _, field := range fields {
		if field.FieldKey == "" || field.Label == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "field key and label are required")
		}
		if _, ok := seen[field.FieldKey]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate field key").
				WithDetails(map[string]string{"field_key": field.FieldKey})
		}
		seen[field.FieldKey] = struct{}{}
	}
	return nil
}

func buildFields(definitionID uuid.UUID, inputs []FieldInput) []models.ConfigurationField {
	fields := make([]models.ConfigurationField, 0, len(inputs))
	for i, input := range inputs {
		field := models.ConfigurationField{
			FieldKey:   input.FieldKey,
			Label:      input.Label,
			OrderIndex: i,
		}
		if definitionID != uuid.Nil {
			field.DefinitionID = definitionID
		}
		fields = append(fields, field)
	}
	return fields
}
