package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

type categoryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo       Repository
	Categories categoryReader
}

// Service manages priceable catalog entries and the tag projection.
type Service struct {
	repo       Repository
	categories categoryReader
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Categories == nil {
		return nil, errors.New("category reader is required")
	}
	return &Service{repo: params.Repo, categories: params.Categories}, nil
}

// CreateServiceInput holds the validated payload to create a catalog service.
type CreateServiceInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description *string
	Unit        string
	PricingType enums.PricingType
	UnitPrice   decimal.Decimal
	PriceTiers  types.PriceTiers
	Tags        []string
	IsActive    bool
}

// UpdateServiceInput holds optional mutation values for a catalog service.
type UpdateServiceInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Unit        *string
	PricingType *enums.PricingType
	UnitPrice   *decimal.Decimal
	PriceTiers  *types.PriceTiers
	Tags        *[]string
	IsActive    *bool
}

// ListServicesParams captures list/filter/pagination inputs.
type ListServicesParams struct {
	CategoryID *uuid.UUID
	IsActive   *bool
	Tag        *string
	Cursor     string
	Limit      int
}

// ServiceListResult is a single page of catalog services.
type ServiceListResult struct {
	Items      []models.ServiceItem
	NextCursor string
}

// TagSummary is a projection over the service list: tags are never stored on
// their own, only derived from the services that carry them.
type TagSummary struct {
	Name         string   `json:"name"`
	UsageCount   int      `json:"usage_count"`
	ServiceNames []string `json:"service_names"`
}

// CreateService validates and inserts a catalog entry.
func (s *Service) CreateService(ctx context.Context, input CreateServiceInput) (*models.ServiceItem, error) {
	if err := s.ensureCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if err := validatePricing(input.PricingType, input.UnitPrice, input.PriceTiers); err != nil {
		return nil, err
	}

	item := &models.ServiceItem{
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		Unit:        input.Unit,
		PricingType: input.PricingType,
		UnitPrice:   input.UnitPrice,
		PriceTiers:  input.PriceTiers.Sorted(),
		Tags:        normalizeTags(input.Tags),
		IsActive:    input.IsActive,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}
	return item, nil
}

// UpdateService applies the provided fields to an existing catalog entry.
func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*models.ServiceItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading service: %w", err)
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}

	if input.CategoryID != nil {
		if err := s.ensureCategoryExists(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *input.CategoryID
		item.Category = nil
	}
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.PricingType != nil {
		item.PricingType = *input.PricingType
	}
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	if input.PriceTiers != nil {
		item.PriceTiers = input.PriceTiers.Sorted()
	}
	if input.Tags != nil {
		item.Tags = normalizeTags(*input.Tags)
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	if err := validatePricing(item.PricingType, item.UnitPrice, item.PriceTiers); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("updating service: %w", err)
	}
	return item, nil
}

// DeleteService removes a catalog entry. Scenario lines keep their snapshot of
// the service, so deletion never rewrites history.
func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading service: %w", err)
	}
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return s.repo.Delete(ctx, id)
}

// GetService loads a single catalog entry with its category.
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*models.ServiceItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading service: %w", err)
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return item, nil
}

// ListServices returns a page of catalog entries plus an opaque next cursor.
func (s *Service) ListServices(ctx context.Context, params ListServicesParams) (*ServiceListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	items, next, err := s.repo.List(ctx, ListServicesQuery{
		CategoryID: params.CategoryID,
		IsActive:   params.IsActive,
		Tag:        params.Tag,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}

	result := &ServiceListResult{Items: items}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// ListTags recomputes the tag projection from the active service list.
func (s *Service) ListTags(ctx context.Context) ([]TagSummary, error) {
	items, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return ProjectTags(items), nil
}

// ProjectTags derives tag usage from a service list. Output is sorted by name
// for stable responses.
func ProjectTags(items []models.ServiceItem) []TagSummary {
	byName := map[string]*TagSummary{}
	for _, item := range items {
		for _, tag := range item.Tags {
			summary, ok := byName[tag]
			if !ok {
				summary = &TagSummary{Name: tag}
				byName[tag] = summary
			}
			summary.UsageCount++
			summary.ServiceNames = append(summary.ServiceNames, item.Name)
		}
	}

	summaries := make([]TagSummary, 0, len(byName))
	for _, summary := range byName {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

func (s *Service) ensureCategoryExists(ctx context.Context, id uuid.UUID) error {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading category: %w", err)
	}
	if category == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist").
			WithDetails(map[string]string{"category_id": id.String()})
	}
	return nil
}

func validatePricing(pricingType enums.PricingType, unitPrice decimal.Decimal, tiers types.PriceTiers) error {
	if unitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	if pricingType == enums.PricingTypeTiered && len(tiers) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tiered pricing requires at least one tier")
	}
	for _, tier := range tiers {
		if tier.Threshold < 0 || tier.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price tiers must not be negative")
		}
	}
	return nil
}

func normalizeTags(tags []string) pq.StringArray {
	seen := map[string]struct{}{}
	normalized := pq.StringArray{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}
