package scenarios

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantiq/pricewise-backend/internal/analytics"
	"github.com/merchantiq/pricewise-backend/internal/pricing"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/metrics"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/outbox/payloads"
	"github.com/merchantiq/pricewise-backend/pkg/pagination"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

type catalogReader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the scenario service.
type ServiceParams struct {
	Repo      Repository
	Catalog   catalogReader
	DB        *db.Client
	Outbox    outboxEmitter
	Analytics *analytics.Writer
	Metrics   *metrics.SimulatorMetrics
}

// Service creates and reads pricing scenario snapshots. Totals are always
// recomputed server-side; client-provided numbers are never trusted.
type Service struct {
	repo      Repository
	catalog   catalogReader
	db        *db.Client
	outbox    outboxEmitter
	analytics *analytics.Writer
	metrics   *metrics.SimulatorMetrics
}

// NewService builds a scenario service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog reader is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	return &Service{
		repo:      params.Repo,
		catalog:   params.Catalog,
		db:        params.DB,
		outbox:    params.Outbox,
		analytics: params.Analytics,
		metrics:   params.Metrics,
	}, nil
}

// ItemInput selects one catalog service with session-level knobs. Pricing data
// is snapshotted from the catalog, never from the client.
type ItemInput struct {
	ServiceID           uuid.UUID
	Quantity            int
	Discount            decimal.Decimal
	DiscountType        enums.DiscountType
	DiscountApplication enums.DiscountApplication
	IsFree              bool
}

// CreateScenarioInput holds the validated payload to snapshot a scenario.
type CreateScenarioInput struct {
	Source         enums.ScenarioSource
	SimulatorID    *uuid.UUID
	ClientName     string
	ProjectName    string
	PreparedBy     *string
	ContactEmail   *string
	Items          []ItemInput
	GlobalDiscount types.GlobalDiscount
	CreatedBy      *uuid.UUID
	ActorRole      string
}

// ScenarioResult pairs the persisted snapshot with its computed summary.
type ScenarioResult struct {
	Scenario *models.Scenario
	Summary  pricing.Summary
}

// ListScenariosParams captures list/filter/pagination inputs.
type ListScenariosParams struct {
	Source      *enums.ScenarioSource
	SimulatorID *uuid.UUID
	CreatedBy   *uuid.UUID
	Cursor      string
	Limit       int
}

// ScenarioListResult is a single page of scenarios.
type ScenarioListResult struct {
	Scenarios  []models.Scenario
	NextCursor string
}

// ResolveSelection loads the referenced catalog entries and builds the pricing
// input lines in the order requested.
func (s *Service) ResolveSelection(ctx context.Context, items []ItemInput) ([]pricing.SelectedItem, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
		}
		if item.Discount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
		}
		ids = append(ids, item.ServiceID)
	}

	services, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading services: %w", err)
	}
	byID := make(map[uuid.UUID]models.ServiceItem, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	selected := make([]pricing.SelectedItem, 0, len(items))
	for _, item := range items {
		svc, ok := byID[item.ServiceID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service does not exist").
				WithDetails(map[string]string{"service_id": item.ServiceID.String()})
		}

		line := pricing.SelectedItem{
			ServiceID:           &svc.ID,
			Name:                svc.Name,
			Unit:                svc.Unit,
			PricingType:         svc.PricingType,
			Tiers:               svc.PriceTiers,
			Quantity:            item.Quantity,
			UnitPrice:           svc.UnitPrice,
			Discount:            item.Discount,
			DiscountType:        item.DiscountType,
			DiscountApplication: item.DiscountApplication,
			IsFree:              item.IsFree,
		}
		if svc.Description != nil {
			line.Description = *svc.Description
		}
		if svc.Category != nil {
			line.CategorySlug = svc.Category.Slug
		}
		selected = append(selected, line)
	}
	return selected, nil
}

// CreateScenario computes totals for the selection and persists the snapshot
// together with its scenario.created outbox event.
func (s *Service) CreateScenario(ctx context.Context, input CreateScenarioInput) (*ScenarioResult, error) {
	if input.Source == enums.ScenarioSourceGuest && (input.ContactEmail == nil || *input.ContactEmail == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest submissions require a contact email")
	}

	selected, err := s.ResolveSelection(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	summary := pricing.Compute(selected, input.GlobalDiscount)
	return s.persist(ctx, input, selected, summary)
}

// DuplicateScenario copies an existing snapshot into a fresh scenario. Lines
// come from the stored snapshot, so the copy survives later catalog edits;
// totals are recomputed from the snapshot data.
func (s *Service) DuplicateScenario(ctx context.Context, id uuid.UUID, createdBy *uuid.UUID, actorRole string) (*ScenarioResult, error) {
	original, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	if original == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "scenario not found")
	}

	selected := make([]pricing.SelectedItem, 0, len(original.Items))
	for _, item := range original.Items {
		line := pricing.SelectedItem{
			ServiceID:           item.ServiceID,
			Name:                item.ServiceName,
			CategorySlug:        item.CategorySlug,
			Unit:                item.Unit,
			PricingType:         item.PricingType,
			Tiers:               item.PriceTiers,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			Discount:            item.Discount,
			DiscountType:        item.DiscountType,
			DiscountApplication: item.DiscountApplication,
			IsFree:              item.IsFree,
		}
		if item.Description != nil {
			line.Description = *item.Description
		}
		selected = append(selected, line)
	}

	input := CreateScenarioInput{
		Source:         original.Source,
		SimulatorID:    original.SimulatorID,
		ClientName:     original.ClientName,
		ProjectName:    original.ProjectName,
		PreparedBy:     original.PreparedBy,
		ContactEmail:   original.ContactEmail,
		GlobalDiscount: original.GlobalDiscount.GlobalDiscount,
		CreatedBy:      createdBy,
		ActorRole:      actorRole,
	}
	summary := pricing.Compute(selected, input.GlobalDiscount)
	return s.persist(ctx, input, selected, summary)
}

// GetScenario loads one snapshot with its ordered lines.
func (s *Service) GetScenario(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	scenario, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	if scenario == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "scenario not found")
	}
	return scenario, nil
}

// ListScenarios returns a page of snapshots plus an opaque next cursor.
func (s *Service) ListScenarios(ctx context.Context, params ListScenariosParams) (*ScenarioListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	scenarios, next, err := s.repo.List(ctx, ListScenariosQuery{
		Source:      params.Source,
		SimulatorID: params.SimulatorID,
		CreatedBy:   params.CreatedBy,
		Limit:       params.Limit,
		Cursor:      cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}

	result := &ScenarioListResult{Scenarios: scenarios}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *Service) persist(ctx context.Context, input CreateScenarioInput, selected []pricing.SelectedItem, summary pricing.Summary) (*ScenarioResult, error) {
	source := input.Source
	if source == "" {
		source = enums.ScenarioSourceSimulator
	}

	scenario := &models.Scenario{
		Source:           source,
		SimulatorID:      input.SimulatorID,
		ClientName:       input.ClientName,
		ProjectName:      input.ProjectName,
		PreparedBy:       input.PreparedBy,
		ContactEmail:     input.ContactEmail,
		GlobalDiscount:   types.GlobalDiscountColumn{GlobalDiscount: input.GlobalDiscount},
		OneTimeTotal:     summary.OneTimeFinal,
		MonthlyTotal:     summary.MonthlyFinal,
		YearlyTotal:      summary.YearlyTotal,
		TotalProjectCost: summary.TotalProject,
		Savings:          summary.Savings,
		SavingsRate:      summary.SavingsRate,
		CreatedBy:        input.CreatedBy,
	}
	for i, line := range summary.Lines {
		item := models.ScenarioItem{
			ServiceID:           line.Item.ServiceID,
			ServiceName:         line.Item.Name,
			CategorySlug:        line.Item.CategorySlug,
			Unit:                line.Item.Unit,
			PricingType:         line.Item.PricingType,
			PriceTiers:          line.Item.Tiers,
			Quantity:            line.Item.Quantity,
			UnitPrice:           line.Item.UnitPrice,
			Discount:            line.Item.Discount,
			DiscountType:        line.Item.DiscountType,
			DiscountApplication: line.Item.DiscountApplication,
			IsFree:              line.Item.IsFree,
			IsOneTime:           line.IsOneTime,
			LineTotal:           line.Total,
			OrderIndex:          i,
		}
		if line.Item.Description != "" {
			description := line.Item.Description
			item.Description = &description
		}
		scenario.Items = append(scenario.Items, item)
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, scenario); err != nil {
			return fmt.Errorf("creating scenario: %w", err)
		}

		var actor *outbox.ActorRef
		if input.CreatedBy != nil {
			actor = &outbox.ActorRef{UserID: *input.CreatedBy, Role: input.ActorRole}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventScenarioCreated,
			AggregateType: enums.OutboxAggregateScenario,
			AggregateID:   scenario.ID,
			Actor:         actor,
			Data: payloads.ScenarioCreatedEvent{
				ScenarioID:  scenario.ID,
				Source:      scenario.Source,
				ClientName:  scenario.ClientName,
				ProjectName: scenario.ProjectName,
				ItemCount:   len(scenario.Items),
				TotalCost:   summary.TotalProject.StringFixed(2),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncScenario(scenario.Source.String())
	if s.analytics != nil {
		s.analytics.ScenarioCreated(ctx, analytics.ScenarioCreatedRecord{
			ScenarioID:  scenario.ID,
			SimulatorID: scenario.SimulatorID,
			Source:      scenario.Source.String(),
			ClientName:  scenario.ClientName,
			ProjectName: scenario.ProjectName,
			ItemCount:   len(scenario.Items),
			TotalCost:   summary.TotalProject.StringFixed(2),
		})
	}

	return &ScenarioResult{Scenario: scenario, Summary: summary}, nil
}
