package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/api/middleware"
	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	"github.com/merchantiq/pricewise-backend/internal/pricing"
	scenariosvc "github.com/merchantiq/pricewise-backend/internal/scenarios"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

type scenarioItemRequest struct {
	ServiceID           string          `json:"service_id" validate:"required,uuid"`
	Quantity            int             `json:"quantity" validate:"required,min=0"`
	Discount            decimal.Decimal `json:"discount"`
	DiscountType        string          `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountApplication string          `json:"discount_application,omitempty" validate:"omitempty,oneof=unit total"`
	IsFree              bool            `json:"is_free,omitempty"`
}

type globalDiscountRequest struct {
	Value       decimal.Decimal `json:"value"`
	Type        string          `json:"type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	Application string          `json:"application,omitempty" validate:"omitempty,oneof=none both monthly onetime"`
}

type createScenarioRequest struct {
	SimulatorID    *string                `json:"simulator_id,omitempty" validate:"omitempty,uuid"`
	ClientName     string                 `json:"client_name,omitempty" validate:"omitempty,max=160"`
	ProjectName    string                 `json:"project_name,omitempty" validate:"omitempty,max=160"`
	PreparedBy     *string                `json:"prepared_by,omitempty" validate:"omitempty,max=160"`
	Items          []scenarioItemRequest  `json:"items" validate:"required,min=1,dive"`
	GlobalDiscount *globalDiscountRequest `json:"global_discount,omitempty"`
}

type guestScenarioRequest struct {
	SimulatorID    *string                `json:"simulator_id,omitempty" validate:"omitempty,uuid"`
	ClientName     string                 `json:"client_name,omitempty" validate:"omitempty,max=160"`
	ProjectName    string                 `json:"project_name,omitempty" validate:"omitempty,max=160"`
	ContactEmail   string                 `json:"contact_email" validate:"required,email"`
	Items          []scenarioItemRequest  `json:"items" validate:"required,min=1,dive"`
	GlobalDiscount *globalDiscountRequest `json:"global_discount,omitempty"`
}

type quoteRequest struct {
	Items          []scenarioItemRequest  `json:"items" validate:"required,min=1,dive"`
	GlobalDiscount *globalDiscountRequest `json:"global_discount,omitempty"`
}

func toItemInputs(items []scenarioItemRequest) ([]scenariosvc.ItemInput, error) {
	inputs := make([]scenariosvc.ItemInput, 0, len(items))
	for _, item := range items {
		serviceID, err := uuid.Parse(item.ServiceID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service id")
		}
		inputs = append(inputs, scenariosvc.ItemInput{
			ServiceID:           serviceID,
			Quantity:            item.Quantity,
			Discount:            item.Discount,
			DiscountType:        enums.DiscountType(item.DiscountType),
			DiscountApplication: enums.DiscountApplication(item.DiscountApplication),
			IsFree:              item.IsFree,
		})
	}
	return inputs, nil
}

func toGlobalDiscount(body *globalDiscountRequest) types.GlobalDiscount {
	if body == nil {
		return types.GlobalDiscount{}
	}
	return types.GlobalDiscount{
		Value:       body.Value,
		Type:        enums.DiscountType(body.Type),
		Application: enums.GlobalDiscountApplication(body.Application),
	}
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid simulator id")
	}
	return &id, nil
}

// actorFromContext resolves the authenticated actor seeded by the auth
// middleware.
func actorFromContext(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, middleware.RoleFromContext(r.Context()), nil
}

// ScenarioQuote prices a selection without persisting anything. This backs
// the live simulator totals panel.
func ScenarioQuote(svc *scenariosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := toItemInputs(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selected, err := svc.ResolveSelection(r.Context(), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary := pricing.Compute(selected, toGlobalDiscount(body.GlobalDiscount))
		responses.WriteSuccess(w, summary)
	}
}

func ScenarioCreate(svc *scenariosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createScenarioRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := toItemInputs(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		simulatorID, err := parseOptionalUUID(body.SimulatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateScenario(r.Context(), scenariosvc.CreateScenarioInput{
			Source:         enums.ScenarioSourceSimulator,
			SimulatorID:    simulatorID,
			ClientName:     strings.TrimSpace(body.ClientName),
			ProjectName:    strings.TrimSpace(body.ProjectName),
			PreparedBy:     body.PreparedBy,
			Items:          items,
			GlobalDiscount: toGlobalDiscount(body.GlobalDiscount),
			CreatedBy:      &userID,
			ActorRole:      role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"scenario": result.Scenario,
			"summary":  result.Summary,
		})
	}
}

// GuestScenarioCreate records a prospect-submitted scenario. A contact email
// is mandatory so sales can follow up.
func GuestScenarioCreate(svc *scenariosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body guestScenarioRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := toItemInputs(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		simulatorID, err := parseOptionalUUID(body.SimulatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contactEmail := strings.ToLower(strings.TrimSpace(body.ContactEmail))
		result, err := svc.CreateScenario(r.Context(), scenariosvc.CreateScenarioInput{
			Source:         enums.ScenarioSourceGuest,
			SimulatorID:    simulatorID,
			ClientName:     strings.TrimSpace(body.ClientName),
			ProjectName:    strings.TrimSpace(body.ProjectName),
			ContactEmail:   &contactEmail,
			Items:          items,
			GlobalDiscount: toGlobalDiscount(body.GlobalDiscount),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"scenario": result.Scenario,
			"summary":  result.Summary,
		})
	}
}

func ScenarioList(svc *scenariosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		simulatorID, err := validators.ParseQueryUUID(r, "simulator_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		createdBy, err := validators.ParseQueryUUID(r, "created_by")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := scenariosvc.ListScenariosParams{
			SimulatorID: simulatorID,
			CreatedBy:   createdBy,
			Cursor:      r.URL.Query().Get("cursor"),
			Limit:       limit,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("source")); raw != "" {
			source := enums.ScenarioSource(raw)
			if !source.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid scenario source"))
				return
			}
			params.Source = &source
		}

		result, err := svc.ListScenarios(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"scenarios":   result.Scenarios,
			"next_cursor": result.NextCursor,
		})
	}
}

func ScenarioDetail(svc *scenariosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "scenarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scenario, err := svc.GetScenario(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, scenario)
	}
}

// ScenarioDuplicate copies a stored scenario from its snapshot, so copies
// keep pricing even after the catalog changes.
func ScenarioDuplicate(svc *scenariosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "scenarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DuplicateScenario(r.Context(), id, &userID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"scenario": result.Scenario,
			"summary":  result.Summary,
		})
	}
}
