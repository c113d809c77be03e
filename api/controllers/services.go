package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	catalogsvc "github.com/merchantiq/pricewise-backend/internal/catalog"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

type priceTierRequest struct {
	Threshold int             `json:"threshold" validate:"min=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createServiceRequest struct {
	CategoryID  string             `json:"category_id" validate:"required,uuid"`
	Name        string             `json:"name" validate:"required,min=1,max=160"`
	Description *string            `json:"description,omitempty"`
	Unit        string             `json:"unit" validate:"required,min=1,max=40"`
	PricingType string             `json:"pricing_type" validate:"required,oneof=fixed tiered"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	PriceTiers  []priceTierRequest `json:"price_tiers,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

type updateServiceRequest struct {
	CategoryID  *string             `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	Description *string             `json:"description,omitempty"`
	Unit        *string             `json:"unit,omitempty" validate:"omitempty,min=1,max=40"`
	PricingType *string             `json:"pricing_type,omitempty" validate:"omitempty,oneof=fixed tiered"`
	UnitPrice   *decimal.Decimal    `json:"unit_price,omitempty"`
	PriceTiers  *[]priceTierRequest `json:"price_tiers,omitempty"`
	Tags        *[]string           `json:"tags,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
}

func toPriceTiers(tiers []priceTierRequest) types.PriceTiers {
	result := make(types.PriceTiers, 0, len(tiers))
	for _, tier := range tiers {
		result = append(result, types.PriceTier{
			Threshold: tier.Threshold,
			UnitPrice: tier.UnitPrice,
		})
	}
	return result
}

func ServiceList(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		isActive, err := validators.ParseQueryBool(r, "is_active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalogsvc.ListServicesParams{
			CategoryID: categoryID,
			IsActive:   isActive,
			Cursor:     r.URL.Query().Get("cursor"),
			Limit:      limit,
		}
		if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
			params.Tag = &tag
		}

		result, err := svc.ListServices(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"services":    result.Items,
			"next_cursor": result.NextCursor,
		})
	}
}

func ServiceDetail(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetService(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ServiceCreate(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createServiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := uuid.Parse(body.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}

		isActive := true
		if body.IsActive != nil {
			isActive = *body.IsActive
		}

		item, err := svc.CreateService(r.Context(), catalogsvc.CreateServiceInput{
			CategoryID:  categoryID,
			Name:        strings.TrimSpace(body.Name),
			Description: body.Description,
			Unit:        strings.TrimSpace(body.Unit),
			PricingType: enums.PricingType(body.PricingType),
			UnitPrice:   body.UnitPrice,
			PriceTiers:  toPriceTiers(body.PriceTiers),
			Tags:        body.Tags,
			IsActive:    isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ServiceUpdate(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateServiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.UpdateServiceInput{
			Description: body.Description,
			UnitPrice:   body.UnitPrice,
			Tags:        body.Tags,
			IsActive:    body.IsActive,
		}
		if body.CategoryID != nil {
			categoryID, err := uuid.Parse(*body.CategoryID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}
		if body.Name != nil {
			trimmed := strings.TrimSpace(*body.Name)
			input.Name = &trimmed
		}
		if body.Unit != nil {
			trimmed := strings.TrimSpace(*body.Unit)
			input.Unit = &trimmed
		}
		if body.PricingType != nil {
			pricingType := enums.PricingType(*body.PricingType)
			input.PricingType = &pricingType
		}
		if body.PriceTiers != nil {
			tiers := toPriceTiers(*body.PriceTiers)
			input.PriceTiers = &tiers
		}

		item, err := svc.UpdateService(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ServiceDelete(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "serviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteService(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func TagList(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := svc.ListTags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}
