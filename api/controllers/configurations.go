package controllers

import (
	"net/http"
	"strings"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	configsvc "github.com/merchantiq/pricewise-backend/internal/configfields"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

type configFieldRequest struct {
	FieldKey string `json:"field_key" validate:"required,min=1,max=64"`
	Label    string `json:"label" validate:"required,min=1,max=160"`
}

type createDefinitionRequest struct {
	Name     string               `json:"name" validate:"required,min=1,max=160"`
	IsActive *bool                `json:"is_active,omitempty"`
	Fields   []configFieldRequest `json:"fields" validate:"required,min=1,dive"`
}

type updateDefinitionRequest struct {
	Name     *string               `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	IsActive *bool                 `json:"is_active,omitempty"`
	Fields   *[]configFieldRequest `json:"fields,omitempty" validate:"omitempty,min=1,dive"`
}

func toFieldInputs(fields []configFieldRequest) []configsvc.FieldInput {
	inputs := make([]configsvc.FieldInput, 0, len(fields))
	for _, field := range fields {
		inputs = append(inputs, configsvc.FieldInput{
			FieldKey: strings.TrimSpace(field.FieldKey),
			Label:    strings.TrimSpace(field.Label),
		})
	}
	return inputs
}

func DefinitionList(svc *configsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		definitions, err := svc.ListDefinitions(r.Context(), activeOnly != nil && *activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, definitions)
	}
}

func DefinitionDetail(svc *configsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "definitionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		definition, err := svc.GetDefinition(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, definition)
	}
}

func DefinitionCreate(svc *configsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createDefinitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if body.IsActive != nil {
			isActive = *body.IsActive
		}

		definition, err := svc.CreateDefinition(r.Context(), configsvc.CreateDefinitionInput{
			Name:     strings.TrimSpace(body.Name),
			IsActive: isActive,
			Fields:   toFieldInputs(body.Fields),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, definition)
	}
}

func DefinitionUpdate(svc *configsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "definitionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDefinitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := configsvc.UpdateDefinitionInput{IsActive: body.IsActive}
		if body.Name != nil {
			trimmed := strings.TrimSpace(*body.Name)
			input.Name = &trimmed
		}
		if body.Fields != nil {
			fields := toFieldInputs(*body.Fields)
			input.Fields = &fields
		}

		definition, err := svc.UpdateDefinition(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, definition)
	}
}

func DefinitionDelete(svc *configsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "definitionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteDefinition(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
