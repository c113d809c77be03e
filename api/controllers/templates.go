package controllers

import (
	"net/http"
	"strings"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	reportsvc "github.com/merchantiq/pricewise-backend/internal/reports"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

type templateSectionRequest struct {
	SectionType string  `json:"section_type" validate:"required,oneof=text html"`
	Title       string  `json:"title" validate:"required,min=1,max=160"`
	BodyHTML    *string `json:"body_html,omitempty"`
	BodyText    *string `json:"body_text,omitempty"`
}

type createTemplateRequest struct {
	Name     string                   `json:"name" validate:"required,min=1,max=160"`
	Sections []templateSectionRequest `json:"sections" validate:"dive"`
}

type updateTemplateRequest struct {
	Name     *string                   `json:"name,omitempty" validate:"omitempty,min=1,max=160"`
	Sections *[]templateSectionRequest `json:"sections,omitempty" validate:"omitempty,dive"`
}

func toSectionInputs(sections []templateSectionRequest) []reportsvc.SectionInput {
	inputs := make([]reportsvc.SectionInput, 0, len(sections))
	for _, section := range sections {
		inputs = append(inputs, reportsvc.SectionInput{
			SectionType: enums.SectionType(section.SectionType),
			Title:       strings.TrimSpace(section.Title),
			BodyHTML:    section.BodyHTML,
			BodyText:    section.BodyText,
		})
	}
	return inputs
}

func TemplateList(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := svc.ListTemplates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, templates)
	}
}

func TemplateDetail(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		template, err := svc.GetTemplate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, template)
	}
}

func TemplateCreate(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTemplateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		template, err := svc.CreateTemplate(r.Context(), reportsvc.CreateTemplateInput{
			Name:      strings.TrimSpace(body.Name),
			Sections:  toSectionInputs(body.Sections),
			CreatedBy: &userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, template)
	}
}

func TemplateUpdate(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTemplateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reportsvc.UpdateTemplateInput{}
		if body.Name != nil {
			trimmed := strings.TrimSpace(*body.Name)
			input.Name = &trimmed
		}
		if body.Sections != nil {
			sections := toSectionInputs(*body.Sections)
			input.Sections = &sections
		}

		template, err := svc.UpdateTemplate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, template)
	}
}

func TemplateDelete(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTemplate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
