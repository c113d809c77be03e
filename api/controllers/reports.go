package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/api/validators"
	reportsvc "github.com/merchantiq/pricewise-backend/internal/reports"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

type generateReportRequest struct {
	TemplateID     *string                `json:"template_id,omitempty" validate:"omitempty,uuid"`
	SimulatorID    *string                `json:"simulator_id,omitempty" validate:"omitempty,uuid"`
	ClientName     string                 `json:"client_name,omitempty" validate:"omitempty,max=160"`
	ProjectName    string                 `json:"project_name,omitempty" validate:"omitempty,max=160"`
	PreparedBy     *string                `json:"prepared_by,omitempty" validate:"omitempty,max=160"`
	Items          []scenarioItemRequest  `json:"items" validate:"required,min=1,dive"`
	GlobalDiscount *globalDiscountRequest `json:"global_discount,omitempty"`
}

type generateReportResponse struct {
	ReportID   *uuid.UUID `json:"report_id,omitempty"`
	ScenarioID uuid.UUID  `json:"scenario_id"`
	PreviewID  *uuid.UUID `json:"preview_id,omitempty"`
	PreviewURL string     `json:"preview_url,omitempty"`
	HTML       string     `json:"html"`
}

// ReportGenerate prices the selection and renders the proposal document.
func ReportGenerate(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body generateReportRequest
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

		var templateID *uuid.UUID
		if body.TemplateID != nil && strings.TrimSpace(*body.TemplateID) != "" {
			parsed, err := uuid.Parse(strings.TrimSpace(*body.TemplateID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid template id"))
				return
			}
			templateID = &parsed
		}

		result, err := svc.GenerateReport(r.Context(), reportsvc.GenerateReportInput{
			TemplateID:     templateID,
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

		resp := generateReportResponse{
			ScenarioID: result.Scenario.ID,
			HTML:       result.HTML,
		}
		if result.Report != nil {
			resp.ReportID = &result.Report.ID
		}
		if result.Preview != nil {
			resp.PreviewID = &result.Preview.ID
			resp.PreviewURL = "/api/v1/public/previews/" + result.Preview.ID.String()
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

func ReportList(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListReports(r.Context(), reportsvc.ListReportsParams{
			SimulatorID: simulatorID,
			CreatedBy:   createdBy,
			Cursor:      r.URL.Query().Get("cursor"),
			Limit:       limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"reports":     result.Reports,
			"next_cursor": result.NextCursor,
		})
	}
}

func ReportDetail(svc *reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "reportId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.GetReport(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
