package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/bigquery"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

// SimulatorEventRow is the flattened analytics record written per scenario or
// report event.
type SimulatorEventRow struct {
	EventType       string    `bigquery:"event_type"`
	OccurredAt      time.Time `bigquery:"occurred_at"`
	AggregateID     string    `bigquery:"aggregate_id"`
	SimulatorID     string    `bigquery:"simulator_id"`
	Source          string    `bigquery:"source"`
	ClientName      string    `bigquery:"client_name"`
	ProjectName     string    `bigquery:"project_name"`
	ItemCount       int       `bigquery:"item_count"`
	TotalCost       string    `bigquery:"total_cost"`
	TemplateName    string    `bigquery:"template_name"`
	PlatformVersion string    `bigquery:"platform_version"`
}

type rowInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
	EventsTable() string
}

// Writer streams simulator events to BigQuery. Every write is best-effort:
// failures are logged and swallowed so analytics can never fail the caller.
type Writer struct {
	bq   rowInserter
	logg *logger.Logger
}

// NewWriter builds an analytics writer. A nil BigQuery client disables it.
func NewWriter(bq *bigquery.Client, logg *logger.Logger) *Writer {
	if bq == nil {
		return &Writer{logg: logg}
	}
	return &Writer{bq: bq, logg: logg}
}

// ScenarioCreatedRecord captures the analytics fields of a new scenario.
type ScenarioCreatedRecord struct {
	ScenarioID  uuid.UUID
	SimulatorID *uuid.UUID
	Source      string
	ClientName  string
	ProjectName string
	ItemCount   int
	TotalCost   string
}

// ReportGeneratedRecord captures the analytics fields of a generated report.
type ReportGeneratedRecord struct {
	ReportID        uuid.UUID
	SimulatorID     uuid.UUID
	ClientName      string
	ProjectName     string
	TemplateName    string
	PlatformVersion string
}

// ScenarioCreated writes a scenario.created analytics row.
func (w *Writer) ScenarioCreated(ctx context.Context, record ScenarioCreatedRecord) {
	row := SimulatorEventRow{
		EventType:   "scenario.created",
		OccurredAt:  time.Now().UTC(),
		AggregateID: record.ScenarioID.String(),
		Source:      record.Source,
		ClientName:  record.ClientName,
		ProjectName: record.ProjectName,
		ItemCount:   record.ItemCount,
		TotalCost:   record.TotalCost,
	}
	if record.SimulatorID != nil {
		row.SimulatorID = record.SimulatorID.String()
	}
	w.insert(ctx, row)
}

// ReportGenerated writes a report.generated analytics row.
func (w *Writer) ReportGenerated(ctx context.Context, record ReportGeneratedRecord) {
	w.insert(ctx, SimulatorEventRow{
		EventType:       "report.generated",
		OccurredAt:      time.Now().UTC(),
		AggregateID:     record.ReportID.String(),
		SimulatorID:     record.SimulatorID.String(),
		ClientName:      record.ClientName,
		ProjectName:     record.ProjectName,
		TemplateName:    record.TemplateName,
		PlatformVersion: record.PlatformVersion,
	})
}

func (w *Writer) insert(ctx context.Context, row SimulatorEventRow) {
	if w == nil || w.bq == nil {
		return
	}
	if err := w.bq.InsertRows(ctx, w.bq.EventsTable(), []any{row}); err != nil && w.logg != nil {
		ctx = w.logg.WithFields(ctx, map[string]any{
			"event_type":   row.EventType,
			"aggregate_id": row.AggregateID,
			"error":        err.Error(),
		})
		w.logg.Warn(ctx, "analytics write failed")
	}
}
