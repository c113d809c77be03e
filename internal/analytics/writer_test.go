package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/merchantiq/pricewise-backend/pkg/logger"
)

type stubInserter struct {
	rows []any
	err  error
}

func (s *stubInserter) InsertRows(ctx context.Context, table string, rows []any) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *stubInserter) EventsTable() string { return "simulator_events" }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestScenarioCreatedWritesRow(t *testing.T) {
	sink := &stubInserter{}
	w := &Writer{bq: sink, logg: testLogger()}

	simulatorID := uuid.New()
	w.ScenarioCreated(context.Background(), ScenarioCreatedRecord{
		ScenarioID:  uuid.New(),
		SimulatorID: &simulatorID,
		Source:      "simulator",
		ClientName:  "Acme",
		ProjectName: "Rollout",
		ItemCount:   3,
		TotalCost:   "1200.00",
	})

	if len(sink.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sink.rows))
	}
	row := sink.rows[0].(SimulatorEventRow)
	if row.EventType != "scenario.created" || row.SimulatorID != simulatorID.String() {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	w := &Writer{bq: &stubInserter{err: errors.New("stream closed")}, logg: testLogger()}

	// Must not panic or surface the error.
	w.ReportGenerated(context.Background(), ReportGeneratedRecord{
		ReportID:    uuid.New(),
		SimulatorID: uuid.New(),
	})
}

func TestNilClientDisablesWriter(t *testing.T) {
	w := NewWriter(nil, testLogger())
	w.ScenarioCreated(context.Background(), ScenarioCreatedRecord{ScenarioID: uuid.New()})
}
