package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/merchantiq/pricewise-backend/pkg/migrate"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestScenariosMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_scenarios.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no scenarios migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE scenarios",
		"CREATE TABLE scenario_items",
		"REFERENCES scenarios (id) ON DELETE CASCADE",
		"ON DELETE SET NULL",
		"DROP TABLE scenario_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationHasUniqueEventAggregateIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_outbox.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "ux_outbox_events_event_aggregate") {
		t.Error("missing unique event/aggregate index")
	}
}
