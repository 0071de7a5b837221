package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpenseMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_expenses.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no expense migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS expenses",
		"CREATE TABLE IF NOT EXISTS expense_shares",
		"FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE",
		"FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE",
		"CHECK (amount_minor > 0)",
		"CHECK (percentage_bps IS NULL OR (percentage_bps >= 0 AND percentage_bps <= 10000))",
		"UNIQUE (expense_id, member_id)",
		"DROP TABLE IF EXISTS expenses",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
