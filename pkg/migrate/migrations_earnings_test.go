package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devrecs/devrecs-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestEarningsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_earnings.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no earnings migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE earnings",
		"earnings_date date NOT NULL",
		"CREATE UNIQUE INDEX idx_earnings_user_post_date ON earnings (user_id, post_id, earnings_date)",
		"numeric(12,4)",
		"DROP TABLE earnings",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPostsMigrationCarriesAttributionColumns(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_posts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no posts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"click_count bigint NOT NULL DEFAULT 0",
		"total_earnings numeric(12,4) NOT NULL DEFAULT 0",
		"last_earnings_date date",
		"idx_posts_eligibility",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
