package postgres

import (
	"strings"
	"testing"
)

func TestSchemaStatements(t *testing.T) {
	tables := []string{"patients", "medications", "facilities", "prescriptions", "dosage_schedules"}
	for _, table := range tables {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("schema is missing table %s", table)
		}
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasPrefix(stmt, "CREATE ") || !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Fatalf("statement is not idempotent: %q", stmt)
		}
	}
}
