package database

import "testing"

func TestMigrations_Embedded(t *testing.T) {
	versions, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	if len(versions) == 0 || versions[0] != "001_kv_entries.sql" {
		t.Errorf("Expected 001_kv_entries.sql first, got %v", versions)
	}
	if len(versions) < 2 || versions[1] != "002_kv_entries_rev.sql" {
		t.Errorf("Expected revision column migration second, got %v", versions)
	}
}
