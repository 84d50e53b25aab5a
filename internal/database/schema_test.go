package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	path := filepath.Join(migrationsDir, "00001_create_products_table.sql")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Migration file %s does not exist", path)
	}
}

func TestMigrationFilesAreEmbedded(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("No migrations embedded")
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00001_create_products_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"name TEXT NOT NULL",
		"price DOUBLE PRECISION NOT NULL",
		"created_at TIMESTAMPTZ",
		"updated_at TIMESTAMPTZ",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required column definition: %s", column)
		}
	}

	if !strings.Contains(contentStr, "CHECK (price >= 0)") {
		t.Error("Products table missing non-negative price constraint")
	}
	if strings.Contains(contentStr, "UNIQUE") {
		t.Error("Product names must not be unique")
	}
	if !strings.Contains(contentStr, "DROP TABLE IF EXISTS products") {
		t.Error("Products migration does not drop the table in its down section")
	}
}
