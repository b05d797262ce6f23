// Package testutil provides database fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/database"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema applied.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes writers
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	db := database.Wrap(conn, config.DatabaseTypeSQLite)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// SetupTestDBClient returns a DB client backed by SetupTestDB.
func SetupTestDBClient(t *testing.T) provider.DBClientInterface {
	t.Helper()
	db := SetupTestDB(t)
	return provider.NewDBClient(db.DB, db.Type)
}
