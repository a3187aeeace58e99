package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T, name string) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), name)
	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	// Skip if not in integration test mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t, "test_integration.db")

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"vocabulary", "word_performance", "preferences", "game_sessions", "session_submissions", "challenges"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t, "test_transactions.db")

	ctx := context.Background()

	// Test successful transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	// Insert test data
	_, err = tx.ExecContext(ctx, "INSERT INTO vocabulary (id, user_id, language_code, word, translation) VALUES (?, ?, ?, ?, ?)",
		"w-1", "student-1", "es", "perro", "dog")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	// Commit
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	// Verify data was inserted
	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocabulary WHERE word = ?", "perro").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 vocabulary item, got %d", count)
	}

	// Test rollback
	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}

	_, err = tx2.ExecContext(ctx, "INSERT INTO vocabulary (id, user_id, language_code, word, translation) VALUES (?, ?, ?, ?, ?)",
		"w-2", "student-1", "es", "gato", "cat")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}

	// Rollback
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	// Verify data was not inserted
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocabulary WHERE word = ?", "gato").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 vocabulary items after rollback, got %d", count)
	}
}

// TestPreferenceUpsert verifies the dialect upsert replaces rather than duplicates
func TestPreferenceUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t, "test_upsert.db")

	upsert := db.Dialect.UpsertPreference()
	if _, err := db.Exec(upsert, "student-1", "always"); err != nil {
		t.Fatalf("Failed first upsert: %v", err)
	}
	if _, err := db.Exec(upsert, "student-1", "never"); err != nil {
		t.Fatalf("Failed second upsert: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM preferences WHERE user_id = ?", "student-1").Scan(&count); err != nil {
		t.Fatalf("Failed to count preferences: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 preference row, got %d", count)
	}

	var pref string
	if err := db.QueryRow("SELECT save_preference FROM preferences WHERE user_id = ?", "student-1").Scan(&pref); err != nil {
		t.Fatalf("Failed to read preference: %v", err)
	}
	if pref != "never" {
		t.Errorf("Expected preference 'never', got '%s'", pref)
	}
}

// TestExecReturningID verifies auto-increment IDs come back from inserts
func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t, "test_returning.db")

	id, err := db.ExecReturningID(
		"INSERT INTO game_sessions (session_uuid, user_id, language_code, game_mode, correct_count, incorrect_count, total_time_seconds, answers, submitted_by) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		"b3f1c6be-0000-4000-8000-000000000001", "student-1", "es", "quick_fire", 8, 2, 60, "[]", "tutor-1")
	if err != nil {
		t.Fatalf("Failed to insert game session: %v", err)
	}
	if id <= 0 {
		t.Errorf("Expected positive row ID, got %d", id)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t, "test_concurrent.db")

	ctx := context.Background()

	// Create test data
	_, err := db.ExecContext(ctx, "INSERT INTO vocabulary (id, user_id, language_code, word, translation) VALUES (?, ?, ?, ?, ?)",
		"w-c", "student-1", "es", "palabra", "word")
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	// Run concurrent reads
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var word string
			err := db.QueryRowContext(ctx, "SELECT word FROM vocabulary WHERE id = ?", "w-c").Scan(&word)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if word != "palabra" {
				t.Errorf("Expected word 'palabra', got '%s'", word)
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}
}
