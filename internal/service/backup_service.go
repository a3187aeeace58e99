package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"vocabduet/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Vocabulary   []VocabularyBackup  `json:"vocabulary"`
	Performance  []PerformanceBackup `json:"performance"`
	Preferences  []PreferenceBackup  `json:"preferences"`
	Sessions     []SessionBackup     `json:"sessions"`
	Challenges   []ChallengeBackup   `json:"challenges"`
}

// VocabularyBackup represents a vocabulary record for backup
type VocabularyBackup struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	LanguageCode string    `json:"language_code"`
	Word         string    `json:"word"`
	Translation  string    `json:"translation"`
	WordType     string    `json:"word_type"`
	Context      string    `json:"context"`
	UnlockedAt   time.Time `json:"unlocked_at"`
}

// PerformanceBackup represents a word performance record for backup
type PerformanceBackup struct {
	WordID          string     `json:"word_id"`
	UserID          string     `json:"user_id"`
	LanguageCode    string     `json:"language_code"`
	TotalAttempts   int        `json:"total_attempts"`
	CorrectAttempts int        `json:"correct_attempts"`
	CorrectStreak   int        `json:"correct_streak"`
	LearnedAt       *time.Time `json:"learned_at"`
	LastPracticed   *time.Time `json:"last_practiced"`
}

// PreferenceBackup represents a save preference record for backup
type PreferenceBackup struct {
	UserID         string    `json:"user_id"`
	SavePreference string    `json:"save_preference"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionBackup represents a saved game session for backup
type SessionBackup struct {
	SessionUUID      string    `json:"session_uuid"`
	UserID           string    `json:"user_id"`
	LanguageCode     string    `json:"language_code"`
	GameMode         string    `json:"game_mode"`
	CorrectCount     int       `json:"correct_count"`
	IncorrectCount   int       `json:"incorrect_count"`
	TotalTimeSeconds int       `json:"total_time_seconds"`
	Answers          string    `json:"answers"`
	SubmittedBy      string    `json:"submitted_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// ChallengeBackup represents a challenge record for backup
type ChallengeBackup struct {
	ID            string     `json:"id"`
	TutorID       string     `json:"tutor_id"`
	StudentID     string     `json:"student_id"`
	LanguageCode  string     `json:"language_code"`
	ChallengeType string     `json:"challenge_type"`
	Title         string     `json:"title"`
	Config        string     `json:"config"`
	WordIDs       string     `json:"word_ids"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportVocabulary(backup); err != nil {
		return fmt.Errorf("failed to export vocabulary: %w", err)
	}
	if err := s.exportPerformance(backup); err != nil {
		return fmt.Errorf("failed to export performance: %w", err)
	}
	if err := s.exportPreferences(backup); err != nil {
		return fmt.Errorf("failed to export preferences: %w", err)
	}
	if err := s.exportSessions(backup); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}
	if err := s.exportChallenges(backup); err != nil {
		return fmt.Errorf("failed to export challenges: %w", err)
	}

	log.Printf("Exported: %d vocabulary, %d performance, %d preferences, %d sessions, %d challenges",
		len(backup.Vocabulary), len(backup.Performance), len(backup.Preferences),
		len(backup.Sessions), len(backup.Challenges))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importVocabulary(backup.Vocabulary); err != nil {
		return fmt.Errorf("failed to import vocabulary: %w", err)
	}
	if err := s.importPerformance(backup.Performance); err != nil {
		return fmt.Errorf("failed to import performance: %w", err)
	}
	if err := s.importPreferences(backup.Preferences); err != nil {
		return fmt.Errorf("failed to import preferences: %w", err)
	}
	if err := s.importSessions(backup.Sessions); err != nil {
		return fmt.Errorf("failed to import sessions: %w", err)
	}
	if err := s.importChallenges(backup.Challenges); err != nil {
		return fmt.Errorf("failed to import challenges: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportVocabulary(backup *BackupData) error {
	query := "SELECT id, user_id, language_code, word, translation, word_type, context, unlocked_at FROM vocabulary ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VocabularyBackup
		if err := rows.Scan(&v.ID, &v.UserID, &v.LanguageCode, &v.Word, &v.Translation, &v.WordType, &v.Context, &v.UnlockedAt); err != nil {
			return err
		}
		backup.Vocabulary = append(backup.Vocabulary, v)
	}
	return rows.Err()
}

func (s *BackupService) exportPerformance(backup *BackupData) error {
	query := "SELECT word_id, user_id, language_code, total_attempts, correct_attempts, correct_streak, learned_at, last_practiced FROM word_performance ORDER BY word_id, user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PerformanceBackup
		var learnedAt, lastPracticed sql.NullTime
		if err := rows.Scan(&p.WordID, &p.UserID, &p.LanguageCode, &p.TotalAttempts, &p.CorrectAttempts, &p.CorrectStreak, &learnedAt, &lastPracticed); err != nil {
			return err
		}
		if learnedAt.Valid {
			p.LearnedAt = &learnedAt.Time
		}
		if lastPracticed.Valid {
			p.LastPracticed = &lastPracticed.Time
		}
		backup.Performance = append(backup.Performance, p)
	}
	return rows.Err()
}

func (s *BackupService) exportPreferences(backup *BackupData) error {
	query := "SELECT user_id, save_preference, updated_at FROM preferences ORDER BY user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PreferenceBackup
		if err := rows.Scan(&p.UserID, &p.SavePreference, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Preferences = append(backup.Preferences, p)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	query := "SELECT session_uuid, user_id, language_code, game_mode, correct_count, incorrect_count, total_time_seconds, answers, submitted_by, created_at FROM game_sessions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sess SessionBackup
		if err := rows.Scan(&sess.SessionUUID, &sess.UserID, &sess.LanguageCode, &sess.GameMode, &sess.CorrectCount, &sess.IncorrectCount, &sess.TotalTimeSeconds, &sess.Answers, &sess.SubmittedBy, &sess.CreatedAt); err != nil {
			return err
		}
		backup.Sessions = append(backup.Sessions, sess)
	}
	return rows.Err()
}

func (s *BackupService) exportChallenges(backup *BackupData) error {
	query := "SELECT id, tutor_id, student_id, language_code, challenge_type, title, config, word_ids, status, created_at, completed_at FROM challenges ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChallengeBackup
		var completedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.TutorID, &c.StudentID, &c.LanguageCode, &c.ChallengeType, &c.Title, &c.Config, &c.WordIDs, &c.Status, &c.CreatedAt, &completedAt); err != nil {
			return err
		}
		if completedAt.Valid {
			c.CompletedAt = &completedAt.Time
		}
		backup.Challenges = append(backup.Challenges, c)
	}
	return rows.Err()
}

func (s *BackupService) importVocabulary(items []VocabularyBackup) error {
	log.Printf("Importing %d vocabulary items...", len(items))
	for _, v := range items {
		query := "INSERT INTO vocabulary (id, user_id, language_code, word, translation, word_type, context, unlocked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, v.ID, v.UserID, v.LanguageCode, v.Word, v.Translation, v.WordType, v.Context, v.UnlockedAt)
		if err != nil {
			return fmt.Errorf("failed to import vocabulary item %s: %w", v.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importPerformance(items []PerformanceBackup) error {
	log.Printf("Importing %d performance records...", len(items))
	for _, p := range items {
		var learnedAt, lastPracticed interface{}
		if p.LearnedAt != nil {
			learnedAt = *p.LearnedAt
		}
		if p.LastPracticed != nil {
			lastPracticed = *p.LastPracticed
		}
		query := "INSERT INTO word_performance (word_id, user_id, language_code, total_attempts, correct_attempts, correct_streak, learned_at, last_practiced) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, p.WordID, p.UserID, p.LanguageCode, p.TotalAttempts, p.CorrectAttempts, p.CorrectStreak, learnedAt, lastPracticed)
		if err != nil {
			return fmt.Errorf("failed to import performance for word %s: %w", p.WordID, err)
		}
	}
	return nil
}

func (s *BackupService) importPreferences(items []PreferenceBackup) error {
	log.Printf("Importing %d preferences...", len(items))
	for _, p := range items {
		query := "INSERT INTO preferences (user_id, save_preference, updated_at) VALUES (?, ?, ?)"
		_, err := s.db.Exec(query, p.UserID, p.SavePreference, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import preference for user %s: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importSessions(items []SessionBackup) error {
	log.Printf("Importing %d sessions...", len(items))
	for _, sess := range items {
		query := "INSERT INTO game_sessions (session_uuid, user_id, language_code, game_mode, correct_count, incorrect_count, total_time_seconds, answers, submitted_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, sess.SessionUUID, sess.UserID, sess.LanguageCode, sess.GameMode, sess.CorrectCount, sess.IncorrectCount, sess.TotalTimeSeconds, sess.Answers, sess.SubmittedBy, sess.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import session %s: %w", sess.SessionUUID, err)
		}

		// Restore the submission ledger so replayed saves stay rejected
		ledgerQuery := "INSERT INTO session_submissions (session_uuid, submitted_at) VALUES (?, ?)"
		if _, err := s.db.Exec(ledgerQuery, sess.SessionUUID, sess.CreatedAt); err != nil {
			return fmt.Errorf("failed to import submission record %s: %w", sess.SessionUUID, err)
		}
	}
	return nil
}

func (s *BackupService) importChallenges(items []ChallengeBackup) error {
	log.Printf("Importing %d challenges...", len(items))
	for _, c := range items {
		var completedAt interface{}
		if c.CompletedAt != nil {
			completedAt = *c.CompletedAt
		}
		query := "INSERT INTO challenges (id, tutor_id, student_id, language_code, challenge_type, title, config, word_ids, status, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, c.ID, c.TutorID, c.StudentID, c.LanguageCode, c.ChallengeType, c.Title, c.Config, c.WordIDs, c.Status, c.CreatedAt, completedAt)
		if err != nil {
			return fmt.Errorf("failed to import challenge %s: %w", c.ID, err)
		}
	}
	return nil
}
