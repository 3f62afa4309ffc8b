package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Interaction struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	AskedAt  string `json:"asked_at"`
}

// InteractionLog appends question and answer pairs to a local SQLite
// file. Append failures are surfaced to the caller so it can log and
// move on; answering never depends on the log.
type InteractionLog struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenInteractionLog(path string, logger *slog.Logger) (*InteractionLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create interaction log directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction log: %w", err)
	}

	l := &InteractionLog{db: sqlDB, logger: logger}
	if err := l.init(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return l, nil
}

func (l *InteractionLog) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := l.db.Exec(p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			asked_at TEXT NOT NULL
		);
	`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

func (l *InteractionLog) Append(ctx context.Context, question, answer string) error {
	askedAt := time.Now().UTC().Format(time.RFC3339)
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO interactions (question, answer, asked_at) VALUES (?, ?, ?)",
		question, answer, askedAt)
	if err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}

	l.logger.Debug("Logged interaction",
		slog.Int("question_length", len(question)),
		slog.Int("answer_length", len(answer)))

	return nil
}

// Recent returns up to limit interactions, newest first.
func (l *InteractionLog) Recent(ctx context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx,
		"SELECT id, question, answer, asked_at FROM interactions ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var interaction Interaction
		if err := rows.Scan(&interaction.ID, &interaction.Question, &interaction.Answer, &interaction.AskedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, interaction)
	}

	return interactions, rows.Err()
}

func (l *InteractionLog) Close() error {
	return l.db.Close()
}
