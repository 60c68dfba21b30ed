// Package repository persists the turn ledger in SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// SQLiteStore records turns, their tool calls and trace events.
// Conversation history itself is kept in memory by the conversation package.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the ledger database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			status TEXT NOT NULL,
			state TEXT NOT NULL,
			model_calls INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, started_at)`,
		`CREATE TABLE IF NOT EXISTS tool_calls (
			turn_id TEXT NOT NULL,
			tool_call_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tool_name TEXT NOT NULL,
			status TEXT NOT NULL,
			args TEXT,
			result TEXT,
			error TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME,
			PRIMARY KEY (turn_id, tool_call_id),
			FOREIGN KEY (turn_id) REFERENCES turns(turn_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			turn_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (turn_id) REFERENCES turns(turn_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTurn inserts a new turn.
func (s *SQLiteStore) CreateTurn(ctx context.Context, turn *domain.Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (turn_id, session_id, status, state, model_calls, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.TurnID, turn.SessionID, turn.Status, turn.State, turn.ModelCalls, turn.StartedAt)
	return err
}

// GetTurn retrieves a turn by ID. It returns nil, nil when the turn is unknown.
func (s *SQLiteStore) GetTurn(ctx context.Context, turnID string) (*domain.Turn, error) {
	var turn domain.Turn
	var endedAt sql.NullTime
	var errData sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT turn_id, session_id, status, state, model_calls, started_at, ended_at, error FROM turns WHERE turn_id = ?`,
		turnID).Scan(&turn.TurnID, &turn.SessionID, &turn.Status, &turn.State, &turn.ModelCalls, &turn.StartedAt, &endedAt, &errData)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		turn.EndedAt = &endedAt.Time
	}
	if errData.Valid {
		turn.Error = json.RawMessage(errData.String)
	}
	return &turn, nil
}

// ListTurns lists the turns of a session, oldest first.
func (s *SQLiteStore) ListTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	query := `SELECT turn_id, session_id, status, state, model_calls, started_at, ended_at, error FROM turns WHERE session_id = ? ORDER BY started_at ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var turn domain.Turn
		var endedAt sql.NullTime
		var errData sql.NullString
		if err := rows.Scan(&turn.TurnID, &turn.SessionID, &turn.Status, &turn.State, &turn.ModelCalls, &turn.StartedAt, &endedAt, &errData); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			turn.EndedAt = &endedAt.Time
		}
		if errData.Valid {
			turn.Error = json.RawMessage(errData.String)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// UpdateTurnState records the state machine position and model call count.
func (s *SQLiteStore) UpdateTurnState(ctx context.Context, turnID string, state domain.TurnState, modelCalls int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE turns SET state = ?, model_calls = ? WHERE turn_id = ?`,
		state, modelCalls, turnID)
	return err
}

// UpdateTurnCompleted marks a turn as finished.
func (s *SQLiteStore) UpdateTurnCompleted(ctx context.Context, turnID string, status domain.TurnStatus, state domain.TurnState, errData []byte) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`UPDATE turns SET status = ?, state = ?, ended_at = ?, error = ? WHERE turn_id = ?`,
		status, state, now, nullStringBytes(errData), turnID)
	return err
}

// CreateToolCall inserts a tool call record.
func (s *SQLiteStore) CreateToolCall(ctx context.Context, tc *domain.ToolCallRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (turn_id, tool_call_id, seq, tool_name, status, args, result, error, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tc.TurnID, tc.ToolCallID, tc.Seq, tc.ToolName, tc.Status, nullStringBytes(tc.Args), nullString(tc.Result), nullString(tc.Error), tc.CreatedAt, tc.CompletedAt)
	return err
}

// UpdateToolCallResult completes a tool call. It reports false when the
// call was unknown or already completed.
func (s *SQLiteStore) UpdateToolCallResult(ctx context.Context, turnID, toolCallID string, status domain.ToolCallStatus, result, errText string) (bool, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tool_calls SET status = ?, result = ?, error = ?, completed_at = ? WHERE turn_id = ? AND tool_call_id = ? AND completed_at IS NULL`,
		status, nullString(result), nullString(errText), now, turnID, toolCallID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListToolCalls lists the tool calls of a turn in invocation order.
func (s *SQLiteStore) ListToolCalls(ctx context.Context, turnID string) ([]domain.ToolCallRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, tool_call_id, seq, tool_name, status, args, result, error, created_at, completed_at FROM tool_calls WHERE turn_id = ? ORDER BY seq ASC`,
		turnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []domain.ToolCallRecord{}
	for rows.Next() {
		var tc domain.ToolCallRecord
		var args, result, errText sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&tc.TurnID, &tc.ToolCallID, &tc.Seq, &tc.ToolName, &tc.Status, &args, &result, &errText, &tc.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		if args.Valid {
			tc.Args = json.RawMessage(args.String)
		}
		tc.Result = result.String
		tc.Error = errText.String
		if completedAt.Valid {
			tc.CompletedAt = &completedAt.Time
		}
		calls = append(calls, tc)
	}
	return calls, rows.Err()
}

// CreateEvent creates a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	payload := ""
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, turn_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.TurnID, event.Ts, event.Type, payload)
	return err
}

// GetEvents retrieves events for a turn in the order they were recorded.
func (s *SQLiteStore) GetEvents(ctx context.Context, turnID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	query := `SELECT event_id, turn_id, ts, type, payload FROM events WHERE turn_id = ?`
	args := []interface{}{turnID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND type IN (%s)", strings.Join(placeholders, ","))
	}

	query += ` ORDER BY ts ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var event domain.Event
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.TurnID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		if payload.Valid && payload.String != "" {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
