// Package sqlite persists simulation events, snapshots, and session
// outcomes to a relational store. It is the persistence collaborator at the
// core's boundary: it only ever appends what the engine exports.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	simulation_id TEXT NOT NULL,
	frame         INTEGER NOT NULL,
	stage         TEXT NOT NULL,
	category      TEXT NOT NULL,
	type          TEXT NOT NULL,
	actor         TEXT,
	target        TEXT,
	payload       TEXT,
	timestamp     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_sim_frame ON events (simulation_id, frame);

CREATE TABLE IF NOT EXISTS snapshots (
	simulation_id TEXT NOT NULL,
	frame         INTEGER NOT NULL,
	body          TEXT NOT NULL,
	taken_at      TEXT NOT NULL,
	PRIMARY KEY (simulation_id, frame)
);

CREATE TABLE IF NOT EXISTS session_outcomes (
	simulation_id TEXT NOT NULL,
	agent_id      TEXT NOT NULL,
	start_frame   INTEGER NOT NULL,
	end_frame     INTEGER NOT NULL,
	body          TEXT NOT NULL,
	PRIMARY KEY (simulation_id, agent_id)
);
`

// Store is a SQLite-backed event sink, snapshot store, and session-outcome
// writer sharing one database file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The frame loop is single-writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Emit appends one event row.
func (s *Store) Emit(ctx context.Context, ev domain.SimulationEvent) error {
	var payload []byte
	if ev.Payload != nil {
		var err error
		payload, err = json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (simulation_id, frame, stage, category, type, actor, target, payload, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.SimulationID, ev.Frame, string(ev.Stage), string(ev.Category), string(ev.Type),
		ev.Actor, ev.Target, string(payload), ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Events returns all persisted events for a simulation in insert order.
func (s *Store) Events(ctx context.Context, simulationID string) ([]domain.SimulationEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, stage, category, type, actor, target, payload
		FROM events WHERE simulation_id = ? ORDER BY id`, simulationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.SimulationEvent
	for rows.Next() {
		var ev domain.SimulationEvent
		var stage, category, typ string
		var actor, target, payload sql.NullString
		if err := rows.Scan(&ev.Frame, &stage, &category, &typ, &actor, &target, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.SimulationID = simulationID
		ev.Stage = domain.Stage(stage)
		ev.Category = domain.Category(category)
		ev.Type = domain.EventType(typ)
		ev.Actor = actor.String
		ev.Target = target.String
		if payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &ev.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Save persists a snapshot row (ports.SnapshotStore).
func (s *Store) Save(ctx context.Context, snap ports.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (simulation_id, frame, body, taken_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (simulation_id, frame) DO UPDATE SET body = excluded.body, taken_at = excluded.taken_at`,
		snap.SimulationID, snap.Frame, string(body), snap.TakenAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot (ports.SnapshotStore).
func (s *Store) Load(ctx context.Context, simulationID string, frame int) (*ports.Snapshot, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots WHERE simulation_id = ? AND frame = ?`,
		simulationID, frame).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	var snap ports.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Frames lists captured frames, ascending (ports.SnapshotStore).
func (s *Store) Frames(ctx context.Context, simulationID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame FROM snapshots WHERE simulation_id = ? ORDER BY frame`, simulationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot frames: %w", err)
	}
	defer rows.Close()

	var frames []int
	for rows.Next() {
		var frame int
		if err := rows.Scan(&frame); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// Delete removes all snapshots for a simulation (ports.SnapshotStore).
func (s *Store) Delete(ctx context.Context, simulationID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE simulation_id = ?`, simulationID); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}

// SaveOutcomes upserts one row per agent outcome.
func (s *Store) SaveOutcomes(ctx context.Context, outcomes []domain.SessionOutcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin outcome transaction: %w", err)
	}
	defer tx.Rollback()

	for _, out := range outcomes {
		body, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal outcome for %s: %w", out.AgentID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_outcomes (simulation_id, agent_id, start_frame, end_frame, body)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (simulation_id, agent_id) DO UPDATE SET
				start_frame = excluded.start_frame,
				end_frame   = excluded.end_frame,
				body        = excluded.body`,
			out.SimulationID, out.AgentID, out.StartFrame, out.EndFrame, string(body),
		); err != nil {
			return fmt.Errorf("failed to upsert outcome for %s: %w", out.AgentID, err)
		}
	}
	return tx.Commit()
}

// Outcomes loads all persisted outcomes for a simulation.
func (s *Store) Outcomes(ctx context.Context, simulationID string) ([]domain.SessionOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM session_outcomes WHERE simulation_id = ? ORDER BY agent_id`, simulationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.SessionOutcome
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		var out domain.SessionOutcome
		if err := json.Unmarshal([]byte(body), &out); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, rows.Err()
}
