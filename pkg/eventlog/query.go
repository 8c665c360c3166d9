// Package eventlog records a run's dispatcher events and per-cycle snapshots
// into an in-memory SQLite database and answers aggregate queries over them
// once the run is complete. Nothing is written to disk.
package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lbsim/pkg/dispatcher"
	"lbsim/pkg/protocol"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// Event is one stored dispatcher event.
type Event struct {
	ID          int64
	Cycle       int
	Type        protocol.EventType
	ServerID    int // dispatcher.NoServer when not tied to a server
	RequestID   string
	Source      string
	Destination string
	Duration    int
	Total       int
}

// QueryOpts specifies filter criteria for querying events.
type QueryOpts struct {
	// Type filters to a specific event type (e.g., "blocked", "assigned")
	Type protocol.EventType

	// ServerID filters to one server index; nil matches all
	ServerID *int

	// FromCycle filters events at or after this cycle (0 = no bound)
	FromCycle int

	// ToCycle filters events at or before this cycle (0 = no bound)
	ToCycle int

	// Limit restricts the number of results (0 = no limit)
	Limit int
}

// Recorder is a dispatcher.Sink backed by an in-memory SQLite database.
// Sink methods cannot return errors, so the first failure is kept and
// reported by Err.
type Recorder struct {
	db        *sql.DB
	eventStmt *sql.Stmt
	snapStmt  *sql.Stmt
	err       error
}

// Open creates an empty in-memory store.
func Open(ctx context.Context) (*Recorder, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database; pin to one.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, protocol.StatsDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	eventStmt, err := db.PrepareContext(ctx,
		`INSERT INTO events (cycle, type, server_id, request_id, source, destination, duration, total_servers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare event insert: %w", err)
	}

	snapStmt, err := db.PrepareContext(ctx,
		`INSERT INTO snapshots (cycle, servers, busy, queue_len) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = eventStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("prepare snapshot insert: %w", err)
	}

	return &Recorder{db: db, eventStmt: eventStmt, snapStmt: snapStmt}, nil
}

// RecordEvent stores ev.
func (r *Recorder) RecordEvent(ev dispatcher.Event) {
	if r.err != nil {
		return
	}

	var serverID sql.NullInt64
	if ev.Server != dispatcher.NoServer {
		serverID = sql.NullInt64{Int64: int64(ev.Server), Valid: true}
	}
	var requestID, source, destination sql.NullString
	var duration sql.NullInt64
	if ev.Request.ID != uuid.Nil || ev.Request.Source != "" {
		requestID = sql.NullString{String: ev.Request.ID.String(), Valid: ev.Request.ID != uuid.Nil}
		source = sql.NullString{String: ev.Request.Source, Valid: true}
		destination = sql.NullString{String: ev.Request.Destination, Valid: true}
		duration = sql.NullInt64{Int64: int64(ev.Request.Duration), Valid: true}
	}
	var total sql.NullInt64
	if ev.Total > 0 {
		total = sql.NullInt64{Int64: int64(ev.Total), Valid: true}
	}

	_, err := r.eventStmt.ExecContext(context.Background(),
		ev.Cycle, string(ev.Type), serverID, requestID, source, destination, duration, total)
	if err != nil {
		r.err = fmt.Errorf("record event: %w", err)
	}
}

// RecordSnapshot stores the end-of-cycle pool size, busy count and queue length.
func (r *Recorder) RecordSnapshot(s dispatcher.Snapshot) {
	if r.err != nil {
		return
	}
	_, err := r.snapStmt.ExecContext(context.Background(), s.Cycle, len(s.Servers), s.Busy(), s.QueueLen)
	if err != nil {
		r.err = fmt.Errorf("record snapshot: %w", err)
	}
}

// Err returns the first recording error, if any.
func (r *Recorder) Err() error {
	return r.err
}

// Close releases the database. Safe to call multiple times.
func (r *Recorder) Close() error {
	if r.db == nil {
		return nil
	}
	err := errors.Join(r.eventStmt.Close(), r.snapStmt.Close(), r.db.Close())
	r.db = nil
	return err
}

// Query retrieves events matching opts in recording order.
// Returns an empty slice if no events match.
func (r *Recorder) Query(ctx context.Context, opts QueryOpts) ([]Event, error) {
	if opts.Type != "" && !opts.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", opts.Type)
	}
	query, args := buildQuery(opts)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e                              Event
			typ                            string
			serverID, duration, total      sql.NullInt64
			requestID, source, destination sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Cycle, &typ, &serverID, &requestID, &source, &destination, &duration, &total); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.Type = protocol.EventType(typ)
		e.ServerID = dispatcher.NoServer
		if serverID.Valid {
			e.ServerID = int(serverID.Int64)
		}
		e.RequestID = requestID.String
		e.Source = source.String
		e.Destination = destination.String
		e.Duration = int(duration.Int64)
		e.Total = int(total.Int64)

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// buildQuery constructs the SQL query and arguments from QueryOpts.
func buildQuery(opts QueryOpts) (string, []any) {
	var conditions []string
	var args []any

	query := "SELECT id, cycle, type, server_id, request_id, source, destination, duration, total_servers FROM events WHERE 1=1"

	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(opts.Type))
	}

	if opts.ServerID != nil {
		conditions = append(conditions, "server_id = ?")
		args = append(args, *opts.ServerID)
	}

	if opts.FromCycle > 0 {
		conditions = append(conditions, "cycle >= ?")
		args = append(args, opts.FromCycle)
	}

	if opts.ToCycle > 0 {
		conditions = append(conditions, "cycle <= ?")
		args = append(args, opts.ToCycle)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id ASC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return query, args
}
