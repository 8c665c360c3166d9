package eventlog

import (
	"context"
	"database/sql"
	"fmt"

	"lbsim/pkg/protocol"
)

// SourceCount is a blocked source address and how often it was rejected.
type SourceCount struct {
	Source string
	Count  int
}

// Summary aggregates a whole run.
type Summary struct {
	Cycles       int
	Counts       map[protocol.EventType]int
	PeakQueue    int
	PeakServers  int
	AvgBusy      float64
	FinalServers int
	FinalQueue   int
	TopBlocked   []SourceCount
}

// topBlockedLimit caps Summary.TopBlocked.
const topBlockedLimit = 5

// Summary computes run-wide statistics. An empty store yields a zero Summary
// with a non-nil Counts map.
func (r *Recorder) Summary(ctx context.Context) (Summary, error) {
	s := Summary{Counts: make(map[protocol.EventType]int, len(protocol.AllEventTypes))}

	rows, err := r.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return Summary{}, fmt.Errorf("count events: %w", err)
	}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			rows.Close()
			return Summary{}, fmt.Errorf("scan count: %w", err)
		}
		s.Counts[protocol.EventType(typ)] = n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Summary{}, fmt.Errorf("iterate counts: %w", err)
	}
	rows.Close()

	var avgBusy sql.NullFloat64
	var peakQueue, peakServers sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(queue_len), MAX(servers), AVG(busy) FROM snapshots`,
	).Scan(&s.Cycles, &peakQueue, &peakServers, &avgBusy)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate snapshots: %w", err)
	}
	s.PeakQueue = int(peakQueue.Int64)
	s.PeakServers = int(peakServers.Int64)
	s.AvgBusy = avgBusy.Float64

	if s.Cycles > 0 {
		err = r.db.QueryRowContext(ctx,
			`SELECT servers, queue_len FROM snapshots ORDER BY cycle DESC LIMIT 1`,
		).Scan(&s.FinalServers, &s.FinalQueue)
		if err != nil {
			return Summary{}, fmt.Errorf("final snapshot: %w", err)
		}
	}

	s.TopBlocked, err = r.topBlocked(ctx, topBlockedLimit)
	if err != nil {
		return Summary{}, err
	}

	return s, nil
}

// topBlocked returns the most frequently blocked sources, most frequent first,
// ties broken by address.
func (r *Recorder) topBlocked(ctx context.Context, limit int) ([]SourceCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT source, COUNT(*) AS n FROM events
		 WHERE type = ? AND source IS NOT NULL
		 GROUP BY source ORDER BY n DESC, source ASC LIMIT ?`,
		string(protocol.EventBlocked), limit)
	if err != nil {
		return nil, fmt.Errorf("query blocked sources: %w", err)
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan blocked source: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked sources: %w", err)
	}
	return out, nil
}
