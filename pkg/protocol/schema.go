package protocol

// StatsDDL defines the SQLite schema for the in-memory run statistics store.
// Tables: events, snapshots.
// Execute against a SQLite database with: db.Exec(StatsDDL)
const StatsDDL = `
-- Balancer events: arrivals, rejections, assignments, completions, scaling
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY,
    cycle INTEGER NOT NULL,
    type TEXT NOT NULL,
    server_id INTEGER,
    request_id TEXT,
    source TEXT,
    destination TEXT,
    duration INTEGER,
    total_servers INTEGER
);

CREATE INDEX IF NOT EXISTS events_type_idx ON events(type);

-- One row per cycle: pool size, busy servers and queue length after the tick
CREATE TABLE IF NOT EXISTS snapshots (
    cycle INTEGER PRIMARY KEY,
    servers INTEGER NOT NULL,
    busy INTEGER NOT NULL,
    queue_len INTEGER NOT NULL
);
`
