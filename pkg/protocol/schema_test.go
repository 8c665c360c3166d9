package protocol_test

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"lbsim/pkg/protocol"
)

func TestStatsDDLExecsCleanly(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(protocol.StatsDDL); err != nil {
		t.Fatalf("exec schema DDL: %v", err)
	}
	// IF NOT EXISTS makes re-running harmless.
	if _, err := db.Exec(protocol.StatsDDL); err != nil {
		t.Fatalf("re-exec schema DDL: %v", err)
	}
}

func TestStatsDDLCreatesExpectedTables(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(protocol.StatsDDL); err != nil {
		t.Fatalf("exec schema DDL: %v", err)
	}

	for _, table := range []string{"events", "snapshots"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q not found: %v", table, err)
		}
	}
}

func TestStatsDDLSnapshotCyclesUnique(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(protocol.StatsDDL); err != nil {
		t.Fatalf("exec schema DDL: %v", err)
	}

	insert := `INSERT INTO snapshots (cycle, servers, busy, queue_len) VALUES (1, 2, 1, 10)`
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(insert); err == nil {
		t.Fatal("expected duplicate cycle to be rejected")
	}
}
