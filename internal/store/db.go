// Package store keeps the recently opened files and folders in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/justyntemme/cryptum/internal/debug"
)

// Kind separates recent documents from recent folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// MaxRecent is how many entries of each kind are kept.
const MaxRecent = 50

type EventType int

const (
	FetchRecent EventType = iota
	RecordRecent
	ForgetRecent
	ClearRecent
)

type Request struct {
	Op    EventType
	Kind  Kind
	Path  string
	Limit int
}

type Response struct {
	Op     EventType
	Kind   Kind
	Recent []Recent
	Err    error
}

// Recent is one remembered path.
type Recent struct {
	Path     string
	Kind     Kind
	OpenedAt time.Time
}

type DB struct {
	conn         *sql.DB
	RequestChan  chan Request
	ResponseChan chan Response

	done chan struct{}
}

func NewDB() *DB {
	return &DB{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
		done:         make(chan struct{}),
	}
}

// DefaultPath returns <user config dir>/cryptum/recent.db.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "cryptum", "recent.db")
}

// Open initializes the database connection and schema
func (d *DB) Open(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// One connection keeps writes ordered and avoids SQLITE_BUSY between the
	// coordinator and the worker.
	db.SetMaxOpenConns(1)

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return err
	}
	// Synchronous NORMAL is safe against app crashes, faster than FULL
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return err
	}

	query := `
	CREATE TABLE IF NOT EXISTS recent (
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		opened_at INTEGER NOT NULL,
		PRIMARY KEY (path, kind)
	);
	CREATE INDEX IF NOT EXISTS recent_kind_opened ON recent (kind, opened_at DESC);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return err
	}

	debug.Log(debug.STORE, "opened", zap.String("path", dbPath))
	d.conn = db
	return nil
}

// Start serves RequestChan until it is closed.
func (d *DB) Start() {
	defer close(d.done)
	for req := range d.RequestChan {
		switch req.Op {
		case FetchRecent:
			d.respond(req)
		case RecordRecent:
			if err := d.Record(req.Path, req.Kind); err != nil {
				debug.Warn("store: record failed", zap.Error(err))
			}
			d.respond(req)
		case ForgetRecent:
			if err := d.Forget(req.Path); err != nil {
				debug.Warn("store: forget failed", zap.Error(err))
			}
			d.respond(req)
		case ClearRecent:
			if err := d.Clear(); err != nil {
				debug.Warn("store: clear failed", zap.Error(err))
			}
			d.respond(req)
		}
	}
}

// respond sends the current list for the request's kind so the caller's view
// is in sync after every change.
func (d *DB) respond(req Request) {
	limit := req.Limit
	if limit <= 0 {
		limit = MaxRecent
	}
	list, err := d.Recent(req.Kind, limit)
	d.ResponseChan <- Response{Op: req.Op, Kind: req.Kind, Recent: list, Err: err}
}

// Record marks path as opened now and trims the oldest entries beyond
// MaxRecent.
func (d *DB) Record(path string, kind Kind) error {
	if d.conn == nil {
		return fmt.Errorf("store not open")
	}
	now := time.Now().UnixNano()
	_, err := d.conn.Exec(`
		INSERT INTO recent (path, kind, opened_at) VALUES (?, ?, ?)
		ON CONFLICT(path, kind) DO UPDATE SET opened_at = excluded.opened_at`,
		path, string(kind), now)
	if err != nil {
		return fmt.Errorf("record %s: %w", path, err)
	}
	_, err = d.conn.Exec(`
		DELETE FROM recent WHERE kind = ? AND path NOT IN (
			SELECT path FROM recent WHERE kind = ? ORDER BY opened_at DESC LIMIT ?
		)`, string(kind), string(kind), MaxRecent)
	if err != nil {
		return fmt.Errorf("trim recent: %w", err)
	}
	debug.Log(debug.STORE, "recorded", zap.String("path", path), zap.String("kind", string(kind)))
	return nil
}

// Recent returns up to limit entries of kind, newest first. An empty kind
// returns both kinds.
func (d *DB) Recent(kind Kind, limit int) ([]Recent, error) {
	if d.conn == nil {
		return nil, fmt.Errorf("store not open")
	}
	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = d.conn.Query("SELECT path, kind, opened_at FROM recent ORDER BY opened_at DESC LIMIT ?", limit)
	} else {
		rows, err = d.conn.Query("SELECT path, kind, opened_at FROM recent WHERE kind = ? ORDER BY opened_at DESC LIMIT ?", string(kind), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recent
	for rows.Next() {
		var (
			r    Recent
			k    string
			nano int64
		)
		if err := rows.Scan(&r.Path, &k, &nano); err != nil {
			return nil, err
		}
		r.Kind = Kind(k)
		r.OpenedAt = time.Unix(0, nano)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Forget removes path from both lists, e.g. after it was moved to the trash.
func (d *DB) Forget(path string) error {
	if d.conn == nil {
		return fmt.Errorf("store not open")
	}
	_, err := d.conn.Exec("DELETE FROM recent WHERE path = ?", path)
	return err
}

func (d *DB) Clear() error {
	if d.conn == nil {
		return fmt.Errorf("store not open")
	}
	_, err := d.conn.Exec("DELETE FROM recent")
	return err
}

// Stop closes RequestChan, discards responses nobody will read so the worker
// can drain, waits for Start to return and then closes the database. Only call
// it once, after Start.
func (d *DB) Stop() {
	close(d.RequestChan)
	for {
		select {
		case <-d.ResponseChan:
		case <-d.done:
			debug.Log(debug.STORE, "worker stopped")
			d.Close()
			return
		}
	}
}

func (d *DB) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
