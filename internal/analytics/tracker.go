// Package analytics counts page visits and outbound project clicks without storing
// raw IP addresses.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	locale TEXT,
	visited_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitors_visited_at ON visitors(visited_at);
CREATE TABLE IF NOT EXISTS clicks (
	slug TEXT PRIMARY KEY,
	clicks INTEGER NOT NULL DEFAULT 0,
	last_clicked_at INTEGER
);`

// SlugClicks is the outbound click count for one project.
type SlugClicks struct {
	Slug   string `json:"slug"`
	Clicks int64  `json:"clicks"`
}

// Stats is an aggregate view; it never includes per-visitor rows.
type Stats struct {
	TotalVisits    int64        `json:"total_visits"`
	UniqueVisitors int64        `json:"unique_visitors"`
	VisitsToday    int64        `json:"visits_today"`
	VisitsThisWeek int64        `json:"visits_this_week"`
	TotalClicks    int64        `json:"total_clicks"`
	Clicks         []SlugClicks `json:"clicks"`
}

type Tracker struct {
	db        *sql.DB
	salt      string
	retention time.Duration
	now       func() time.Time
}

// Open opens (creating if needed) the SQLite database at dsn. Visits older than
// retention are removed by Cleanup.
func Open(ctx context.Context, dsn string, retention time.Duration) (*Tracker, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	// a single connection keeps :memory: databases whole
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create analytics schema: %w", err)
	}

	salt, err := newSalt()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Println("[analytics] visitor tracking enabled with hashed IP addresses")
	return &Tracker{db: db, salt: salt, retention: retention, now: time.Now}, nil
}

func (t *Tracker) Close() error {
	return t.db.Close()
}

func (t *Tracker) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

func newSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate hashing salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashIP is stable for the lifetime of the tracker and truncated to 16 hex chars.
func (t *Tracker) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + t.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Skip reports whether a request path should not be counted as a page visit.
func Skip(path string) bool {
	for _, prefix := range []string{"/static/", "/images/", "/favicon", "/health", "/go/", "/api/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (t *Tracker) RecordVisit(ctx context.Context, ip, userAgent, path, locale string) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, locale, visited_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.HashIP(ip), userAgent, path, locale, t.now().Unix())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

func (t *Tracker) RecordClick(ctx context.Context, slug string) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO clicks (slug, clicks, last_clicked_at) VALUES (?, 1, ?)
		ON CONFLICT(slug) DO UPDATE SET clicks = clicks + 1, last_clicked_at = excluded.last_clicked_at
	`, slug, t.now().Unix())
	if err != nil {
		return fmt.Errorf("record click %s: %w", slug, err)
	}
	return nil
}

// Cleanup deletes visits older than the retention window and returns how many went.
func (t *Tracker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := t.now().Add(-t.retention).Unix()
	res, err := t.db.ExecContext(ctx, `DELETE FROM visitors WHERE visited_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Printf("[analytics] privacy cleanup removed %d visits older than %s", n, t.retention)
	}
	return n, nil
}

// RunCleanup runs Cleanup immediately and then every interval until ctx is done.
func (t *Tracker) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := t.Cleanup(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[analytics] %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) Stats(ctx context.Context) (*Stats, error) {
	now := t.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Unix()
	weekAgo := now.Add(-7 * 24 * time.Hour).Unix()

	stats := &Stats{Clicks: []SlugClicks{}}
	err := t.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT hashed_ip),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0)
		FROM visitors
	`, startOfDay, weekAgo).Scan(&stats.TotalVisits, &stats.UniqueVisitors, &stats.VisitsToday, &stats.VisitsThisWeek)
	if err != nil {
		return nil, fmt.Errorf("visitor stats: %w", err)
	}

	rows, err := t.db.QueryContext(ctx, `SELECT slug, clicks FROM clicks ORDER BY clicks DESC, slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("click stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c SlugClicks
		if err := rows.Scan(&c.Slug, &c.Clicks); err != nil {
			return nil, fmt.Errorf("scan click stats: %w", err)
		}
		stats.TotalClicks += c.Clicks
		stats.Clicks = append(stats.Clicks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("click stats: %w", err)
	}
	return stats, nil
}
