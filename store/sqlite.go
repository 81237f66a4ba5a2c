// Package store caches daily bars in a local sqlite database so repeated
// backtests do not refetch the same history.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"stratlab/model"
)

// Source is anything that can fetch daily bars over the network.
type Source interface {
	DailyBars(symbol string, days int) ([]model.Bar, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	symbol TEXT NOT NULL,
	ts     INTEGER NOT NULL,
	open   REAL NOT NULL,
	high   REAL NOT NULL,
	low    REAL NOT NULL,
	close  REAL NOT NULL,
	volume INTEGER NOT NULL,
	PRIMARY KEY (symbol, ts)
);
CREATE TABLE IF NOT EXISTS fetch_log (
	symbol     TEXT PRIMARY KEY,
	fetched_at INTEGER NOT NULL
);
`

// BarCache wraps a Source and persists its results. Cached bars are served
// as long as the last fetch for the symbol is younger than TTL.
type BarCache struct {
	db     *sql.DB
	source Source
	ttl    time.Duration
}

// OpenBarCache opens (creating if needed) the sqlite file at path.
// A nonpositive ttl disables freshness checks and always refetches.
func OpenBarCache(path string, source Source, ttl time.Duration) (*BarCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open bar cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("bar cache pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bar cache schema: %w", err)
	}
	return &BarCache{db: db, source: source, ttl: ttl}, nil
}

func (c *BarCache) Close() error {
	return c.db.Close()
}

// DailyBars implements Source. It serves from the cache when the symbol was
// fetched recently, otherwise fetches from the wrapped source and upserts.
func (c *BarCache) DailyBars(symbol string, days int) ([]model.Bar, error) {
	if c.ttl > 0 && c.fresh(symbol) {
		bars, err := c.load(symbol, days)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
	}

	bars, err := c.source.DailyBars(symbol, days)
	if err != nil {
		// Fall back to stale cache rather than failing outright.
		if cached, lerr := c.load(symbol, days); lerr == nil && len(cached) > 0 {
			return cached, nil
		}
		return nil, err
	}
	if err := c.save(symbol, bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func (c *BarCache) fresh(symbol string) bool {
	var fetchedAt int64
	err := c.db.QueryRow("SELECT fetched_at FROM fetch_log WHERE symbol = ?", symbol).Scan(&fetchedAt)
	if err != nil {
		return false
	}
	return time.Since(time.Unix(fetchedAt, 0)) < c.ttl
}

func (c *BarCache) load(symbol string, days int) ([]model.Bar, error) {
	rows, err := c.db.Query(
		`SELECT ts, open, high, low, close, volume
		 FROM (SELECT * FROM bars WHERE symbol = ? ORDER BY ts DESC LIMIT ?)
		 ORDER BY ts ASC`,
		symbol, days,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var ts int64
		var b model.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Time = time.Unix(ts, 0).Local()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (c *BarCache) save(symbol string, bars []model.Bar) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO bars (symbol, ts, open, high, low, close, volume)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Time.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO fetch_log (symbol, fetched_at) VALUES (?, ?)",
		symbol, time.Now().Unix(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
