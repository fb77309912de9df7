// Package sqlite implements the durable Store on an embedded SQLite
// database. Rows share one table keyed by (company_id, record_kind),
// with the record body serialized as JSON and a sector column kept on
// metadata rows for sector-scoped listing.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	_ "modernc.org/sqlite"

	"github.com/fintail/fintail/pkg/errors"
	"github.com/fintail/fintail/pkg/financials"
	"github.com/fintail/fintail/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	company_id  TEXT NOT NULL,
	record_kind TEXT NOT NULL,
	sector      TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	PRIMARY KEY (company_id, record_kind)
);
CREATE INDEX IF NOT EXISTS idx_records_sector ON records (sector) WHERE sector != '';
`

const profileCacheTTL = 5 * time.Minute

// Store is a SQLite-backed store.Store. Profiles are cached briefly
// since batch runs re-read them for every company in a sector.
type Store struct {
	db       *sql.DB
	profiles *gocache.Cache
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapStorage("open", "", 0, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent company runs.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WrapStorage("migrate", "", 0, err)
	}

	return &Store{
		db:       db,
		profiles: gocache.New(profileCacheTTL, 2*profileCacheTTL),
	}, nil
}

var _ store.Store = (*Store)(nil)

// ExistingQuarters reports the quarter strings already stored for a
// company.
func (s *Store) ExistingQuarters(ctx context.Context, companyID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_kind FROM records WHERE company_id = ? AND record_kind LIKE ?`,
		companyID, store.QuarterPrefix+"%")
	if err != nil {
		return nil, errors.WrapStorage("query quarters", companyID, 0, err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, errors.WrapStorage("scan quarters", companyID, 0, err)
		}
		if q, ok := store.QuarterFromKind(kind); ok {
			existing[q] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStorage("query quarters", companyID, 0, err)
	}
	return existing, nil
}

// WriteSeries writes the profile (when non-nil) and any quarters not
// already stored, in batches. A failed batch stops the write and is
// reported in the result; earlier batches stay committed.
func (s *Store) WriteSeries(ctx context.Context, companyID string, records []financials.QuarterlyRecord, profile *financials.CompanyProfile) (store.Result, error) {
	existing, err := s.ExistingQuarters(ctx, companyID)
	if err != nil {
		return store.Result{}, err
	}

	result := store.Result{Success: true}

	var pending []pendingRow
	if profile != nil {
		pending = append(pending, pendingRow{kind: store.MetadataKind, sector: profile.Sector, body: profile})
	}
	for _, rec := range records {
		if existing[rec.Quarter] {
			result.DuplicatesSkipped++
			continue
		}
		pending = append(pending, pendingRow{kind: store.QuarterKind(rec.Quarter), body: rec})
	}

	for start := 0; start < len(pending); start += store.BatchSize {
		end := min(start+store.BatchSize, len(pending))

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors, err.Error())
			return result, nil
		}
		written, err := s.writeBatch(ctx, tx, companyID, pending[start:end])
		if err != nil {
			tx.Rollback()
			result.Success = false
			result.Errors = append(result.Errors, err.Error())
			return result, nil
		}
		if err := tx.Commit(); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, err.Error())
			return result, nil
		}
		result.RecordsWritten += written
	}

	if profile != nil {
		s.profiles.Set(companyID, *profile, gocache.DefaultExpiration)
	}
	return result, nil
}

type pendingRow struct {
	kind   string
	sector string
	body   any
}

func (s *Store) writeBatch(ctx context.Context, tx *sql.Tx, companyID string, batch []pendingRow) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	var written int
	for _, r := range batch {
		body, err := json.Marshal(r.body)
		if err != nil {
			return written, fmt.Errorf("marshal %s: %w", r.kind, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (company_id, record_kind, sector, body, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (company_id, record_kind) DO UPDATE SET
			   sector = excluded.sector, body = excluded.body, updated_at = excluded.updated_at`,
			companyID, r.kind, r.sector, string(body), now)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", r.kind, err)
		}
		written++
	}
	return written, nil
}

// Profile returns the stored company profile, consulting the cache
// first.
func (s *Store) Profile(ctx context.Context, companyID string) (*financials.CompanyProfile, error) {
	if cached, ok := s.profiles.Get(companyID); ok {
		p := cached.(financials.CompanyProfile)
		return &p, nil
	}

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE company_id = ? AND record_kind = ?`,
		companyID, store.MetadataKind).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapStorage("query profile", companyID, 0, err)
	}

	var profile financials.CompanyProfile
	if err := json.Unmarshal([]byte(body), &profile); err != nil {
		return nil, errors.WrapStorage("decode profile", companyID, 0, err)
	}
	s.profiles.Set(companyID, profile, gocache.DefaultExpiration)
	return &profile, nil
}

// UpdateMarketCap refreshes valuation fields on an existing metadata
// record.
func (s *Store) UpdateMarketCap(ctx context.Context, companyID string, marketCap, currentPrice, sharesOutstanding float64) error {
	profile, err := s.Profile(ctx, companyID)
	if err != nil {
		return err
	}
	profile.MarketCap = marketCap
	profile.CurrentPrice = currentPrice
	profile.SharesOutstanding = sharesOutstanding

	body, err := json.Marshal(profile)
	if err != nil {
		return errors.WrapStorage("marshal profile", companyID, 0, err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET body = ?, updated_at = ? WHERE company_id = ? AND record_kind = ?`,
		string(body), time.Now().UTC().Format(time.RFC3339), companyID, store.MetadataKind)
	if err != nil {
		return errors.WrapStorage("update market cap", companyID, 0, err)
	}
	s.profiles.Set(companyID, *profile, gocache.DefaultExpiration)
	return nil
}

// ListBySector returns the tickers of companies whose metadata record
// carries the sector.
func (s *Store) ListBySector(ctx context.Context, sector string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company_id FROM records WHERE sector = ? AND record_kind = ? ORDER BY company_id`,
		sector, store.MetadataKind)
	if err != nil {
		return nil, errors.WrapStorage("query sector", "", 0, err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WrapStorage("scan sector", "", 0, err)
		}
		tickers = append(tickers, id)
	}
	return tickers, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
