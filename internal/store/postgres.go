package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/listing-harvester/internal/listing"
)

// pool is the slice of pgxpool.Pool the store needs; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresConfig controls the connection pool behind a PostgresStore.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// PostgresStore implements Store on PostgreSQL. The single-statement
// INSERT .. ON CONFLICT keeps each upsert atomic: a failure leaves the
// previous row for that id unchanged.
type PostgresStore struct {
	pool pool
}

const createListingsTable = `
CREATE TABLE IF NOT EXISTS listings (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	url           TEXT NOT NULL,
	address       TEXT NOT NULL,
	city          TEXT NOT NULL,
	state         TEXT NOT NULL,
	zip_code      TEXT NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	bedrooms      DOUBLE PRECISION NOT NULL,
	bathrooms     DOUBLE PRECISION NOT NULL,
	square_feet   DOUBLE PRECISION,
	lot_size      DOUBLE PRECISION,
	year_built    INTEGER,
	property_type TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	features      TEXT NOT NULL DEFAULT '',
	image_urls    TEXT NOT NULL DEFAULT '',
	date_listed   TEXT,
	date_scraped  TEXT NOT NULL
)`

// NewPostgresStore connects a pool and ensures the listings table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: p}
	if err := s.ensureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool,
// primarily for testing.
func NewPostgresStoreWithPool(p pool) (*PostgresStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PostgresStore{pool: p}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createListingsTable); err != nil {
		return fmt.Errorf("ensure listings table: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const upsertListing = `
INSERT INTO listings (
	id, source, url, address, city, state, zip_code,
	price, bedrooms, bathrooms, square_feet, lot_size, year_built,
	property_type, description, features, image_urls, date_listed, date_scraped
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
)
ON CONFLICT (id) DO UPDATE SET
	source = EXCLUDED.source,
	url = EXCLUDED.url,
	address = EXCLUDED.address,
	city = EXCLUDED.city,
	state = EXCLUDED.state,
	zip_code = EXCLUDED.zip_code,
	price = EXCLUDED.price,
	bedrooms = EXCLUDED.bedrooms,
	bathrooms = EXCLUDED.bathrooms,
	square_feet = EXCLUDED.square_feet,
	lot_size = EXCLUDED.lot_size,
	year_built = EXCLUDED.year_built,
	property_type = EXCLUDED.property_type,
	description = EXCLUDED.description,
	features = EXCLUDED.features,
	image_urls = EXCLUDED.image_urls,
	date_listed = EXCLUDED.date_listed,
	date_scraped = EXCLUDED.date_scraped`

// Upsert inserts or wholesale-replaces the row keyed by record.ID.
func (s *PostgresStore) Upsert(ctx context.Context, record listing.Record) error {
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}

	var dateListed *string
	if record.DateListed != nil {
		v := record.DateListed.Format(time.RFC3339)
		dateListed = &v
	}

	args := []any{
		record.ID,
		string(record.Source),
		record.URL,
		record.Address,
		record.City,
		record.State,
		record.PostalCode,
		record.Price,
		record.Bedrooms,
		record.Bathrooms,
		record.SquareFeet,
		record.LotSize,
		record.YearBuilt,
		record.PropertyType,
		record.Description,
		listing.JoinList(record.Features),
		listing.JoinList(record.ImageURLs),
		dateListed,
		record.DateScraped.Format(time.RFC3339),
	}
	if _, err := s.pool.Exec(ctx, upsertListing, args...); err != nil {
		return fmt.Errorf("upsert listing %s: %w", record.ID, err)
	}
	return nil
}

const selectListings = `
SELECT id, source, url, address, city, state, zip_code,
	price, bedrooms, bathrooms, square_feet, lot_size, year_built,
	property_type, description, features, image_urls, date_listed, date_scraped
FROM listings`

// Query returns records matching every set filter, cheapest first.
func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]listing.Record, error) {
	query := selectListings + " WHERE 1=1"
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Location != "" {
		p := arg("%" + filter.Location + "%")
		query += fmt.Sprintf(" AND (city ILIKE %s OR state ILIKE %s OR zip_code ILIKE %s)", p, p, p)
	}
	if filter.MinPrice != nil {
		query += " AND price >= " + arg(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += " AND price <= " + arg(*filter.MaxPrice)
	}
	if filter.MinBeds != nil {
		query += " AND bedrooms >= " + arg(*filter.MinBeds)
	}
	if filter.MinBaths != nil {
		query += " AND bathrooms >= " + arg(*filter.MinBaths)
	}
	query += " ORDER BY price ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var out []listing.Record
	for rows.Next() {
		record, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

func scanListing(rows pgx.Rows) (listing.Record, error) {
	var (
		r           listing.Record
		source      string
		features    string
		imageURLs   string
		dateListed  *string
		dateScraped string
	)
	if err := rows.Scan(
		&r.ID, &source, &r.URL, &r.Address, &r.City, &r.State, &r.PostalCode,
		&r.Price, &r.Bedrooms, &r.Bathrooms, &r.SquareFeet, &r.LotSize, &r.YearBuilt,
		&r.PropertyType, &r.Description, &features, &imageURLs, &dateListed, &dateScraped,
	); err != nil {
		return listing.Record{}, fmt.Errorf("scan listing: %w", err)
	}

	r.Source = listing.Source(source)
	r.Features = listing.SplitList(features)
	r.ImageURLs = listing.SplitList(imageURLs)

	if dateListed != nil && *dateListed != "" {
		if t, err := time.Parse(time.RFC3339, *dateListed); err == nil {
			r.DateListed = &t
		}
	}
	t, err := time.Parse(time.RFC3339, dateScraped)
	if err != nil {
		return listing.Record{}, fmt.Errorf("parse date_scraped %q: %w", dateScraped, err)
	}
	r.DateScraped = t
	return r, nil
}
