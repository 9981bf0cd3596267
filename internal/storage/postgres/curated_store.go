// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SouravInsights/gardend/internal/garden"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ErrDuplicateURL is returned when a create would persist a second row with
// the same normalized URL. The merge layer matches by normalized URL, so a
// duplicate row would silently shadow its sibling.
var ErrDuplicateURL = errors.New("curated link with this URL already exists")

// ErrNotFound is returned when a curated link ID does not exist.
var ErrNotFound = errors.New("curated link not found")

// CuratedStoreConfig controls the Postgres connection pool.
type CuratedStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// CuratedStore persists curated links in Postgres.
type CuratedStore struct {
	pool  pgxPool
	table string
}

// NewCuratedStore creates a Postgres-backed CuratedStore using the provided config.
func NewCuratedStore(ctx context.Context, cfg CuratedStoreConfig) (*CuratedStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "curated_links"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
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
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &CuratedStore{pool: pool, table: table}, nil
}

// NewCuratedStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewCuratedStoreWithPool(pool pgxPool, table string) (*CuratedStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "curated_links"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &CuratedStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *CuratedStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const curatedColumns = `id, title, url, description, category, notes, creator_twitter,
	click_count, newsletter_status, buttondown_email_id, created_at, updated_at`

// Create inserts a curated link. Creates with a URL whose normalized form
// already exists are rejected with ErrDuplicateURL.
func (s *CuratedStore) Create(ctx context.Context, link garden.CuratedLink) (garden.CuratedLink, error) {
	exists, err := s.normalizedURLExists(ctx, link.URL)
	if err != nil {
		return garden.CuratedLink{}, err
	}
	if exists {
		return garden.CuratedLink{}, ErrDuplicateURL
	}

	query := fmt.Sprintf(`
INSERT INTO %s (title, url, description, category, notes, creator_twitter)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING %s`, s.table, curatedColumns)

	row := s.pool.QueryRow(ctx, query,
		link.Title,
		link.URL,
		link.Description,
		link.Category,
		link.Notes,
		link.CreatorTwitter,
	)
	created, err := scanCuratedLink(row)
	if err != nil {
		return garden.CuratedLink{}, fmt.Errorf("insert curated link: %w", err)
	}
	return created, nil
}

// Get returns one curated link by ID.
func (s *CuratedStore) Get(ctx context.Context, id int64) (garden.CuratedLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, curatedColumns, s.table)
	link, err := scanCuratedLink(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return garden.CuratedLink{}, ErrNotFound
		}
		return garden.CuratedLink{}, fmt.Errorf("get curated link: %w", err)
	}
	return link, nil
}

// List returns all curated links in insertion order.
func (s *CuratedStore) List(ctx context.Context) ([]garden.CuratedLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, curatedColumns, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list curated links: %w", err)
	}
	defer rows.Close()

	var links []garden.CuratedLink
	for rows.Next() {
		link, err := scanCuratedLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan curated link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curated links: %w", err)
	}
	return links, nil
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (s *CuratedStore) Update(ctx context.Context, id int64, upd garden.CuratedLinkUpdate) (garden.CuratedLink, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("title", upd.Title)
	add("description", upd.Description)
	add("category", upd.Category)
	add("notes", upd.Notes)
	add("creator_twitter", upd.CreatorTwitter)
	add("newsletter_status", upd.NewsletterStatus)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		s.table, strings.Join(sets, ", "), curatedColumns)
	link, err := scanCuratedLink(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return garden.CuratedLink{}, ErrNotFound
		}
		return garden.CuratedLink{}, fmt.Errorf("update curated link: %w", err)
	}
	return link, nil
}

// IncrementClicks bumps the click counter for one link.
func (s *CuratedStore) IncrementClicks(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET click_count = click_count + 1, updated_at = now() WHERE id = $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNewsletter records the newsletter draft state for one link.
func (s *CuratedStore) SetNewsletter(ctx context.Context, id int64, status, emailID string) error {
	query := fmt.Sprintf(`
UPDATE %s SET newsletter_status = $2, buttondown_email_id = $3, updated_at = now()
WHERE id = $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, id, status, emailID)
	if err != nil {
		return fmt.Errorf("set newsletter state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// normalizedURLExists scans stored URLs and compares by normalized form. The
// table holds tens to low hundreds of rows, so a full scan at write time is
// cheaper than maintaining a normalized column.
func (s *CuratedStore) normalizedURLExists(ctx context.Context, url string) (bool, error) {
	query := fmt.Sprintf(`SELECT url FROM %s`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return false, fmt.Errorf("scan existing urls: %w", err)
	}
	defer rows.Close()

	target := garden.NormalizeURL(url)
	for rows.Next() {
		var existing string
		if err := rows.Scan(&existing); err != nil {
			return false, fmt.Errorf("scan url: %w", err)
		}
		if garden.NormalizeURL(existing) == target {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate urls: %w", err)
	}
	return false, nil
}

func scanCuratedLink(row pgx.Row) (garden.CuratedLink, error) {
	var link garden.CuratedLink
	err := row.Scan(
		&link.ID,
		&link.Title,
		&link.URL,
		&link.Description,
		&link.Category,
		&link.Notes,
		&link.CreatorTwitter,
		&link.ClickCount,
		&link.NewsletterStatus,
		&link.ButtondownEmailID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return garden.CuratedLink{}, err
	}
	return link, nil
}
