package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

const uniqueViolation = "23505"

const linkColumns = `id, key, secret_key, target_url, is_active, is_custom, clicks, owner_id, expires_at, created_at, updated_at`

type LinkRepository struct {
	db *pgxpool.Pool
}

func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts link and fills its generated columns. A duplicate key or
// secret yields a *domain.CollisionError naming the violated constraint.
func (r *LinkRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO links (key, secret_key, target_url, is_custom, owner_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, clicks, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		link.Key,
		link.SecretKey,
		link.TargetURL,
		link.IsCustom,
		link.OwnerID,
		link.ExpiresAt,
	).Scan(&link.ID, &link.IsActive, &link.Clicks, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &domain.CollisionError{Constraint: pgErr.ConstraintName}
		}
		return err
	}

	return nil
}

// GetByKey returns the active link for key. Expiration is left to the caller.
func (r *LinkRepository) GetByKey(ctx context.Context, key string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE key = $1 AND is_active = TRUE`
	return scanLink(r.db.QueryRow(ctx, query, key))
}

func (r *LinkRepository) GetBySecret(ctx context.Context, secret string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE secret_key = $1 AND is_active = TRUE`
	return scanLink(r.db.QueryRow(ctx, query, secret))
}

// KeyExists checks every link, active or not, since keys are never reused.
func (r *LinkRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

// Deactivate is idempotent at the row level; it reports domain.ErrNotFound
// when no active link carries secret.
func (r *LinkRepository) Deactivate(ctx context.Context, secret string) error {
	query := `
		UPDATE links SET is_active = FALSE, updated_at = NOW()
		WHERE secret_key = $1 AND is_active = TRUE
	`

	tag, err := r.db.Exec(ctx, query, secret)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LinkRepository) UpdateTarget(ctx context.Context, secret, targetURL string) (*domain.Link, error) {
	query := `
		UPDATE links SET target_url = $2, updated_at = NOW()
		WHERE secret_key = $1 AND is_active = TRUE
		RETURNING ` + linkColumns

	return scanLink(r.db.QueryRow(ctx, query, secret, targetURL))
}

func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID int64, filter domain.LinkFilter, page, pageSize int) ([]domain.Link, int64, error) {
	where := `owner_id = $1`
	args := []any{ownerID}

	if filter.ActiveOnly {
		where += ` AND is_active = TRUE`
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where += fmt.Sprintf(` AND (target_url ILIKE $%d OR key ILIKE $%d)`, len(args), len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM links WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM links WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		linkColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, *link)
	}

	return links, total, rows.Err()
}

// CountCreatedSince counts links owner created at or after since, optionally
// only the ones with a custom key.
func (r *LinkRepository) CountCreatedSince(ctx context.Context, ownerID int64, since time.Time, customOnly bool) (int64, error) {
	query := `
		SELECT COUNT(*) FROM links
		WHERE owner_id = $1 AND created_at >= $2 AND ($3 = FALSE OR is_custom = TRUE)
	`

	var count int64
	err := r.db.QueryRow(ctx, query, ownerID, since, customOnly).Scan(&count)
	return count, err
}

func scanLink(row pgx.Row) (*domain.Link, error) {
	var link domain.Link
	err := row.Scan(
		&link.ID,
		&link.Key,
		&link.SecretKey,
		&link.TargetURL,
		&link.IsActive,
		&link.IsCustom,
		&link.Clicks,
		&link.OwnerID,
		&link.ExpiresAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally under the default
// backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
