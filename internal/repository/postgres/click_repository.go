package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

// dimensionColumns whitelists the columns analytics may group by.
var dimensionColumns = map[domain.Dimension]string{
	domain.DimensionReferrer: "referrer",
	domain.DimensionCountry:  "country",
	domain.DimensionCity:     "city",
	domain.DimensionBrowser:  "browser",
	domain.DimensionOS:       "os",
}

type ClickRepository struct {
	db *pgxpool.Pool
}

func NewClickRepository(db *pgxpool.Pool) *ClickRepository {
	return &ClickRepository{db: db}
}

// IncrementClickAndRecord bumps the link counter and stores the click in one
// transaction. The counter update is a single row-level statement.
func (r *ClickRepository) IncrementClickAndRecord(ctx context.Context, click *domain.ClickEvent) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE id = $1`, click.LinkID)
		if err != nil {
			return fmt.Errorf("increment clicks: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		query := `
			INSERT INTO clicks (link_id, clicked_at, ip_address, user_agent, referrer,
				country, region, city, browser, os, device)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`

		err = tx.QueryRow(ctx, query,
			click.LinkID,
			click.ClickedAt,
			click.IPAddress,
			click.UserAgent,
			click.Referrer,
			click.Country,
			click.Region,
			click.City,
			click.Browser,
			click.OS,
			click.Device,
		).Scan(&click.ID)
		if err != nil {
			return fmt.Errorf("insert click: %w", err)
		}

		return nil
	})
}

func (r *ClickRepository) GetSummary(ctx context.Context, linkID int64) (*domain.LinkAnalytics, error) {
	analytics := &domain.LinkAnalytics{}

	query := `
		SELECT
			l.key,
			l.target_url,
			l.clicks,
			l.created_at,
			MAX(c.clicked_at) AS last_clicked_at,
			COUNT(DISTINCT c.ip_address) AS unique_ips
		FROM links l
		LEFT JOIN clicks c ON l.id = c.link_id
		WHERE l.id = $1
		GROUP BY l.id, l.key, l.target_url, l.clicks, l.created_at
	`

	err := r.db.QueryRow(ctx, query, linkID).Scan(
		&analytics.Key,
		&analytics.TargetURL,
		&analytics.TotalClicks,
		&analytics.CreatedAt,
		&analytics.LastClickedAt,
		&analytics.UniqueIPs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return analytics, nil
}

func (r *ClickRepository) GetClicksByDate(ctx context.Context, linkID int64, days int) ([]domain.ClicksByDate, error) {
	query := `
		SELECT
			DATE(clicked_at) AS date,
			COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1
			AND clicked_at >= NOW() - INTERVAL '1 day' * $2
		GROUP BY DATE(clicked_at)
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, linkID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ClicksByDate
	for rows.Next() {
		var cbd domain.ClicksByDate
		var date time.Time
		if err := rows.Scan(&date, &cbd.Count); err != nil {
			return nil, err
		}
		cbd.Date = date.Format("2006-01-02")
		results = append(results, cbd)
	}

	return results, rows.Err()
}

// GetTopValues returns the most frequent values of one click attribute.
func (r *ClickRepository) GetTopValues(ctx context.Context, linkID int64, dim domain.Dimension, limit int) ([]domain.CountByLabel, error) {
	column, ok := dimensionColumns[dim]
	if !ok {
		return nil, fmt.Errorf("unknown analytics dimension %q", dim)
	}

	query := fmt.Sprintf(`
		SELECT %[1]s AS label, COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1
		GROUP BY %[1]s
		ORDER BY count DESC, label
		LIMIT $2
	`, column)

	rows, err := r.db.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.CountByLabel
	for rows.Next() {
		var c domain.CountByLabel
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, err
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

func (r *ClickRepository) GetDeviceStats(ctx context.Context, linkID int64) (*domain.DeviceStats, error) {
	query := `
		SELECT device, COUNT(*) AS count
		FROM clicks
		WHERE link_id = $1
		GROUP BY device
	`

	rows, err := r.db.Query(ctx, query, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.DeviceStats{}
	for rows.Next() {
		var device string
		var count int64
		if err := rows.Scan(&device, &count); err != nil {
			return nil, err
		}

		switch device {
		case domain.DeviceMobile:
			stats.Mobile += count
		case domain.DeviceDesktop:
			stats.Desktop += count
		case domain.DeviceTablet:
			stats.Tablet += count
		case domain.DeviceBot:
			stats.Bot += count
		default:
			stats.Unknown += count
		}
	}

	return stats, rows.Err()
}

func (r *ClickRepository) GetClickHistory(ctx context.Context, linkID int64, page, pageSize int) (*domain.ClickHistory, error) {
	offset := (page - 1) * pageSize

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clicks WHERE link_id = $1`, linkID).Scan(&total); err != nil {
		return nil, err
	}

	query := `
		SELECT id, link_id, clicked_at, ip_address, user_agent, referrer,
			country, region, city, browser, os, device
		FROM clicks
		WHERE link_id = $1
		ORDER BY clicked_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, linkID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := []domain.ClickEvent{}
	for rows.Next() {
		var click domain.ClickEvent
		err := rows.Scan(
			&click.ID,
			&click.LinkID,
			&click.ClickedAt,
			&click.IPAddress,
			&click.UserAgent,
			&click.Referrer,
			&click.Country,
			&click.Region,
			&click.City,
			&click.Browser,
			&click.OS,
			&click.Device,
		)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return &domain.ClickHistory{
		Clicks:     clicks,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, rows.Err()
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
