// Package reports runs the read-only aggregate queries behind the admin
// dashboard. They bypass the ORM and go straight to SQL through sqlx.
package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"careerdesk/internal/config"
	"careerdesk/internal/domain"
)

const defaultTopPackages = 10

// Counts are headline numbers for the back office.
type Counts struct {
	Users            int64 `db:"users"`
	Blogs            int64 `db:"blogs"`
	PublishedBlogs   int64 `db:"published_blogs"`
	ActivePackages   int64 `db:"active_packages"`
	NewMessages      int64 `db:"new_messages"`
	TopicSuggestions int64 `db:"topic_suggestions"`
	PaidPurchases    int64 `db:"paid_purchases"`
	PendingPayments  int64 `db:"pending_payments"`
}

type CurrencyTotal struct {
	Currency     string `db:"currency"`
	RevenueMinor int64  `db:"revenue_minor"`
}

type PackageRevenue struct {
	PackageID    int64  `db:"package_id"`
	PackageName  string `db:"package_name"`
	Currency     string `db:"currency"`
	Quantity     int64  `db:"quantity"`
	RevenueMinor int64  `db:"revenue_minor"`
}

type Dashboard struct {
	Counts    Counts
	Revenue   []CurrencyTotal
	ByPackage []PackageRevenue
}

// Store answers dashboard queries.
type Store struct {
	db *sqlx.DB
}

// New wraps an existing connection pool. driver is the configured database
// driver and only decides the placeholder style.
func New(db *sql.DB, driver string) *Store {
	driverName := "sqlite3"
	if driver == config.DriverPostgres {
		driverName = "pgx"
	}
	return &Store{db: sqlx.NewDb(db, driverName)}
}

const countsQuery = `
SELECT
	(SELECT COUNT(*) FROM users) AS users,
	(SELECT COUNT(*) FROM blogs) AS blogs,
	(SELECT COUNT(*) FROM blogs WHERE published = ?) AS published_blogs,
	(SELECT COUNT(*) FROM packages WHERE active = ?) AS active_packages,
	(SELECT COUNT(*) FROM messages WHERE status = ?) AS new_messages,
	(SELECT COUNT(*) FROM topic_suggestions) AS topic_suggestions,
	(SELECT COUNT(*) FROM purchases WHERE status = ?) AS paid_purchases,
	(SELECT COUNT(*) FROM payments WHERE status IN (?, ?)) AS pending_payments`

const revenueQuery = `
SELECT currency, COALESCE(SUM(total_minor), 0) AS revenue_minor
FROM purchases
WHERE status = ?
GROUP BY currency
ORDER BY currency`

const byPackageQuery = `
SELECT
	i.package_id AS package_id,
	MAX(i.package_name) AS package_name,
	p.currency AS currency,
	SUM(i.quantity) AS quantity,
	SUM(i.unit_price_minor * i.quantity) AS revenue_minor
FROM purchase_items i
JOIN purchases p ON p.id = i.purchase_id
WHERE p.status = ?
GROUP BY i.package_id, p.currency
ORDER BY revenue_minor DESC, package_id ASC
LIMIT ?`

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.db.GetContext(ctx, &counts, s.db.Rebind(countsQuery),
		true, true,
		string(domain.MessageStatusNew),
		string(domain.PurchaseStatusPaid),
		string(domain.PaymentStatusInitiated),
		string(domain.PaymentStatusPending),
	)
	if err != nil {
		return counts, fmt.Errorf("query dashboard counts: %w", err)
	}
	return counts, nil
}

func (s *Store) Revenue(ctx context.Context) ([]CurrencyTotal, error) {
	totals := []CurrencyTotal{}
	if err := s.db.SelectContext(ctx, &totals, s.db.Rebind(revenueQuery), string(domain.PurchaseStatusPaid)); err != nil {
		return nil, fmt.Errorf("query revenue: %w", err)
	}
	return totals, nil
}

func (s *Store) RevenueByPackage(ctx context.Context, limit int) ([]PackageRevenue, error) {
	if limit <= 0 {
		limit = defaultTopPackages
	}
	rows := []PackageRevenue{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(byPackageQuery), string(domain.PurchaseStatusPaid), limit); err != nil {
		return nil, fmt.Errorf("query revenue by package: %w", err)
	}
	return rows, nil
}

func (s *Store) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	byPackage, err := s.RevenueByPackage(ctx, defaultTopPackages)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Counts: counts, Revenue: revenue, ByPackage: byPackage}, nil
}
