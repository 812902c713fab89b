package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pssiii/marketing-backend/internal/analytics/entity"
)

var ErrNotFound = errors.New("not found")

// AnalyticsRepo provides read access to the marketing fact tables. Rows
// are loaded by an external import pipeline; this repo never mutates
// beyond schema creation.
type AnalyticsRepo struct {
	db *sqlx.DB
}

func NewAnalyticsRepo(db *sqlx.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// EnsureTables creates the reference and fact tables if not exist
// (idempotent).
func (r *AnalyticsRepo) EnsureTables(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS customers (
  customer_id BIGSERIAL PRIMARY KEY,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  device_type TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS campaigns (
  campaign_id BIGSERIAL PRIMARY KEY,
  campaign_name TEXT NOT NULL DEFAULT '',
  utm_source TEXT NOT NULL DEFAULT '',
  utm_medium TEXT NOT NULL DEFAULT '',
  utm_campaign TEXT NOT NULL DEFAULT '',
  ad_keyword TEXT NOT NULL DEFAULT '',
  creative_asset TEXT NOT NULL DEFAULT '',
  start_date TIMESTAMPTZ,
  ad_spend DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS touchpoints (
  touchpoint_id BIGSERIAL PRIMARY KEY,
  customer_id BIGINT NOT NULL REFERENCES customers(customer_id),
  touchpoint_type TEXT NOT NULL DEFAULT '',
  touchpoint_detail TEXT NOT NULL DEFAULT '',
  interaction_date TIMESTAMPTZ,
  device_type TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS interactions (
  interaction_id BIGSERIAL PRIMARY KEY,
  customer_id BIGINT NOT NULL REFERENCES customers(customer_id),
  campaign_id BIGINT NOT NULL REFERENCES campaigns(campaign_id),
  touchpoint_id BIGINT NOT NULL REFERENCES touchpoints(touchpoint_id),
  interaction_type TEXT NOT NULL DEFAULT '',
  interaction_value INT NOT NULL DEFAULT 0,
  interaction_date TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS sales_metrics (
  sale_id BIGSERIAL PRIMARY KEY,
  customer_id BIGINT NOT NULL REFERENCES customers(customer_id),
  campaign_id BIGINT NOT NULL REFERENCES campaigns(campaign_id),
  conversion_stage TEXT NOT NULL DEFAULT '',
  deal_size DOUBLE PRECISION NOT NULL DEFAULT 0,
  sale_date TIMESTAMPTZ,
  won BOOLEAN NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS financial_metrics (
  financial_id BIGSERIAL PRIMARY KEY,
  customer_id BIGINT NOT NULL REFERENCES customers(customer_id),
  campaign_id BIGINT NOT NULL REFERENCES campaigns(campaign_id),
  revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
  cac DOUBLE PRECISION NOT NULL DEFAULT 0,
  cltv DOUBLE PRECISION NOT NULL DEFAULT 0,
  cpc DOUBLE PRECISION NOT NULL DEFAULT 0,
  cpcv DOUBLE PRECISION NOT NULL DEFAULT 0,
  acv DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_touchpoints_customer ON touchpoints(customer_id);
CREATE INDEX IF NOT EXISTS idx_interactions_customer ON interactions(customer_id);
CREATE INDEX IF NOT EXISTS idx_sales_metrics_customer ON sales_metrics(customer_id);
CREATE INDEX IF NOT EXISTS idx_financial_metrics_customer ON financial_metrics(customer_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// ListCustomers returns one page of customers plus the total matching
// row count. A non-empty search matches name and email case-insensitively.
func (r *AnalyticsRepo) ListCustomers(ctx context.Context, limit, offset int, search string) ([]*entity.Customer, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM customers`+where, args...); err != nil {
		return nil, 0, err
	}

	q := `SELECT customer_id, first_name, last_name, email, device_type, created_at
		FROM customers` + where + ` ORDER BY customer_id`
	if search != "" {
		q += ` LIMIT $2 OFFSET $3`
	} else {
		q += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	customers := []*entity.Customer{}
	if err := r.db.SelectContext(ctx, &customers, q, args...); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// GetCustomer fetches a single customer row.
func (r *AnalyticsRepo) GetCustomer(ctx context.Context, id int64) (*entity.Customer, error) {
	var c entity.Customer
	const q = `SELECT customer_id, first_name, last_name, email, device_type, created_at
		FROM customers WHERE customer_id=$1`
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *AnalyticsRepo) CustomerTouchpoints(ctx context.Context, customerID int64, limit int) ([]*entity.Touchpoint, error) {
	const q = `SELECT touchpoint_id, customer_id, touchpoint_type, touchpoint_detail, interaction_date, device_type
		FROM touchpoints WHERE customer_id=$1 ORDER BY touchpoint_id LIMIT $2`
	rows := []*entity.Touchpoint{}
	if err := r.db.SelectContext(ctx, &rows, q, customerID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AnalyticsRepo) CustomerSalesMetrics(ctx context.Context, customerID int64, limit int) ([]*entity.SalesMetric, error) {
	const q = `SELECT sale_id, customer_id, campaign_id, conversion_stage, deal_size, sale_date, won
		FROM sales_metrics WHERE customer_id=$1 ORDER BY sale_id LIMIT $2`
	rows := []*entity.SalesMetric{}
	if err := r.db.SelectContext(ctx, &rows, q, customerID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AnalyticsRepo) CustomerFinancialMetrics(ctx context.Context, customerID int64, limit int) ([]*entity.FinancialMetric, error) {
	const q = `SELECT financial_id, customer_id, campaign_id, revenue, cac, cltv, cpc, cpcv, acv
		FROM financial_metrics WHERE customer_id=$1 ORDER BY financial_id LIMIT $2`
	rows := []*entity.FinancialMetric{}
	if err := r.db.SelectContext(ctx, &rows, q, customerID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AnalyticsRepo) ListCampaigns(ctx context.Context) ([]*entity.Campaign, error) {
	const q = `SELECT campaign_id, campaign_name, utm_source, utm_medium, utm_campaign, ad_keyword, creative_asset, start_date, ad_spend
		FROM campaigns ORDER BY campaign_id`
	rows := []*entity.Campaign{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// DashboardStats computes the landing-page aggregates in one round trip.
func (r *AnalyticsRepo) DashboardStats(ctx context.Context, since time.Time) (*entity.DashboardStats, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM customers) AS total_customers,
		(SELECT COUNT(*) FROM campaigns) AS total_campaigns,
		(SELECT COALESCE(SUM(revenue), 0) FROM financial_metrics) AS total_revenue,
		(SELECT COUNT(*) FROM interactions) AS total_interactions,
		(SELECT COUNT(*) FROM customers WHERE created_at >= $1) AS recent_customers`
	var stats entity.DashboardStats
	if err := r.db.GetContext(ctx, &stats, q, since); err != nil {
		return nil, err
	}
	return &stats, nil
}
