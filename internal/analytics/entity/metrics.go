package entity

import "time"

type SalesMetric struct {
	SaleID          int64      `db:"sale_id" json:"sale_id"`
	CustomerID      int64      `db:"customer_id" json:"customer_id"`
	CampaignID      int64      `db:"campaign_id" json:"campaign_id"`
	ConversionStage string     `db:"conversion_stage" json:"conversion_stage"`
	DealSize        float64    `db:"deal_size" json:"deal_size"`
	SaleDate        *time.Time `db:"sale_date" json:"sale_date"`
	Won             bool       `db:"won" json:"won"`
}

type FinancialMetric struct {
	FinancialID int64   `db:"financial_id" json:"financial_id"`
	CustomerID  int64   `db:"customer_id" json:"customer_id"`
	CampaignID  int64   `db:"campaign_id" json:"campaign_id"`
	Revenue     float64 `db:"revenue" json:"revenue"`
	CAC         float64 `db:"cac" json:"cac"`
	CLTV        float64 `db:"cltv" json:"cltv"`
	CPC         float64 `db:"cpc" json:"cpc"`
	CPCV        float64 `db:"cpcv" json:"cpcv"`
	ACV         float64 `db:"acv" json:"acv"`
}

// DashboardStats is the aggregate block shown on the dashboard landing
// page.
type DashboardStats struct {
	TotalCustomers    int64   `db:"total_customers" json:"total_customers"`
	TotalCampaigns    int64   `db:"total_campaigns" json:"total_campaigns"`
	TotalRevenue      float64 `db:"total_revenue" json:"total_revenue"`
	TotalInteractions int64   `db:"total_interactions" json:"total_interactions"`
	RecentCustomers   int64   `db:"recent_customers" json:"recent_customers"`
}
