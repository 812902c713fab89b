package entity

import "time"

type Campaign struct {
	CampaignID    int64      `db:"campaign_id" json:"campaign_id"`
	CampaignName  string     `db:"campaign_name" json:"campaign_name"`
	UTMSource     string     `db:"utm_source" json:"utm_source"`
	UTMMedium     string     `db:"utm_medium" json:"utm_medium"`
	UTMCampaign   string     `db:"utm_campaign" json:"utm_campaign"`
	AdKeyword     string     `db:"ad_keyword" json:"ad_keyword"`
	CreativeAsset string     `db:"creative_asset" json:"creative_asset"`
	StartDate     *time.Time `db:"start_date" json:"start_date"`
	AdSpend       float64    `db:"ad_spend" json:"ad_spend"`
}
