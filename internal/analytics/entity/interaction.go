package entity

import "time"

type Interaction struct {
	InteractionID    int64      `db:"interaction_id" json:"interaction_id"`
	CustomerID       int64      `db:"customer_id" json:"customer_id"`
	CampaignID       int64      `db:"campaign_id" json:"campaign_id"`
	TouchpointID     int64      `db:"touchpoint_id" json:"touchpoint_id"`
	InteractionType  string     `db:"interaction_type" json:"interaction_type"`
	InteractionValue int        `db:"interaction_value" json:"interaction_value"`
	InteractionDate  *time.Time `db:"interaction_date" json:"interaction_date"`
}
