package entity

import "time"

type Touchpoint struct {
	TouchpointID     int64      `db:"touchpoint_id" json:"touchpoint_id"`
	CustomerID       int64      `db:"customer_id" json:"customer_id"`
	TouchpointType   string     `db:"touchpoint_type" json:"touchpoint_type"`
	TouchpointDetail string     `db:"touchpoint_detail" json:"touchpoint_detail"`
	InteractionDate  *time.Time `db:"interaction_date" json:"interaction_date"`
	DeviceType       string     `db:"device_type" json:"device_type"`
}
