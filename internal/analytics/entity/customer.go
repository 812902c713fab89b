package entity

import "time"

// Customer is a marketing contact; the fact tables below all hang off it.
type Customer struct {
	CustomerID int64      `db:"customer_id" json:"customer_id"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Email      string     `db:"email" json:"email"`
	DeviceType string     `db:"device_type" json:"device_type"`
	CreatedAt  *time.Time `db:"created_at" json:"created_at"`
}
