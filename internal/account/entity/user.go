package entity

import "time"

// Status is the account lifecycle state. The three booleans of the old
// schema (is_verified / is_approved plus an implicit "rejected") collapse
// into one enumerated state; admin capability stays a separate flag.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Verified reports whether the email address has been proven. Approval and
// rejection are only reachable from verified, so they imply it.
func (s Status) Verified() bool {
	return s == StatusVerified || s == StatusApproved || s == StatusRejected
}

// CanLogin reports whether the account may establish a session.
func (s Status) CanLogin() bool {
	return s == StatusApproved
}

// User represents an account row in the `users` table.
type User struct {
	ID                  int64      `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FirstName           string     `db:"first_name" json:"first_name"`
	LastName            string     `db:"last_name" json:"last_name"`
	Status              Status     `db:"status" json:"status"`
	IsAdmin             bool       `db:"is_admin" json:"is_admin"`
	VerificationToken   *string    `db:"verification_token" json:"-"`
	VerificationExpires *time.Time `db:"verification_expires" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	LastLogin           *time.Time `db:"last_login" json:"last_login"`
}

// Profile is the JSON shape returned to the authenticated user and in
// admin listings. is_verified / is_approved are kept in the response for
// dashboard compatibility and derive from Status.
type Profile struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	IsAdmin    bool       `json:"is_admin"`
	IsVerified bool       `json:"is_verified"`
	IsApproved bool       `json:"is_approved"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.Status.Verified(),
		IsApproved: u.Status == StatusApproved,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}
