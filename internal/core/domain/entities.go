package domain

import "time"

// RoleID identifies a user role. Values match the roles table.
type RoleID uint

const (
	RoleAdmin    RoleID = 1
	RoleEmployee RoleID = 2
)

// Name returns the catalog name of the role
func (r RoleID) Name() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleEmployee:
		return "EMPLEADO"
	default:
		return ""
	}
}

// StatusID identifies an order status. Values match the order_statuses table.
type StatusID uint

const (
	StatusScheduled  StatusID = 1
	StatusInProgress StatusID = 2
	StatusDone       StatusID = 3
)

// Catalog names as stored and sent on the wire
const (
	StatusNameScheduled  = "AGENDADO"
	StatusNameInProgress = "EN PROCESO"
	StatusNameDone       = "REALIZADO"
)

// Valid reports whether s is one of the known statuses
func (s StatusID) Valid() bool {
	return s >= StatusScheduled && s <= StatusDone
}

// Name returns the catalog name of the status
func (s StatusID) Name() string {
	switch s {
	case StatusScheduled:
		return StatusNameScheduled
	case StatusInProgress:
		return StatusNameInProgress
	case StatusDone:
		return StatusNameDone
	default:
		return ""
	}
}

// Next returns the only status s may move to. ok is false for done and unknown statuses.
func (s StatusID) Next() (next StatusID, ok bool) {
	switch s {
	case StatusScheduled:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusDone, true
	default:
		return 0, false
	}
}

// CanTransition reports whether from -> to is a single forward step
func CanTransition(from, to StatusID) bool {
	next, ok := from.Next()
	return ok && next == to
}

// User represents a user in the domain layer
type User struct {
	ID        uint
	Email     string
	Password  string // Hashed
	FullName  string
	RoleID    RoleID
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// Session is the identity attached to an authenticated request
type Session struct {
	UserID    uint
	Email     string
	RoleID    RoleID
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the session belongs to an admin
func (s Session) IsAdmin() bool {
	return s.RoleID == RoleAdmin
}

// StatusSummary counts orders per status
type StatusSummary struct {
	Scheduled  int64 `json:"agendado"`
	InProgress int64 `json:"enProceso"`
	Done       int64 `json:"realizado"`
	Total      int64 `json:"total"`
}
