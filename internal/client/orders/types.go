// Package orders is the client side of the order workflow: it fetches the
// employee's orders, normalizes them for display, filters them locally and
// requests forward-only status changes.
package orders

import (
	"fmt"
	"strings"
)

// Status is the client view of an order status
type Status string

const (
	StatusPending  Status = "pending"
	StatusProgress Status = "progress"
	StatusDone     Status = "done"
)

// Code returns the integer the server uses for the status, 0 when unknown
func (s Status) Code() int {
	switch s {
	case StatusPending:
		return 1
	case StatusProgress:
		return 2
	case StatusDone:
		return 3
	default:
		return 0
	}
}

// Next returns the only status an order may move to. Done is terminal.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusProgress, true
	case StatusProgress:
		return StatusDone, true
	default:
		return "", false
	}
}

// CanTransition reports whether from -> to is one of the two forward steps
func CanTransition(from, to Status) bool {
	next, ok := from.Next()
	return ok && next == to
}

// Label is the human readable status
func (s Status) Label() string {
	switch s {
	case StatusProgress:
		return "En progreso"
	case StatusDone:
		return "Completada"
	default:
		return "Pendiente"
	}
}

// Color is the chip color shown next to the status
func (s Status) Color() string {
	switch s {
	case StatusProgress:
		return "tertiary"
	case StatusDone:
		return "success"
	default:
		return "warning"
	}
}

// ParseStatus accepts the view names used on the command line. Empty means no filter.
func ParseStatus(v string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case "", StatusPending, StatusProgress, StatusDone:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status %q (want pending, progress or done)", v)
	}
}

// Order is a normalized order ready for display
type Order struct {
	ID          uint
	Code        string
	Status      Status
	CreatedAt   string
	ClientName  string
	CompanyName string
	Address     string
	Description string
	Hours       float64
	ScheduledAt string
	FinishedAt  string
}

// RawRegion is the nested region of a server record
type RawRegion struct {
	ID     uint   `json:"id"`
	Nombre string `json:"nombre"`
}

// RawOrder is an order as the server sends it. Every field but id may be absent.
type RawOrder struct {
	ID              uint       `json:"id"`
	Folio           *int       `json:"folio"`
	IDEstado        int        `json:"idEstado"`
	Estado          string     `json:"estado"`
	Cliente         string     `json:"cliente"`
	Region          *RawRegion `json:"region"`
	Direccion       string     `json:"direccion"`
	Observaciones   string     `json:"observaciones"`
	HorasTrabajo    *float64   `json:"horasTrabajo"`
	FechaRegistro   string     `json:"fechaRegistro"`
	FechaAgendada   string     `json:"fechaAgendada"`
	FechaFinalizado string     `json:"fechaFinalizado"`
}
