package orders

import (
	"strconv"
	"time"
)

// Placeholders shown for missing fields
const (
	NoCode        = "-"
	NoClient      = "Sin cliente"
	NoRegion      = "Sin región"
	NoAddress     = "Sin dirección"
	NoDescription = "Sin observación"
	NotRecorded   = "No registrada"
)

// LocalTimeLayout renders schedule and completion timestamps
const LocalTimeLayout = "02/01/2006 15:04"

// StatusFromServer maps the server status name. ok is false for names it does
// not know, which are treated as pending.
func StatusFromServer(estado string) (status Status, ok bool) {
	switch estado {
	case "AGENDADO":
		return StatusPending, true
	case "EN PROCESO":
		return StatusProgress, true
	case "REALIZADO":
		return StatusDone, true
	default:
		return StatusPending, false
	}
}

// Normalize converts a server record into its display form. Timestamps are
// rendered in loc; a nil loc means time.Local.
func Normalize(raw RawOrder, loc *time.Location) Order {
	if loc == nil {
		loc = time.Local
	}

	status, _ := StatusFromServer(raw.Estado)

	o := Order{
		ID:          raw.ID,
		Code:        NoCode,
		Status:      status,
		ClientName:  orDefault(raw.Cliente, NoClient),
		CompanyName: NoRegion,
		Address:     orDefault(raw.Direccion, NoAddress),
		Description: orDefault(raw.Observaciones, NoDescription),
		ScheduledAt: localTime(raw.FechaAgendada, loc),
		FinishedAt:  localTime(raw.FechaFinalizado, loc),
	}

	if raw.Folio != nil {
		o.Code = strconv.Itoa(*raw.Folio)
	}
	if raw.Region != nil && raw.Region.Nombre != "" {
		o.CompanyName = raw.Region.Nombre
	}
	if raw.HorasTrabajo != nil {
		o.Hours = *raw.HorasTrabajo
	}
	// registration date is the UTC calendar day
	if t, ok := parseTime(raw.FechaRegistro); ok {
		o.CreatedAt = t.UTC().Format("2006-01-02")
	}

	return o
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func localTime(v string, loc *time.Location) string {
	t, ok := parseTime(v)
	if !ok {
		return NotRecorded
	}
	return t.In(loc).Format(LocalTimeLayout)
}

// parseTime accepts RFC 3339 and the zone-less form some databases emit
func parseTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
