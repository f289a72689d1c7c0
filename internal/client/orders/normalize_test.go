package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_StatusAndCode(t *testing.T) {
	folio := 7
	o := Normalize(RawOrder{ID: 1, Folio: &folio, Estado: "EN PROCESO"}, time.UTC)

	assert.Equal(t, "7", o.Code)
	assert.Equal(t, StatusProgress, o.Status)
}

func TestNormalize_StatusMapping(t *testing.T) {
	cases := map[string]Status{
		"AGENDADO":   StatusPending,
		"EN PROCESO": StatusProgress,
		"REALIZADO":  StatusDone,
		"CANCELADO":  StatusPending,
		"":           StatusPending,
		"realizado":  StatusPending,
	}

	for estado, want := range cases {
		assert.Equal(t, want, Normalize(RawOrder{Estado: estado}, time.UTC).Status, estado)
	}

	_, known := StatusFromServer("CANCELADO")
	assert.False(t, known)
}

func TestNormalize_Placeholders(t *testing.T) {
	o := Normalize(RawOrder{ID: 3}, time.UTC)

	assert.Equal(t, NoCode, o.Code)
	assert.Equal(t, NoClient, o.ClientName)
	assert.Equal(t, NoRegion, o.CompanyName)
	assert.Equal(t, NoAddress, o.Address)
	assert.Equal(t, NoDescription, o.Description)
	assert.Equal(t, NotRecorded, o.ScheduledAt)
	assert.Equal(t, NotRecorded, o.FinishedAt)
	assert.Empty(t, o.CreatedAt)
	assert.Zero(t, o.Hours)
}

func TestNormalize_FullRecord(t *testing.T) {
	payload := `{
		"id": 12,
		"folio": 1012,
		"idEstado": 3,
		"estado": "REALIZADO",
		"cliente": "Hotel Centro",
		"region": {"id": 2, "nombre": "Norte"},
		"direccion": "Av. Juárez 120",
		"observaciones": "Llevar escalera",
		"horasTrabajo": 2.5,
		"fechaRegistro": "2025-03-01T23:30:00-06:00",
		"fechaAgendada": "2025-03-02T08:00:00Z",
		"fechaFinalizado": "2025-03-02T10:15:00Z"
	}`

	var raw RawOrder
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	mx := time.FixedZone("CST", -6*3600)
	o := Normalize(raw, mx)

	assert.Equal(t, uint(12), o.ID)
	assert.Equal(t, "1012", o.Code)
	assert.Equal(t, StatusDone, o.Status)
	assert.Equal(t, "2025-03-02", o.CreatedAt)
	assert.Equal(t, "Hotel Centro", o.ClientName)
	assert.Equal(t, "Norte", o.CompanyName)
	assert.Equal(t, "Av. Juárez 120", o.Address)
	assert.Equal(t, "Llevar escalera", o.Description)
	assert.Equal(t, 2.5, o.Hours)
	assert.Equal(t, "02/03/2025 02:00", o.ScheduledAt)
	assert.Equal(t, "02/03/2025 04:15", o.FinishedAt)
}

func TestNormalize_UnparseableDates(t *testing.T) {
	o := Normalize(RawOrder{FechaRegistro: "ayer", FechaAgendada: "pronto"}, time.UTC)

	assert.Empty(t, o.CreatedAt)
	assert.Equal(t, NotRecorded, o.ScheduledAt)
}

func TestNormalize_ZeroFolio(t *testing.T) {
	zero := 0
	assert.Equal(t, "0", Normalize(RawOrder{Folio: &zero}, time.UTC).Code)
}
