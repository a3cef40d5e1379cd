package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %T", err)
	return errs
}

func TestParseRoute_CreateFromForm(t *testing.T) {
	v := NewRecordValidator()

	route, err := v.ParseRoute(Input{
		"nombre":      "Grecia Centro",
		"category":    "Grecia",
		"duracionMin": "35",
		"tarifaCRC":   "520.5",
		"activo":      "on",
	}, ModeCreate)
	require.NoError(t, err)

	assert.Equal(t, "Grecia Centro", *route.Nombre)
	assert.Equal(t, "grecia", *route.Category)
	assert.Equal(t, 35.0, *route.DuracionMin)
	assert.Equal(t, 520.5, *route.TarifaCRC)
	assert.True(t, *route.Activo)
	assert.Nil(t, route.Especificacion)
}

func TestParseRoute_CreateMissingFields(t *testing.T) {
	v := NewRecordValidator()

	_, err := v.ParseRoute(Input{"especificacion": "Por calle vieja"}, ModeCreate)
	errs := fieldErrors(t, err)

	for _, field := range []string{"nombre", "category", "duracionMin", "tarifaCRC"} {
		assert.Equal(t, []string{"is required"}, errs[field], field)
	}
	assert.NotContains(t, errs, "especificacion")
}

func TestParseRoute_Rules(t *testing.T) {
	v := NewRecordValidator()

	tests := []struct {
		name    string
		input   Input
		field   string
		message string
	}{
		{"bad category", Input{"category": "alajuela"}, "category", "must be one of: grecia, sarchi"},
		{"negative fare", Input{"tarifaCRC": -1.0}, "tarifaCRC", "must be greater than or equal to 0"},
		{"non numeric duration", Input{"duracionMin": "media hora"}, "duracionMin", "must be a number"},
		{"infinite fare", Input{"tarifaCRC": "Infinity"}, "tarifaCRC", "must be a number"},
		{"signed inf duration", Input{"duracionMin": "+Inf"}, "duracionMin", "must be a number"},
		{"nan fare", Input{"tarifaCRC": "NaN"}, "tarifaCRC", "must be a number"},
		{"infinite float fare", Input{"tarifaCRC": math.Inf(1)}, "tarifaCRC", "must be a number"},
		{"bad activo", Input{"activo": "maybe"}, "activo", "must be a boolean"},
		{"empty nombre", Input{"nombre": ""}, "nombre", "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ParseRoute(tt.input, ModeUpdate)
			errs := fieldErrors(t, err)
			assert.Equal(t, []string{tt.message}, errs[tt.field])
		})
	}
}

func TestParseRoute_UpdateIsPartial(t *testing.T) {
	v := NewRecordValidator()

	route, err := v.ParseRoute(Input{"tarifaCRC": 600.0}, ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tarifaCRC": 600.0}, route.Document())
}

func TestParseRoute_CurrentImageAliases(t *testing.T) {
	v := NewRecordValidator()

	route, err := v.ParseRoute(Input{
		"currentImagenTarjetaUrl": "/uploads/cards/1-a.png",
		"imagenHorarioUrl":        "/uploads/schedules/2-b.png",
	}, ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cards/1-a.png", *route.ImagenTarjetaURL)
	assert.Equal(t, "/uploads/schedules/2-b.png", *route.ImagenHorarioURL)
}

func TestParseAlert(t *testing.T) {
	v := NewRecordValidator()

	alert, err := v.ParseAlert(Input{
		"titulo":     "Desvío",
		"severidad":  "WARNING",
		"iniciaISO":  "2024-01-01T00:00:00Z",
		"terminaISO": "2024-01-02T00:00:00-06:00",
	}, ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, "warning", *alert.Severidad)

	_, err = v.ParseAlert(Input{"titulo": "x", "severidad": "urgent", "iniciaISO": "mañana"}, ModeCreate)
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{"must be one of: info, warning, critical"}, errs["severidad"])
	assert.Equal(t, []string{"must be an RFC3339 timestamp"}, errs["iniciaISO"])

	_, err = v.ParseAlert(Input{}, ModeCreate)
	errs = fieldErrors(t, err)
	assert.Equal(t, []string{"is required"}, errs["titulo"])
}

func TestParseAlert_InvertedWindowAccepted(t *testing.T) {
	v := NewRecordValidator()

	_, err := v.ParseAlert(Input{
		"titulo":     "Cierre",
		"iniciaISO":  "2024-01-02T00:00:00Z",
		"terminaISO": "2024-01-01T00:00:00Z",
	}, ModeCreate)
	assert.NoError(t, err)
}

func TestParseDriver_RouteID(t *testing.T) {
	v := NewRecordValidator()

	driver, err := v.ParseDriver(Input{"nombre": "Ana", "routeId": nil}, ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nombre": "Ana", "routeId": nil}, driver.Document())

	driver, err = v.ParseDriver(Input{"routeId": "no-such-route"}, ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"routeId": "no-such-route"}, driver.Document())

	driver, err = v.ParseDriver(Input{"comment": "turno tarde"}, ModeUpdate)
	require.NoError(t, err)
	assert.NotContains(t, driver.Document(), "routeId")

	_, err = v.ParseDriver(Input{"nombre": "Ana", "routeId": 12.0}, ModeCreate)
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{"must be a string or null"}, errs["routeId"])
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{}
	assert.NoError(t, errs.Err())

	errs.Add("tarifaCRC", "must be a number")
	errs.Add("nombre", "is required")
	assert.Equal(t, "validation failed: nombre: is required; tarifaCRC: must be a number", errs.Error())
}
