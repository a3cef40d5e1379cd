package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Route, alert and driver inputs use pointer fields so a partial update can
// tell an absent field from a zero value. Rules in `validate` apply to every
// present field; `create` adds what a new record must carry.

// RouteInput is a create or update request for a route
type RouteInput struct {
	Nombre           *string  `json:"nombre" validate:"omitempty,min=1" create:"required"`
	Especificacion   *string  `json:"especificacion"`
	Category         *string  `json:"category" validate:"omitempty,oneof=grecia sarchi" create:"required"`
	DuracionMin      *float64 `json:"duracionMin" validate:"omitempty,min=0" create:"required"`
	TarifaCRC        *float64 `json:"tarifaCRC" validate:"omitempty,min=0" create:"required"`
	ImagenTarjetaURL *string  `json:"imagenTarjetaUrl"`
	ImagenHorarioURL *string  `json:"imagenHorarioUrl"`
	Activo           *bool    `json:"activo"`
}

// AlertInput is a create or update request for an alert
type AlertInput struct {
	Titulo     *string `json:"titulo" validate:"omitempty,min=1" create:"required"`
	Mensaje    *string `json:"mensaje"`
	Severidad  *string `json:"severidad" validate:"omitempty,oneof=info warning critical"`
	IniciaISO  *string `json:"iniciaISO" validate:"omitempty,rfc3339"`
	TerminaISO *string `json:"terminaISO" validate:"omitempty,rfc3339"`
	Activo     *bool   `json:"activo"`
}

// DriverInput is a create or update request for a driver. RouteID is never
// checked against the routes collection.
type DriverInput struct {
	Nombre   *string        `json:"nombre" validate:"omitempty,min=1" create:"required"`
	BusPlate *string        `json:"busPlate"`
	RouteID  NullableString `json:"routeId"`
	Status   *string        `json:"status"`
	Comment  *string        `json:"comment"`
}

// Mode selects the rule set applied to an input
type Mode int

const (
	// ModeUpdate validates only the fields present
	ModeUpdate Mode = iota
	// ModeCreate also requires the fields a new record needs
	ModeCreate
)

// Operation names the write a mode performs
func (m Mode) Operation() string {
	if m == ModeCreate {
		return "create"
	}
	return "update"
}

// RecordValidator runs the struct tag rules of the record inputs
type RecordValidator struct {
	rules    *validator.Validate
	required *validator.Validate
}

// NewRecordValidator creates a validator reporting json field names
func NewRecordValidator() *RecordValidator {
	rules := validator.New()
	rules.RegisterTagNameFunc(jsonFieldName)
	// an empty value clears the bound
	_ = rules.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := time.Parse(time.RFC3339, value)
		return err == nil
	})

	required := validator.New()
	required.SetTagName("create")
	required.RegisterTagNameFunc(jsonFieldName)

	return &RecordValidator{rules: rules, required: required}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// ParseRoute coerces raw values and validates them. The image URL fields
// also accept the currentImagen* names the admin form posts.
func (v *RecordValidator) ParseRoute(in Input, mode Mode) (RouteInput, error) {
	errs := FieldErrors{}
	route := RouteInput{
		Nombre:           in.String(errs, "nombre"),
		Especificacion:   in.String(errs, "especificacion"),
		Category:         in.String(errs, "category"),
		DuracionMin:      in.Number(errs, "duracionMin"),
		TarifaCRC:        in.Number(errs, "tarifaCRC"),
		ImagenTarjetaURL: in.String(errs, "imagenTarjetaUrl", "currentImagenTarjetaUrl"),
		ImagenHorarioURL: in.String(errs, "imagenHorarioUrl", "currentImagenHorarioUrl"),
		Activo:           in.Bool(errs, "activo"),
	}
	if route.Category != nil {
		lower := strings.ToLower(*route.Category)
		route.Category = &lower
	}

	errs.Merge(v.check(&route, mode, errs))
	return route, errs.Err()
}

// ParseAlert coerces raw values and validates them
func (v *RecordValidator) ParseAlert(in Input, mode Mode) (AlertInput, error) {
	errs := FieldErrors{}
	alert := AlertInput{
		Titulo:     in.String(errs, "titulo"),
		Mensaje:    in.String(errs, "mensaje"),
		Severidad:  in.String(errs, "severidad"),
		IniciaISO:  in.String(errs, "iniciaISO"),
		TerminaISO: in.String(errs, "terminaISO"),
		Activo:     in.Bool(errs, "activo"),
	}
	if alert.Severidad != nil {
		lower := strings.ToLower(*alert.Severidad)
		alert.Severidad = &lower
	}

	errs.Merge(v.check(&alert, mode, errs))
	return alert, errs.Err()
}

// ParseDriver coerces raw values and validates them
func (v *RecordValidator) ParseDriver(in Input, mode Mode) (DriverInput, error) {
	errs := FieldErrors{}
	driver := DriverInput{
		Nombre:   in.String(errs, "nombre"),
		BusPlate: in.String(errs, "busPlate"),
		RouteID:  in.Nullable(errs, "routeId"),
		Status:   in.String(errs, "status"),
		Comment:  in.String(errs, "comment"),
	}

	errs.Merge(v.check(&driver, mode, errs))
	return driver, errs.Err()
}

// check runs the tag rules, skipping fields that already failed coercion
func (v *RecordValidator) check(input any, mode Mode, coerced FieldErrors) FieldErrors {
	errs := FieldErrors{}
	collect := func(err error) {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return
		}
		for _, fe := range verrs {
			if _, failed := coerced[fe.Field()]; failed {
				continue
			}
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			errs.Add(fe.Field(), message(fe))
		}
	}

	if mode == ModeCreate {
		collect(v.required.Struct(input))
	}
	collect(v.rules.Struct(input))
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "rfc3339":
		return "must be an RFC3339 timestamp"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Document returns the present fields as a storable field map
func (r RouteInput) Document() map[string]any {
	doc := map[string]any{}
	setString(doc, "nombre", r.Nombre)
	setString(doc, "especificacion", r.Especificacion)
	setString(doc, "category", r.Category)
	setNumber(doc, "duracionMin", r.DuracionMin)
	setNumber(doc, "tarifaCRC", r.TarifaCRC)
	setString(doc, "imagenTarjetaUrl", r.ImagenTarjetaURL)
	setString(doc, "imagenHorarioUrl", r.ImagenHorarioURL)
	setBool(doc, "activo", r.Activo)
	return doc
}

// Document returns the present fields as a storable field map
func (a AlertInput) Document() map[string]any {
	doc := map[string]any{}
	setString(doc, "titulo", a.Titulo)
	setString(doc, "mensaje", a.Mensaje)
	setString(doc, "severidad", a.Severidad)
	setString(doc, "iniciaISO", a.IniciaISO)
	setString(doc, "terminaISO", a.TerminaISO)
	setBool(doc, "activo", a.Activo)
	return doc
}

// Document returns the present fields as a storable field map
func (d DriverInput) Document() map[string]any {
	doc := map[string]any{}
	setString(doc, "nombre", d.Nombre)
	setString(doc, "busPlate", d.BusPlate)
	if d.RouteID.Set {
		if d.RouteID.Value == nil {
			doc["routeId"] = nil
		} else {
			doc["routeId"] = *d.RouteID.Value
		}
	}
	setString(doc, "status", d.Status)
	setString(doc, "comment", d.Comment)
	return doc
}

func setString(doc map[string]any, key string, v *string) {
	if v != nil {
		doc[key] = *v
	}
}

func setNumber(doc map[string]any, key string, v *float64) {
	if v != nil {
		doc[key] = *v
	}
}

func setBool(doc map[string]any, key string, v *bool) {
	if v != nil {
		doc[key] = *v
	}
}
