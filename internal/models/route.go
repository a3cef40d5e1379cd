package models

import (
	"time"
)

// Route categories, one per town served
const (
	CategoryGrecia = "grecia"
	CategorySarchi = "sarchi"
)

// Placeholder images used until an admin uploads real ones
const (
	PlaceholderCardImageURL     = "https://placehold.co/600x400/EEE/31343C?text=Sin+Imagen"
	PlaceholderScheduleImageURL = "https://placehold.co/800x1200/EEE/31343C?text=Sin+Horario"
)

// Route represents a bus route shown on the public site
type Route struct {
	ID               string    `json:"id"`
	Nombre           string    `json:"nombre"`
	Especificacion   string    `json:"especificacion"`
	Category         string    `json:"category"`
	DuracionMin      float64   `json:"duracionMin"`
	TarifaCRC        float64   `json:"tarifaCRC"`
	ImagenTarjetaURL string    `json:"imagenTarjetaUrl"`
	ImagenHorarioURL string    `json:"imagenHorarioUrl"`
	Activo           bool      `json:"activo"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// GroupedRoutes is the public home page listing: active routes per category
type GroupedRoutes struct {
	Grecia []Route `json:"grecia"`
	Sarchi []Route `json:"sarchi"`
}

// RouteCategories lists every valid category
func RouteCategories() []string {
	return []string{CategoryGrecia, CategorySarchi}
}
