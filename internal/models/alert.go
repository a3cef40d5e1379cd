package models

import (
	"time"
)

// Alert severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a service notice shown to riders during its active window
type Alert struct {
	ID          string    `json:"id"`
	Titulo      string    `json:"titulo"`
	Mensaje     string    `json:"mensaje"`
	Severidad   string    `json:"severidad"`
	IniciaISO   string    `json:"iniciaISO,omitempty"`
	TerminaISO  string    `json:"terminaISO,omitempty"`
	Activo      bool      `json:"activo"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// IsActiveAt reports whether the alert should be shown at now: it must be
// flagged activo and now must fall inside [IniciaISO, TerminaISO]. A missing
// bound leaves that side of the window open; an unparseable bound never matches.
func (a *Alert) IsActiveAt(now time.Time) bool {
	if !a.Activo {
		return false
	}
	if a.IniciaISO != "" {
		start, err := time.Parse(time.RFC3339, a.IniciaISO)
		if err != nil || now.Before(start) {
			return false
		}
	}
	if a.TerminaISO != "" {
		end, err := time.Parse(time.RFC3339, a.TerminaISO)
		if err != nil || now.After(end) {
			return false
		}
	}
	return true
}

// HasInvertedWindow reports whether both bounds are set and the window ends
// before it starts
func (a *Alert) HasInvertedWindow() bool {
	if a.IniciaISO == "" || a.TerminaISO == "" {
		return false
	}
	start, err := time.Parse(time.RFC3339, a.IniciaISO)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, a.TerminaISO)
	if err != nil {
		return false
	}
	return end.Before(start)
}

// AlertSeverities lists every valid severity
func AlertSeverities() []string {
	return []string{SeverityInfo, SeverityWarning, SeverityCritical}
}
