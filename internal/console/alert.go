package console

import "time"

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertDanger  AlertKind = "danger"
	AlertWarning AlertKind = "warning"
	AlertInfo    AlertKind = "info"
)

// AlertLifetime is how long a banner stays before the page removes it.
const AlertLifetime = 3 * time.Second

// Alert is a dismissible banner
type Alert struct {
	Kind         AlertKind
	Message      string
	DismissAfter time.Duration
}

func NewAlert(kind AlertKind, message string) *Alert {
	return &Alert{Kind: kind, Message: message, DismissAfter: AlertLifetime}
}
