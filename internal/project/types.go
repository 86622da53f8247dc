package project

import (
	"strings"
	"time"
)

// Service types accepted for a project.
const (
	ServiceArchitectural = "architectural"
	ServiceStructural    = "structural"
	ServiceMEP           = "mep"
)

// Project lifecycle statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Project is a construction project owned by a single user. AssignedTo
// optionally references the engineer working on it.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	ServiceType string    `json:"service_type"`
	City        string    `json:"city"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Status      string    `json:"status"`
	AssignedTo  *string   `json:"assigned_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the fields a caller controls. Ownership and ids are set by
// the service.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(p.City) == "" {
		return ErrInvalidInput
	}
	switch p.ServiceType {
	case ServiceArchitectural, ServiceStructural, ServiceMEP:
	default:
		return ErrInvalidInput
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidInput
	}
	return nil
}
