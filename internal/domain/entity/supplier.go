package entity

import "time"

// Supplier proveedor de la organización. Solo lectura para el flujo de recepción.
type Supplier struct {
	ID             string
	OrganizationID string
	Name           string
	ContactName    string
	Phone          string
	Email          string
	CreatedAt      time.Time
}
