package facilities

import "time"

// Facility es el centro de origen de una prescripción (opcional).
type Facility struct {
	ID         string
	Name       string
	ExternalID string // único cuando viene informado

	CreatedAt time.Time
}
