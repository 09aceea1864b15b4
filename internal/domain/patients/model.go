package patients

import "time"

// Patient es el titular de los tratamientos. Toda consulta de timeline
// está acotada a un único paciente.
type Patient struct {
	ID   string
	Name string

	CreatedAt time.Time
	UpdatedAt time.Time
}
