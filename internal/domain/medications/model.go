package medications

import "time"

// Medication es un fármaco por nombre. Una vez referenciado por una
// prescripción no se puede modificar ni borrar.
type Medication struct {
	ID   string
	Name string

	CreatedAt time.Time
}
