package workout

import (
	"github.com/anastasia/starset/internal/models"
	"github.com/google/uuid"
)

// DefaultMachines returns the seed roster with fresh identities. Multipliers
// and starting weights match the plans in rotation.go.
func DefaultMachines() []models.Machine {
	defs := []struct {
		name       string
		multiplier float64
		lastWeight int
	}{
		{"Leg Curl", 1.10, 50},
		{"Leg Extension", 1.00, 50},
		{"Abduction Out", 1.25, 100},
		{"Abduction In", 0.95, 100},
		{"Butt Bridge", 1.60, 100},
		{"Kickback Left", 1.20, 75},
		{"Kickback Right", 1.20, 75},
		{"Leg Press", 1.40, 90},
	}

	machines := make([]models.Machine, 0, len(defs))
	for i, d := range defs {
		machines = append(machines, models.Machine{
			ID:         uuid.New(),
			Name:       d.name,
			Multiplier: d.multiplier,
			LastWeight: d.lastWeight,
			OrderIndex: i,
			Active:     true,
		})
	}
	return machines
}
