package workout

import "github.com/anastasia/starset/internal/models"

// DayType identifies one of the three fixed exercise plans.
type DayType string

const (
	DayA DayType = "A"
	DayB DayType = "B"
	DayC DayType = "C"
)

// Plans maps each day type to its machine names, in workout order.
var Plans = map[DayType][]string{
	DayA: {"Butt Bridge", "Leg Press", "Kickback Left", "Kickback Right", "Abduction Out"},
	DayB: {"Abduction Out", "Kickback Left", "Kickback Right", "Butt Bridge", "Abduction In"},
	DayC: {"Leg Press", "Leg Curl", "Butt Bridge", "Abduction Out", "Leg Extension"},
}

// DayTypeForRotation maps the rotation counter to the active day type
// (period 3: 0→A, 1→B, 2→C).
func DayTypeForRotation(counter int) DayType {
	switch counter % 3 {
	case 0:
		return DayA
	case 1:
		return DayB
	default:
		return DayC
	}
}

// SelectMachinesForDay returns the machines scheduled for the given day, in
// plan order. A plan entry is included only if a machine with that exact
// name exists and is active; machines outside the plan are excluded
// regardless of their active flag or stored order index.
func SelectMachinesForDay(day DayType, machines []models.Machine) []models.Machine {
	var selected []models.Machine
	for _, name := range Plans[day] {
		for _, m := range machines {
			if m.Name == name && m.Active {
				selected = append(selected, m)
				break
			}
		}
	}
	return selected
}
