package rollout

const (
	PhaseInitial  = "initial"
	PhasePilot    = "pilot"
	PhaseExpanded = "expanded"
	PhaseMajority = "majority"
	PhaseComplete = "complete"
	PhaseRollback = "rollback"
)

// PhaseSpec is a named rollout step.
type PhaseSpec struct {
	Name       string `json:"name"`
	Percentage int    `json:"rollout_percentage"`
}

// Ladder is the fixed advancement order. Rollback sits outside it.
var Ladder = []PhaseSpec{
	{Name: PhaseInitial, Percentage: 10},
	{Name: PhasePilot, Percentage: 25},
	{Name: PhaseExpanded, Percentage: 50},
	{Name: PhaseMajority, Percentage: 75},
	{Name: PhaseComplete, Percentage: 100},
}

var rollbackSpec = PhaseSpec{Name: PhaseRollback, Percentage: 0}

// Lookup returns the spec for a ladder phase or rollback.
func Lookup(name string) (PhaseSpec, bool) {
	if name == PhaseRollback {
		return rollbackSpec, true
	}
	for _, p := range Ladder {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseSpec{}, false
}

// Next returns the phase after name. An empty name or rollback restarts the
// ladder; the last ladder phase has no successor.
func Next(name string) (PhaseSpec, bool) {
	if name == "" || name == PhaseRollback {
		return Ladder[0], true
	}
	for i, p := range Ladder {
		if p.Name == name {
			if i+1 < len(Ladder) {
				return Ladder[i+1], true
			}
			return PhaseSpec{}, false
		}
	}
	return PhaseSpec{}, false
}

func IsTerminal(name string) bool {
	return name == Ladder[len(Ladder)-1].Name
}
