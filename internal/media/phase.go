package media

// Phase is one of the five fixed stages of a procedure. Phases group and
// order media for display and reporting; the set is not user-extensible.
type Phase string

const (
	PhasePreparation   Phase = "preparation"
	PhasePortPlacement Phase = "port-placement"
	PhaseExploration   Phase = "exploration"
	PhaseOperative     Phase = "operative"
	PhaseClosure       Phase = "closure"
)

// phaseOrder fixes the display and iteration order of phases.
var phaseOrder = []Phase{
	PhasePreparation,
	PhasePortPlacement,
	PhaseExploration,
	PhaseOperative,
	PhaseClosure,
}

var phaseNames = map[Phase]string{
	PhasePreparation:   "Preparation",
	PhasePortPlacement: "Port Placement",
	PhaseExploration:   "Exploration",
	PhaseOperative:     "Operative",
	PhaseClosure:       "Closure",
}

var phaseDescriptions = map[Phase]string{
	PhasePreparation:   "Patient positioning and instrument setup",
	PhasePortPlacement: "Trocar insertion and port establishment",
	PhaseExploration:   "Initial survey of the operative field",
	PhaseOperative:     "Primary dissection and intervention",
	PhaseClosure:       "Hemostasis check and wound closure",
}

// Phases returns all phases in procedure order. The returned slice is a
// copy and safe for callers to reorder.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Valid reports whether p is one of the five known phases.
func (p Phase) Valid() bool {
	_, ok := phaseNames[p]
	return ok
}

// DisplayName returns the human-readable name for the phase.
func (p Phase) DisplayName() string {
	return phaseNames[p]
}

// Description returns a one-line description of the phase.
func (p Phase) Description() string {
	return phaseDescriptions[p]
}

// Ordinal returns the phase's position in procedure order, or -1 for an
// unknown phase.
func (p Phase) Ordinal() int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}
