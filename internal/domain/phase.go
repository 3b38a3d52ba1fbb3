package domain

// Phase is a construction stage used to order tasks.
type Phase string

const (
	PhaseUnknown    Phase = ""
	PhaseFoundation Phase = "foundation"
	PhaseFraming    Phase = "framing"
	PhaseRoofing    Phase = "roofing"
	PhaseElectrical Phase = "electrical"
	PhasePlumbing   Phase = "plumbing"
	PhaseHVAC       Phase = "hvac"
	PhaseInsulation Phase = "insulation"
	PhaseDrywall    Phase = "drywall"
	PhaseFlooring   Phase = "flooring"
	PhasePaint      Phase = "paint"
	PhaseFinish     Phase = "finish"
)

// phaseRank orders phases; electrical and plumbing run in parallel.
var phaseRank = map[Phase]int{
	PhaseFoundation: 1,
	PhaseFraming:    2,
	PhaseRoofing:    3,
	PhaseElectrical: 4,
	PhasePlumbing:   4,
	PhaseHVAC:       5,
	PhaseInsulation: 6,
	PhaseDrywall:    7,
	PhaseFlooring:   8,
	PhasePaint:      9,
	PhaseFinish:     10,
}

// Rank returns the position of the phase in the construction sequence.
// Returns 0 for unknown phases.
func (p Phase) Rank() int {
	return phaseRank[p]
}

// IsValid checks if the phase is a known construction stage.
func (p Phase) IsValid() bool {
	return p.Rank() > 0
}

// Precedes returns true if p must finish before other can start.
func (p Phase) Precedes(other Phase) bool {
	return p.IsValid() && other.IsValid() && p.Rank() < other.Rank()
}
