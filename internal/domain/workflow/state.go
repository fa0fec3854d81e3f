package workflow

// State represents a transmission status in the filing lifecycle
type State string

const (
	StateDraft     State = "DRAFT"
	StateGenerated State = "GENERATED"
	StateValidated State = "VALIDATED"
	StateSubmitted State = "SUBMITTED"
	StateAccepted  State = "ACCEPTED"
	StateRejected  State = "REJECTED"
	StateCancelled State = "CANCELLED"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateGenerated: true,
	StateValidated: true,
	StateSubmitted: true,
	StateAccepted:  true,
	StateRejected:  true,
	StateCancelled: true,
}

// Accepted, Rejected and Cancelled transmissions are immutable filed
// history; nothing transitions out of them.
var terminalStates = map[State]bool{
	StateAccepted:  true,
	StateRejected:  true,
	StateCancelled: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a known transmission status
func (s State) IsValid() bool {
	return validStates[s]
}

// Mutable returns true if the transmission's slips may still be edited and
// the batch regenerated
func (s State) Mutable() bool {
	return s == StateDraft || s == StateGenerated
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
