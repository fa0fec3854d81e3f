package workflow

// NewTransmissionMachine builds the filing lifecycle machine for a
// transmission currently in the given status:
//
//	Draft -> Generated -> Validated -> Submitted -> Accepted | Rejected
//
// Cancel is reachable from every non-terminal status. Regeneration keeps a
// Generated transmission in Generated; slips are only editable while the
// status is Mutable.
func NewTransmissionMachine(current State) StateMachine {
	b := NewBuilder()

	b.Configure(StateDraft).
		Permit(TriggerGenerate, StateGenerated).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateGenerated).
		Permit(TriggerRegenerate, StateGenerated).
		Permit(TriggerValidate, StateValidated).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateValidated).
		Permit(TriggerSubmit, StateSubmitted).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateSubmitted).
		Permit(TriggerAccept, StateAccepted).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancel, StateCancelled)

	return b.Build(current)
}
