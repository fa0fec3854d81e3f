package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateGenerated, false},
		{StateValidated, false},
		{StateSubmitted, false},
		{StateAccepted, true},
		{StateRejected, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Mutable(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, true},
		{StateGenerated, true},
		{StateValidated, false},
		{StateSubmitted, false},
		{StateAccepted, false},
		{StateRejected, false},
		{StateCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Mutable(); got != tt.expected {
				t.Errorf("State.Mutable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTransmissionMachine_HappyPath(t *testing.T) {
	ctx := context.Background()
	m := NewTransmissionMachine(StateDraft)

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerGenerate, StateGenerated},
		{TriggerRegenerate, StateGenerated},
		{TriggerValidate, StateValidated},
		{TriggerSubmit, StateSubmitted},
		{TriggerAccept, StateAccepted},
	}

	for _, step := range steps {
		if err := m.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("Fire(%s) from %s: %v", step.trigger, m.State(), err)
		}
		if m.State() != step.want {
			t.Fatalf("after %s: state = %s, want %s", step.trigger, m.State(), step.want)
		}
	}
}

func TestTransmissionMachine_RejectPath(t *testing.T) {
	ctx := context.Background()
	m := NewTransmissionMachine(StateSubmitted)

	if err := m.Fire(ctx, TriggerReject); err != nil {
		t.Fatalf("Fire(REJECT): %v", err)
	}
	if m.State() != StateRejected {
		t.Fatalf("state = %s, want REJECTED", m.State())
	}
}

func TestTransmissionMachine_CancelFromNonTerminal(t *testing.T) {
	ctx := context.Background()

	for _, from := range []State{StateDraft, StateGenerated, StateValidated, StateSubmitted} {
		m := NewTransmissionMachine(from)
		if err := m.Fire(ctx, TriggerCancel); err != nil {
			t.Errorf("Cancel from %s: %v", from, err)
		}
		if m.State() != StateCancelled {
			t.Errorf("Cancel from %s: state = %s", from, m.State())
		}
	}
}

func TestTransmissionMachine_InvalidTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		from    State
		trigger Trigger
	}{
		{StateDraft, TriggerSubmit},
		{StateDraft, TriggerValidate},
		{StateGenerated, TriggerSubmit},
		{StateGenerated, TriggerAccept},
		{StateValidated, TriggerGenerate},
		{StateSubmitted, TriggerGenerate},
		{StateAccepted, TriggerCancel},
		{StateRejected, TriggerCancel},
		{StateCancelled, TriggerGenerate},
	}

	for _, tt := range tests {
		m := NewTransmissionMachine(tt.from)
		err := m.Fire(ctx, tt.trigger)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(%s) from %s: err = %v, want ErrInvalidTransition", tt.trigger, tt.from, err)
		}
		if m.State() != tt.from {
			t.Errorf("state changed on invalid transition: %s -> %s", tt.from, m.State())
		}
	}
}

func TestTransmissionMachine_CanFire(t *testing.T) {
	m := NewTransmissionMachine(StateDraft)

	if !m.CanFire(TriggerGenerate) {
		t.Error("CanFire(GENERATE) in DRAFT = false, want true")
	}
	if m.CanFire(TriggerSubmit) {
		t.Error("CanFire(SUBMIT) in DRAFT = true, want false")
	}
	if len(m.PermittedTriggers()) != 2 {
		t.Errorf("PermittedTriggers() = %v, want GENERATE and CANCEL", m.PermittedTriggers())
	}
}

func TestMachine_GuardedTransition(t *testing.T) {
	ctx := context.Background()

	allow := false
	b := NewBuilder()
	b.Configure(StateGenerated).
		PermitIf(TriggerValidate, StateValidated, func(ctx context.Context) bool { return allow })
	m := b.Build(StateGenerated)

	if err := m.Fire(ctx, TriggerValidate); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("err = %v, want ErrGuardFailed", err)
	}

	allow = true
	if err := m.Fire(ctx, TriggerValidate); err != nil {
		t.Fatalf("Fire with passing guard: %v", err)
	}
	if m.State() != StateValidated {
		t.Fatalf("state = %s, want VALIDATED", m.State())
	}
}
