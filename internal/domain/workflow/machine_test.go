package workflow

import (
	"errors"
	"testing"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"paid", StatePaid, true},
		{"unknown", State("DRAFT"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_MatchesClaimStatus(t *testing.T) {
	if StatePending.String() != entity.ClaimStatusPending {
		t.Errorf("StatePending = %v, want %v", StatePending, entity.ClaimStatusPending)
	}
	if StatePaid.String() != entity.ClaimStatusPaid {
		t.Errorf("StatePaid = %v, want %v", StatePaid, entity.ClaimStatusPaid)
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("DRAFT"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("DRAFT"))
}

func TestStateConfiguration_PermitPanicsOnInvalidTarget(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	builder.Configure(StatePending).Permit(TriggerApprove, State("DRAFT"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	machine := builder.Build(StatePending)

	if got := machine.PermittedTriggers(); len(got) != 1 || got[0] != TriggerApprove {
		t.Errorf("PermittedTriggers() = %v, want [APPROVE]", got)
	}
	if err := machine.Fire(TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateApproved)
	}
}

func TestStateConfiguration_PermitPanicsOnDuplicateTrigger(t *testing.T) {
	builder := NewBuilder()
	config := builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic when a trigger is permitted twice")
		}
	}()

	config.Permit(TriggerApprove, StateRejected)
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	machine := builder.Build(StatePending)

	err := machine.Fire(TriggerMarkPaid)
	if err == nil {
		t.Fatal("Fire() should fail for invalid transition")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if !errors.Is(err, entity.ErrInvalidState) {
		t.Errorf("Fire() error = %v, should wrap %v", err, entity.ErrInvalidState)
	}
	if machine.State() != StatePending {
		t.Errorf("State should remain %v after failed Fire(), got %v", StatePending, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine := NewBuilder().Build(StatePaid)

	err := machine.Fire(TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerApprove, StateApproved)

	triggers := builder.Build(StatePending).PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}
	if triggers[0] != TriggerApprove || triggers[1] != TriggerReject {
		t.Errorf("PermittedTriggers() = %v, want sorted [APPROVE REJECT]", triggers)
	}

	if got := NewBuilder().Build(StatePending).PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() without configuration = %v, want empty", got)
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	machine1 := builder.Build(StatePending)
	machine2 := builder.Build(StatePending)

	if err := machine1.Fire(TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine2.State() != StatePending {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StatePending)
	}

	// Configuring after Build must not affect existing machines
	builder.Configure(StatePending).Permit(TriggerReject, StateRejected)
	if err := machine2.Fire(TriggerReject); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("machine2 should not see transitions configured after Build(), got %v", err)
	}
}
