package workflow

import (
	"fmt"
	"sort"
)

// StateMachineBuilder builds a configured state machine
type StateMachineBuilder interface {
	// Configure returns a state configuration for the given state
	Configure(state State) StateConfiguration

	// Build creates a new state machine instance with the given initial state
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions for a specific state
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target state
	Permit(trigger Trigger, toState State) StateConfiguration
}

type transitionTable map[State]map[Trigger]State

type stateConfig struct {
	state       State
	transitions map[Trigger]State
}

type stateMachineBuilder struct {
	table transitionTable
}

type stateMachine struct {
	current State
	table   transitionTable
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{table: make(transitionTable)}
}

// Configure returns a state configuration for the given state.
// Panics on an unknown state: configurations are static and built at startup.
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	transitions, exists := b.table[state]
	if !exists {
		transitions = make(map[Trigger]State)
		b.table[state] = transitions
	}

	return &stateConfig{state: state, transitions: transitions}
}

// Build creates a new state machine instance with the given initial state.
// Each machine gets its own copy of the table so later Configure calls do not leak into it.
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	table := make(transitionTable, len(b.table))
	for state, byTrigger := range b.table {
		copied := make(map[Trigger]State, len(byTrigger))
		for trigger, to := range byTrigger {
			copied[trigger] = to
		}
		table[state] = copied
	}

	return &stateMachine{
		current: initialState,
		table:   table,
	}
}

// Permit allows a trigger to transition to the target state.
// A trigger leads to exactly one state; permitting it twice panics.
func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	if existing, dup := c.transitions[trigger]; dup {
		panic(fmt.Sprintf("trigger %s from %s already leads to %s", trigger, c.state, existing))
	}

	c.transitions[trigger] = toState
	return c
}

// State returns the current state
func (m *stateMachine) State() State {
	return m.current
}

// Fire executes the trigger, moving to its target state if it is permitted
func (m *stateMachine) Fire(trigger Trigger) error {
	to, ok := m.table[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	m.current = to
	return nil
}

// PermittedTriggers returns all triggers configured for the current state
func (m *stateMachine) PermittedTriggers() []Trigger {
	byTrigger := m.table[m.current]
	triggers := make([]Trigger, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}

	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
