package workflow

// StateMachine tracks the current state of one claim and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// Fire executes the trigger, transitioning to the new state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns the triggers configured for the current state, sorted by name
	PermittedTriggers() []Trigger
}
