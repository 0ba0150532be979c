package workflow

import "github.com/garyjia/lecturer-claims/internal/domain/entity"

// State represents a claim state in the approval lifecycle
type State string

const (
	StatePending  State = entity.ClaimStatusPending
	StateApproved State = entity.ClaimStatusApproved
	StateRejected State = entity.ClaimStatusRejected
	StatePaid     State = entity.ClaimStatusPaid
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
	StatePaid:     true,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid claim state
func (s State) IsValid() bool {
	return validStates[s]
}
