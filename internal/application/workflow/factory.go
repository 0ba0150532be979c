package workflow

import (
	domainwf "github.com/garyjia/lecturer-claims/internal/domain/workflow"
)

// BuildClaimStateMachine creates a state machine configured for the claim lifecycle
func BuildClaimStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	builder.Configure(domainwf.StateApproved).
		Permit(domainwf.TriggerMarkPaid, domainwf.StatePaid)

	// REJECTED and PAID are terminal states - no outgoing transitions

	return builder.Build(initialState)
}
