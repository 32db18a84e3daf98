// Package progress models the per-user progression toward credential issuance.
package progress

import "github.com/medinet/credgate/internal/domain"

// State represents a step in the issuance progression.
type State string

const (
	// StateUnregistered indicates that the user has never contacted the bot.
	StateUnregistered State = "unregistered"
	// StateRegistered indicates a stored bot user without issued credentials.
	StateRegistered State = "registered"
	// StateIssued indicates that credentials were generated. Terminal.
	StateIssued State = "issued"
)

// validTransitions contains the permitted progression steps. Eligibility is a
// derived predicate, not a state, so it does not appear here.
var validTransitions = map[State][]State{
	StateUnregistered: {
		StateRegistered,
	},
	StateRegistered: {
		StateIssued,
	},
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe progression steps.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// RecordTransition reports a progression step to the registered observer.
func RecordTransition(from, to State) {
	transitionRecorder(string(from), string(to))
}

// Of derives the progression state from a stored bot user record.
func Of(user *domain.BotUser) State {
	switch {
	case user == nil:
		return StateUnregistered
	case user.CredentialsIssued:
		return StateIssued
	default:
		return StateRegistered
	}
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// StateIssued is terminal: no transition leaves it.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
