package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medinet/credgate/internal/domain"
)

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{name: "registration", from: StateUnregistered, to: StateRegistered, allowed: true},
		{name: "issuance", from: StateRegistered, to: StateIssued, allowed: true},
		{name: "skip registration", from: StateUnregistered, to: StateIssued, allowed: false},
		{name: "issued is terminal", from: StateIssued, to: StateRegistered, allowed: false},
		{name: "issued cannot reissue", from: StateIssued, to: StateIssued, allowed: false},
		{name: "no self loop", from: StateRegistered, to: StateRegistered, allowed: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, IsTransitionAllowed(tc.from, tc.to))
		})
	}
}

func TestOf(t *testing.T) {
	assert.Equal(t, StateUnregistered, Of(nil))
	assert.Equal(t, StateRegistered, Of(&domain.BotUser{}))
	assert.Equal(t, StateIssued, Of(&domain.BotUser{CredentialsIssued: true, IssuedCredentialID: "abcd1234"}))
}

func TestTransitionRecorder(t *testing.T) {
	var gotFrom, gotTo string
	RegisterTransitionRecorder(func(from, to string) {
		gotFrom, gotTo = from, to
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	RecordTransition(StateRegistered, StateIssued)

	assert.Equal(t, "registered", gotFrom)
	assert.Equal(t, "issued", gotTo)
}
