package eligibility

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medinet/credgate/internal/domain"
)

type fakeMembership struct {
	member bool
	err    error
}

func (f *fakeMembership) IsMember(context.Context, string, int64) (bool, error) {
	return f.member, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userWithReferrals(count int) *domain.BotUser {
	return &domain.BotUser{ReferralCount: count}
}

func TestGate_Check(t *testing.T) {
	tests := []struct {
		name         string
		member       bool
		memberErr    error
		referrals    int
		wantEligible bool
		wantReason   string
		wantLeft     int
	}{
		{
			name:         "both conditions met",
			member:       true,
			referrals:    2,
			wantEligible: true,
			wantReason:   "",
		},
		{
			name:         "exceeding threshold still eligible",
			member:       true,
			referrals:    5,
			wantEligible: true,
		},
		{
			name:       "channel not joined",
			member:     false,
			referrals:  2,
			wantReason: ReasonChannel,
		},
		{
			name:       "not enough referrals",
			member:     true,
			referrals:  1,
			wantReason: ReasonReferrals,
			wantLeft:   1,
		},
		{
			name:       "nothing done yet",
			member:     false,
			referrals:  0,
			wantReason: ReasonBoth,
			wantLeft:   2,
		},
		{
			name:       "membership lookup failure fails closed",
			member:     true,
			memberErr:  errors.New("api timeout"),
			referrals:  2,
			wantReason: ReasonChannel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(&fakeMembership{member: tt.member, err: tt.memberErr}, "@channel", 2, testLogger())

			status := gate.Check(context.Background(), userWithReferrals(tt.referrals), 42)

			assert.Equal(t, tt.wantEligible, status.Eligible())
			assert.Equal(t, tt.wantReason, status.Reason())
			assert.Equal(t, tt.wantLeft, status.Remaining())
		})
	}
}

func TestGate_CheckNilUser(t *testing.T) {
	gate := NewGate(&fakeMembership{member: true}, "@channel", 2, testLogger())

	status := gate.Check(context.Background(), nil, 42)

	assert.False(t, status.Eligible())
	assert.Equal(t, 0, status.ReferralCount)
	assert.True(t, status.ChannelJoined)
}
