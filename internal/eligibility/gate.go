// Package eligibility decides whether a user may receive credentials:
// channel membership combined with the referral threshold.
package eligibility

import (
	"context"
	"log/slog"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/pkg/metrics"
)

// Reason identifiers for a failed eligibility check.
const (
	ReasonChannel   = "channel"
	ReasonReferrals = "referrals"
	ReasonBoth      = "both"
)

// MembershipChecker reports whether a telegram user belongs to a channel.
type MembershipChecker interface {
	IsMember(ctx context.Context, channel string, telegramID int64) (bool, error)
}

// Status is the result of an eligibility evaluation.
type Status struct {
	ChannelJoined bool
	ReferralCount int
	Required      int
}

// ReferralsOK reports whether the referral threshold is met.
func (s Status) ReferralsOK() bool {
	return s.ReferralCount >= s.Required
}

// Eligible reports whether both conditions are satisfied.
func (s Status) Eligible() bool {
	return s.ChannelJoined && s.ReferralsOK()
}

// Remaining returns how many more referrals are needed.
func (s Status) Remaining() int {
	if remaining := s.Required - s.ReferralCount; remaining > 0 {
		return remaining
	}
	return 0
}

// Reason names the unmet condition. Empty when eligible.
func (s Status) Reason() string {
	switch {
	case s.Eligible():
		return ""
	case !s.ChannelJoined && !s.ReferralsOK():
		return ReasonBoth
	case !s.ChannelJoined:
		return ReasonChannel
	default:
		return ReasonReferrals
	}
}

// Gate evaluates eligibility. Pure read: safe to call repeatedly.
type Gate struct {
	membership MembershipChecker
	channel    string
	required   int
	log        *slog.Logger
}

// NewGate constructs a Gate bound to the configured channel and threshold.
func NewGate(membership MembershipChecker, channel string, required int, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}

	return &Gate{
		membership: membership,
		channel:    channel,
		required:   required,
		log:        log,
	}
}

// Check evaluates the two conditions for the given user. A failed membership
// lookup counts as "not joined" rather than an error (fail-closed).
func (g *Gate) Check(ctx context.Context, user *domain.BotUser, telegramID int64) Status {
	status := Status{Required: g.required}
	if user != nil {
		status.ReferralCount = user.ReferralCount
	}

	joined, err := g.membership.IsMember(ctx, g.channel, telegramID)
	if err != nil {
		g.log.Warn("channel membership check failed",
			slog.Int64("telegram_id", telegramID),
			slog.String("channel", g.channel),
			slog.Any("error", err),
		)
		metrics.RecordMembershipCheck("error")
		return status
	}

	result := "not_member"
	if joined {
		result = "member"
	}
	metrics.RecordMembershipCheck(result)

	status.ChannelJoined = joined
	return status
}
