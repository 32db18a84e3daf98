// Package referral tracks, per referrer, the distinct users who joined
// through their invite link and the derived referral count.
package referral

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/repository"
	"github.com/medinet/credgate/pkg/metrics"
)

// Event describes a successful referral credit. It is emitted for best-effort
// notification delivery, decoupled from the ledger write.
type Event struct {
	ReferrerID   string
	ReferredName string
	Count        int
	Required     int
}

// Ledger records referral credits against bot user records.
type Ledger struct {
	users    repository.UserRepository
	required int
	events   chan<- Event
	log      *slog.Logger
}

// NewLedger constructs a Ledger. The events channel may be nil when
// notifications are disabled.
func NewLedger(users repository.UserRepository, required int, events chan<- Event, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}

	return &Ledger{
		users:    users,
		required: required,
		events:   events,
		log:      log,
	}
}

// Record credits referredID to the referrer and returns the referrer's new
// count. Self-referrals, unknown referrers and already-counted users are
// silent no-ops with credited=false. The count always equals the number of
// distinct referred users.
func (l *Ledger) Record(ctx context.Context, referrerID, referredID, referredName string) (int, bool, error) {
	if referrerID == "" || referredID == "" || referrerID == referredID {
		return 0, false, nil
	}

	referrer, err := l.users.Find(ctx, referrerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.log.Info("referral for unknown referrer ignored", slog.String("referrer_id", referrerID))
			return 0, false, nil
		}
		return 0, false, err
	}

	if referrer.HasReferral(referredID) {
		return referrer.ReferralCount, false, nil
	}

	referrals := referrer.Referrals
	if referrals == nil {
		referrals = make(map[string]string)
	}
	referrals[referredID] = referredName
	count := len(referrals)

	err = l.users.Patch(ctx, referrerID, map[string]any{
		"referrals":      referrals,
		"referral_count": count,
	})
	if err != nil {
		return 0, false, err
	}

	metrics.RecordReferral()
	l.log.Info("referral recorded",
		slog.String("referrer_id", referrerID),
		slog.String("referred_id", referredID),
		slog.Int("count", count),
	)

	l.emit(Event{
		ReferrerID:   referrerID,
		ReferredName: referredName,
		Count:        count,
		Required:     l.required,
	})

	return count, true, nil
}

// emit hands the event to the notifier without ever blocking the ledger write.
func (l *Ledger) emit(event Event) {
	if l.events == nil {
		return
	}

	select {
	case l.events <- event:
	default:
		l.log.Warn("referral event dropped, notifier queue full", slog.String("referrer_id", event.ReferrerID))
	}
}

// CodeFor returns the invite-link payload for the given telegram id.
func CodeFor(telegramID string) string {
	return domain.ReferralCodePrefix + telegramID
}

// ParseCode extracts the referrer id from a /start payload. Malformed payloads
// are rejected silently: ok=false means "no referral".
func ParseCode(payload string) (string, bool) {
	if !strings.HasPrefix(payload, domain.ReferralCodePrefix) {
		return "", false
	}

	id := payload[len(domain.ReferralCodePrefix):]
	if id == "" || strings.ContainsAny(id, "/. #$[]") {
		return "", false
	}

	return id, true
}
