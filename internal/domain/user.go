package domain

import "time"

// ReferralCodePrefix is the marker carried in /start deep-link payloads.
const ReferralCodePrefix = "ref_"

// BotUser represents a chat participant record stored under bot_users/{id}.
// Field names mirror the schema shared with the admin dashboard.
type BotUser struct {
	Username           string            `json:"username"`
	ReferralCode       string            `json:"referral_code"`
	ReferralCount      int               `json:"referral_count"`
	Referrals          map[string]string `json:"referrals"`
	CredentialsIssued  bool              `json:"credentials_generated"`
	IssuedCredentialID string            `json:"generated_user_id,omitempty"`
	JoinedAt           string            `json:"joined_at"`
}

// NewBotUser builds a first-contact record for the given telegram id.
func NewBotUser(telegramID, username string, now time.Time) *BotUser {
	return &BotUser{
		Username:     username,
		ReferralCode: ReferralCodePrefix + telegramID,
		Referrals:    make(map[string]string),
		JoinedAt:     now.UTC().Format(time.RFC3339),
	}
}

// HasReferral reports whether the given user id was already credited to this referrer.
func (u *BotUser) HasReferral(referredID string) bool {
	if u == nil || u.Referrals == nil {
		return false
	}
	_, ok := u.Referrals[referredID]
	return ok
}
