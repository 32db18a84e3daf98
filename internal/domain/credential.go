package domain

import "time"

// ResetDateLayout is the calendar-day format recorded in last_reset fields.
const ResetDateLayout = "2006-01-02"

// Credential is a generated account record stored under users/{id}.
// The raw secret is never stored; only its SHA-256 hex digest.
type Credential struct {
	SecretHash string `json:"password"`
	DailyLimit int    `json:"limit"`
	UsageCount int    `json:"usage"`
	LastReset  string `json:"last_reset"`
}

// NewCredential builds a fresh credential record with zero usage.
func NewCredential(secretHash string, dailyLimit int, now time.Time) *Credential {
	return &Credential{
		SecretHash: secretHash,
		DailyLimit: dailyLimit,
		LastReset:  now.UTC().Format(ResetDateLayout),
	}
}
