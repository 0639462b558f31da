package domain

import "time"

// Stats summarizes the user base for the admin dashboard.
type Stats struct {
	TotalUsers         int     `json:"total_users"`
	AdminUsers         int     `json:"admin_users"`
	TotalCreditsUsed   int     `json:"total_credits_used"`
	AverageCreditsUsed float64 `json:"average_credits_used"`
	// Activity counts successful usage events per type over the last day.
	Activity map[UsageEventType]int `json:"activity_24h"`
}

// UsageEventType enumerates the audited actions.
type UsageEventType string

const (
	UsageQuoteGenerate UsageEventType = "QUOTE_GENERATE"
	UsageCreditReset   UsageEventType = "CREDIT_RESET"
	UsageAdminCredits  UsageEventType = "ADMIN_SET_CREDITS"
	UsageAdminRole     UsageEventType = "ADMIN_SET_ROLE"
	UsageDesignSave    UsageEventType = "DESIGN_SAVE"
	UsageSignIn        UsageEventType = "SIGN_IN"
	UsageSignOut       UsageEventType = "SIGN_OUT"
)

// UsageEvent is one audited action.
type UsageEvent struct {
	UserID     string
	RequestID  string
	Type       UsageEventType
	Success    bool
	Latency    time.Duration
	Properties map[string]any
}
