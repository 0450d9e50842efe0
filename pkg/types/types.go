package types

import "time"

// Platform identifies which webmail application a compose surface belongs to.
type Platform string

const (
	PlatformGmail   Platform = "gmail"
	PlatformOutlook Platform = "outlook"
)

// EmailDraft is the normalized content of an in-progress outgoing email,
// produced per send attempt. Fields are trimmed; missing values are empty
// strings, never unset.
type EmailDraft struct {
	Body             string `json:"email_content"`
	SenderAddress    string `json:"sender_email"`
	RecipientAddress string `json:"recipient_email"`
	Subject          string `json:"subject"`
}

// ValidatedDraft is an EmailDraft that passed validation, carrying its
// derived dedup fingerprint.
type ValidatedDraft struct {
	EmailDraft
	Fingerprint string `json:"fingerprint"`
}

// SubmissionResult is the summarization endpoint's successful response.
type SubmissionResult struct {
	Summary               string  `json:"summary"`
	OriginalWordCount     int     `json:"word_count_original"`
	SummaryWordCount      int     `json:"word_count_summary"`
	ProcessingTimeSeconds float64 `json:"processing_time"`
}

// AnalysisRecord is one persisted submission, keyed by timestamp in storage.
type AnalysisRecord struct {
	Timestamp time.Time        `json:"timestamp"`
	Draft     EmailDraft       `json:"draft"`
	Result    SubmissionResult `json:"result"`
}

// Matter is a billing/case identifier from the practice-management system.
// Read-only; sourced from the remote matters endpoint.
type Matter struct {
	ID            string `json:"id"`
	DisplayNumber string `json:"display_number,omitempty"`
	Description   string `json:"description"`
}

// Session is the locally persisted record of a successful practice-management
// authentication. A session older than SessionTTL is expired and must be
// purged in full before any consumer reads it.
type Session struct {
	UserIdentity     string    `json:"user_identity"`
	EstablishedAt    time.Time `json:"established_at"`
	Matters          []Matter  `json:"matters,omitempty"`
	SelectedMatterID string    `json:"selected_matter_id,omitempty"`
}

// SessionTTL is the absolute validity window of a Session.
const SessionTTL = 12 * time.Hour

// SessionState is the OAuth session manager's lifecycle state.
type SessionState string

const (
	SessionLoggedOut        SessionState = "logged_out"
	SessionAuthInitiated    SessionState = "auth_initiated"
	SessionAwaitingCallback SessionState = "awaiting_callback"
	SessionAuthenticated    SessionState = "authenticated"
	SessionExpired          SessionState = "expired"
)

// Settings is the user-tunable configuration record persisted in storage,
// mirroring what the settings surface edits. Zero values mean "use default".
type Settings struct {
	APIURL               string `json:"api_url"`
	EnableGmail          bool   `json:"enable_gmail"`
	EnableOutlook        bool   `json:"enable_outlook"`
	MinEmailLength       int    `json:"min_email_length"`
	ShowNotifications    bool   `json:"show_notifications"`
	NotificationDuration int    `json:"notification_duration"` // seconds
	MaxStoredAnalyses    int    `json:"max_stored_analyses"`
}
