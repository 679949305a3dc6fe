package backend

// Status is the review state of a registration.
type Status string

// StatusPending is the only status for which an invite may be issued.
const StatusPending Status = "PENDING"

// Registration is the backend's view of a website registration, looked up
// by audit code. The bot never stores it.
type Registration struct {
	Username string `json:"username"`
	Status   Status `json:"status"`
	// IsExpired is independent of Status; a PENDING registration may be expired.
	// A missing field decodes as false.
	IsExpired bool `json:"isExpired"`
}

// LogRecord is one entry of a log batch uploaded to the backend.
type LogRecord struct {
	Level     string `json:"level"`
	Source    string `json:"source"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix millis
}
