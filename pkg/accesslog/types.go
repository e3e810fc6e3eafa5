package accesslog

import "time"

// Record is one persisted access log entry. ID is assigned by the recorder
// when empty.
type Record struct {
	ID         string
	Timestamp  time.Time
	RequestID  string
	Method     string
	Path       string
	Route      string
	Status     int
	BytesSent  int64
	DurationMs int64
	RemoteAddr string
	UserAgent  string
}
