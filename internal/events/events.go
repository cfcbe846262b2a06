package events

// Topic names for session and ride lifecycle events.
const (
	TopicSessionStarted = "cabs.session.started"
	TopicRideCompleted  = "cabs.ride.completed"
	TopicSessionCleared = "cabs.session.cleared"
)

// Topics lists every topic the service publishes to.
var Topics = []string{TopicSessionStarted, TopicRideCompleted, TopicSessionCleared}

// SessionStartedEvent is published when an OTP is verified.
type SessionStartedEvent struct {
	DeviceID  string `json:"device_id"`
	Mobile    string `json:"mobile"`
	StartedAt string `json:"started_at"`
}

// RideCompletedEvent is published when a live ride ends.
type RideCompletedEvent struct {
	DeviceID    string `json:"device_id"`
	RideID      int64  `json:"ride_id"`
	Mobile      string `json:"mobile"`
	Start       string `json:"start"`
	Dest        string `json:"dest"`
	Vehicle     string `json:"vehicle"`
	Driver      string `json:"driver"`
	Price       int    `json:"price"`
	CompletedAt string `json:"completed_at"`
}

// SessionClearedEvent is published on logout.
type SessionClearedEvent struct {
	DeviceID  string `json:"device_id"`
	Mobile    string `json:"mobile,omitempty"`
	ClearedAt string `json:"cleared_at"`
}
