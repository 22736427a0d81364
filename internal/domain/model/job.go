package model

import "time"

// Bounds accepted for a re-age effect, in years.
const (
	MinAgeDelta = -30
	MaxAgeDelta = 30
)

type JobKind string

const (
	JobKindImage JobKind = "image"
	JobKindVideo JobKind = "video"
)

// JobRequest carries the user-supplied parameters for one re-age job.
// Immutable once submitted.
type JobRequest struct {
	Kind          JobKind
	TargetImage   string // frame used for face detection
	SingleFace    bool
	AgeDelta      int
	VideoURL      string // video jobs only
	VideoAgeDelta int    // video jobs only
}

type StatusState string

const (
	StateSubmitted  StatusState = "submitted"
	StateInProgress StatusState = "in_progress"
	StateSucceeded  StatusState = "succeeded"
	StateFailed     StatusState = "failed"
)

// Terminal reports whether no further transition is accepted from s.
func (s StatusState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventError    EventKind = "error"
	EventSuccess  EventKind = "success"
)

// StatusEvent is the normalized form of one push message. The raw numeric
// status code is resolved into Kind at the classifier boundary and never
// travels further.
type StatusEvent struct {
	Kind      EventKind
	Message   string
	ResultURL string // success only
	TaskID    string // correlation hint, may be empty
}

// JobContext correlates one in-flight submission with its notifications.
type JobContext struct {
	ID            string
	Request       JobRequest
	Landmarks     string
	CreatedAt     time.Time
	State         StatusState
	StatusMessage string
	Result        *ResultArtifact
}

func NewJobContext(id string, req JobRequest, landmarks string) *JobContext {
	return &JobContext{
		ID:        id,
		Request:   req,
		Landmarks: landmarks,
		CreatedAt: time.Now(),
		State:     StateSubmitted,
	}
}

// Apply advances the lifecycle by one event and reports whether the event
// was accepted. Transitions are monotonic: a terminal state absorbs
// everything, so duplicate or late terminal notifications are no-ops.
func (j *JobContext) Apply(ev StatusEvent) bool {
	if j.State.Terminal() {
		return false
	}
	switch ev.Kind {
	case EventProgress:
		j.State = StateInProgress
		j.StatusMessage = ev.Message
	case EventError:
		j.State = StateFailed
		j.StatusMessage = ev.Message
	case EventSuccess:
		a := NewResultArtifact(ev.ResultURL)
		j.State = StateSucceeded
		j.StatusMessage = ev.Message
		j.Result = &a
	default:
		return false
	}
	return true
}
