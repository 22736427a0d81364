// File: internal/usecase/tracker_uc.go
package usecase

import (
	"sync"

	"github.com/rs/zerolog"

	"reage-orchestrator/internal/domain"
	"reage-orchestrator/internal/domain/model"
	"reage-orchestrator/internal/infra/metrics"
)

// Compile-time check
var _ TrackerUseCase = (*trackerUC)(nil)

// ResultPresenter is the presentation boundary for terminal results. Exactly
// one of the two methods fires per succeeded job.
type ResultPresenter interface {
	ShowImage(a model.ResultArtifact)
	ShowVideo(a model.ResultArtifact)
}

// TrackerUseCase owns the single active-JobContext slot and advances its
// lifecycle from classified push events.
type TrackerUseCase interface {
	// Activate installs job as the sole active JobContext, superseding any
	// prior one for event-routing purposes. Callers are expected to hold off
	// re-submission while Busy; the tracker itself always replaces.
	Activate(job *model.JobContext) error

	// HandleMessage consumes one raw push message. Intended as the channel
	// manager's message handler; never blocks, never panics on bad input.
	HandleMessage(raw []byte)

	// Abandon drops local interest in the active job. The remote job keeps
	// running; its later notifications are dropped as non-active.
	Abandon() error

	// Active returns the current active JobContext, or nil.
	Active() *model.JobContext

	// Busy reports whether a job is active and not yet terminal.
	Busy() bool

	// StatusMessage returns the latest human-readable status line.
	StatusMessage() string

	// SetDegraded flags permanent channel failure; independent of job state.
	SetDegraded(err error)
	Degraded() bool
}

type trackerUC struct {
	classifier *Classifier
	presenter  ResultPresenter
	log        *zerolog.Logger

	mu       sync.Mutex
	active   *model.JobContext
	degraded bool
}

func NewTrackerUseCase(classifier *Classifier, presenter ResultPresenter, log *zerolog.Logger) *trackerUC {
	return &trackerUC{classifier: classifier, presenter: presenter, log: log}
}

func (t *trackerUC) Activate(job *model.JobContext) error {
	if job == nil {
		return domain.ErrInvalidArgument
	}
	t.mu.Lock()
	if prev := t.active; prev != nil && !prev.State.Terminal() {
		t.log.Warn().Str("superseded_job", prev.ID).Str("job_id", job.ID).Msg("activating over a non-terminal job")
	}
	t.active = job
	t.mu.Unlock()
	t.log.Info().Str("job_id", job.ID).Str("kind", string(job.Request.Kind)).Msg("job activated")
	return nil
}

func (t *trackerUC) HandleMessage(raw []byte) {
	t.mu.Lock()
	ev, ok := t.classifier.Classify(raw, t.active)
	if !ok {
		t.mu.Unlock()
		return
	}
	job := t.active
	if !job.Apply(ev) {
		metrics.IncChannelMessage("dropped")
		t.mu.Unlock()
		return
	}
	metrics.IncChannelMessage("applied")

	state := job.State
	var artifact *model.ResultArtifact
	if state == model.StateSucceeded {
		artifact = job.Result
	}
	t.mu.Unlock()

	switch state {
	case model.StateInProgress:
		t.log.Info().Str("job_id", job.ID).Str("status", ev.Message).Msg("job in progress")
	case model.StateFailed:
		metrics.IncJobResolved("failed")
		t.log.Warn().Str("job_id", job.ID).Str("reason", ev.Message).Msg("job failed")
	case model.StateSucceeded:
		metrics.IncJobResolved("succeeded")
		t.log.Info().Str("job_id", job.ID).Str("url", artifact.URL).Msg("job succeeded")
		// Routing happens outside the lock so the presenter may call back
		// into the tracker (e.g. Abandon on popup close).
		t.route(*artifact)
	}
}

// route dispatches the artifact to exactly one presentation path.
func (t *trackerUC) route(a model.ResultArtifact) {
	if a.Kind == model.MediaVideo {
		t.presenter.ShowVideo(a)
		return
	}
	t.presenter.ShowImage(a)
}

func (t *trackerUC) Abandon() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return domain.ErrNoActiveJob
	}
	t.log.Info().Str("job_id", t.active.ID).Msg("job abandoned")
	t.active = nil
	return nil
}

func (t *trackerUC) Active() *model.JobContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *trackerUC) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil && !t.active.State.Terminal()
}

func (t *trackerUC) StatusMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return ""
	}
	return t.active.StatusMessage
}

func (t *trackerUC) SetDegraded(err error) {
	t.mu.Lock()
	t.degraded = true
	t.mu.Unlock()
	t.log.Error().Err(err).Msg("push channel degraded; jobs will stop receiving updates")
}

func (t *trackerUC) Degraded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.degraded
}
