//go:build !integration

package usecase

import (
	"errors"
	"sync"
	"testing"

	"reage-orchestrator/internal/domain"
	"reage-orchestrator/internal/domain/model"
)

// --- Fakes ---

type fakePresenter struct {
	mu     sync.Mutex
	images []model.ResultArtifact
	videos []model.ResultArtifact
}

func (f *fakePresenter) ShowImage(a model.ResultArtifact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, a)
}

func (f *fakePresenter) ShowVideo(a model.ResultArtifact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos = append(f.videos, a)
}

func (f *fakePresenter) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images), len(f.videos)
}

func newTracker(p ResultPresenter) *trackerUC {
	return NewTrackerUseCase(NewClassifier(testLogger()), p, testLogger())
}

func TestTrackerLifecycle(t *testing.T) {
	t.Run("image job: progress then success routes to image path once", func(t *testing.T) {
		p := &fakePresenter{}
		tr := newTracker(p)
		job := model.NewJobContext("job-1", model.JobRequest{Kind: model.JobKindImage, TargetImage: "https://x/a.png", AgeDelta: 5}, "LMK1")
		if err := tr.Activate(job); err != nil {
			t.Fatalf("activate: %v", err)
		}
		if !tr.Busy() {
			t.Fatal("expected busy right after activation, before any notification")
		}

		tr.HandleMessage([]byte(`{"data":{"status":1,"message":"queued"}}`))
		if !tr.Busy() || tr.Active().State != model.StateInProgress {
			t.Fatalf("expected busy in_progress, got %s", tr.Active().State)
		}
		if tr.StatusMessage() != "queued" {
			t.Errorf("expected status message 'queued', got %q", tr.StatusMessage())
		}

		tr.HandleMessage([]byte(`{"data":{"status":3,"message":"done","url":"https://x/out.png"}}`))
		if tr.Busy() {
			t.Error("expected busy cleared on terminal state")
		}
		if tr.Active().State != model.StateSucceeded {
			t.Fatalf("expected succeeded, got %s", tr.Active().State)
		}
		img, vid := p.counts()
		if img != 1 || vid != 0 {
			t.Fatalf("expected exactly one image presentation, got image=%d video=%d", img, vid)
		}
	})

	t.Run("video result routes to video path", func(t *testing.T) {
		p := &fakePresenter{}
		tr := newTracker(p)
		_ = tr.Activate(model.NewJobContext("job-1", model.JobRequest{Kind: model.JobKindVideo, TargetImage: "t", VideoURL: "v"}, "lmk"))

		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/clip.MP4"}}`))
		img, vid := p.counts()
		if img != 0 || vid != 1 {
			t.Fatalf("expected exactly one video presentation, got image=%d video=%d", img, vid)
		}
	})

	t.Run("error notification fails the job with its message", func(t *testing.T) {
		p := &fakePresenter{}
		tr := newTracker(p)
		_ = tr.Activate(model.NewJobContext("job-1", model.JobRequest{Kind: model.JobKindImage, TargetImage: "t"}, "lmk"))

		tr.HandleMessage([]byte(`{"data":{"status":1,"message":"queued"}}`))
		tr.HandleMessage([]byte(`{"data":{"status":4,"type":"error","message":"face not found"}}`))

		if tr.Active().State != model.StateFailed {
			t.Fatalf("expected failed, got %s", tr.Active().State)
		}
		if tr.StatusMessage() != "face not found" {
			t.Errorf("expected failure message, got %q", tr.StatusMessage())
		}
		if img, vid := p.counts(); img != 0 || vid != 0 {
			t.Error("no presentation path should fire on failure")
		}
	})

	t.Run("duplicate terminal notification presents only once", func(t *testing.T) {
		p := &fakePresenter{}
		tr := newTracker(p)
		_ = tr.Activate(model.NewJobContext("job-1", model.JobRequest{Kind: model.JobKindImage, TargetImage: "t"}, "lmk"))

		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/out.png"}}`))
		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/out.png"}}`))
		if img, _ := p.counts(); img != 1 {
			t.Fatalf("expected one presentation for duplicate success, got %d", img)
		}
	})

	t.Run("second submission supersedes the first for event routing", func(t *testing.T) {
		p := &fakePresenter{}
		tr := newTracker(p)
		_ = tr.Activate(model.NewJobContext("job-OLD", model.JobRequest{Kind: model.JobKindImage, TargetImage: "t"}, "lmk"))
		_ = tr.Activate(model.NewJobContext("job-NEW", model.JobRequest{Kind: model.JobKindImage, TargetImage: "t"}, "lmk"))

		// Late terminal message correlated to the superseded job is dropped.
		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/old.png","task_id":"job-OLD"}}`))
		if tr.Active().State != model.StateSubmitted {
			t.Fatalf("stale message advanced the new job to %s", tr.Active().State)
		}

		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/new.png","task_id":"job-NEW"}}`))
		if tr.Active().State != model.StateSucceeded {
			t.Fatalf("expected new job resolved, got %s", tr.Active().State)
		}
		if img, _ := p.counts(); img != 1 {
			t.Fatalf("expected one presentation, got %d", img)
		}
		if p.images[0].URL != "https://x/new.png" {
			t.Errorf("resolved with the wrong artifact: %s", p.images[0].URL)
		}
	})

	t.Run("abandon drops interest in further notifications", func(t *testing.T) {
		p := &fakePresenter{}
		tr := newTracker(p)
		_ = tr.Activate(model.NewJobContext("job-1", model.JobRequest{Kind: model.JobKindImage, TargetImage: "t"}, "lmk"))
		if err := tr.Abandon(); err != nil {
			t.Fatalf("abandon: %v", err)
		}
		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/out.png"}}`))
		if img, vid := p.counts(); img != 0 || vid != 0 {
			t.Error("abandoned job must not present results")
		}
		if err := tr.Abandon(); !errors.Is(err, domain.ErrNoActiveJob) {
			t.Errorf("expected ErrNoActiveJob, got %v", err)
		}
	})

	t.Run("degraded flag is independent of job state", func(t *testing.T) {
		tr := newTracker(&fakePresenter{})
		if tr.Degraded() {
			t.Fatal("fresh tracker must not be degraded")
		}
		tr.SetDegraded(domain.ErrChannelDown)
		if !tr.Degraded() {
			t.Fatal("expected degraded after channel failure")
		}
	})

	t.Run("message with no active job is a no-op", func(t *testing.T) {
		tr := newTracker(&fakePresenter{})
		tr.HandleMessage([]byte(`{"data":{"status":3,"url":"https://x/out.png"}}`))
		if tr.Active() != nil {
			t.Error("no job should appear from a stray message")
		}
	})
}
