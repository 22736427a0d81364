// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"reage-orchestrator/internal/application"
	"reage-orchestrator/internal/config"
	"reage-orchestrator/internal/domain"
	"reage-orchestrator/internal/domain/model"
	"reage-orchestrator/internal/infra/adapters/reage"
	"reage-orchestrator/internal/infra/auth"
	"reage-orchestrator/internal/infra/channel"
	"reage-orchestrator/internal/infra/download"
	"reage-orchestrator/internal/infra/logging"
	"reage-orchestrator/internal/infra/metrics"
	"reage-orchestrator/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, no redaction)")
	kind := flag.String("kind", "image", "job kind: image | video")
	target := flag.String("target", "", "target image URL (face detection frame)")
	video := flag.String("video", "", "video URL to re-age (video jobs)")
	delta := flag.Int("delta", 0, "age delta in years, -30..30")
	singleFace := flag.Bool("single-face", true, "expect a single face in the target")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	logger = logging.With(ctx, logger)

	// ---- Job request from flags, falling back to configured media defaults ----
	req := model.JobRequest{
		Kind:        model.JobKind(*kind),
		TargetImage: *target,
		SingleFace:  *singleFace,
	}
	if req.Kind == model.JobKindVideo {
		req.VideoURL = *video
		req.VideoAgeDelta = *delta
		if req.TargetImage == "" {
			req.TargetImage = cfg.Media.VideoTarget
		}
		if req.VideoURL == "" {
			req.VideoURL = cfg.Media.VideoURL
		}
	} else {
		req.AgeDelta = *delta
		if req.TargetImage == "" {
			req.TargetImage = cfg.Media.ImageTarget
		}
	}

	// ---- Remote API ----
	tokens, err := auth.NewProvider(cfg.API.Token, cfg.API.ClientID, cfg.API.ClientSecret, cfg.API.BaseURL, cfg.API.Timeout, logger)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	api, err := reage.NewAkoolClient(cfg.API.BaseURL, cfg.API.DetectURL, cfg.API.WebhookURL, tokens, cfg.API.Timeout)
	if err != nil {
		log.Fatalf("akool client: %v", err)
	}

	// ---- Presentation + use cases ----
	dl := download.NewDownloader(cfg.Download.Dir, 0)
	presenter := application.NewConsolePresenter(dl, logger)
	tracker := usecase.NewTrackerUseCase(usecase.NewClassifier(logger), presenter, logger)
	submitter := usecase.NewSubmitUseCase(api, tracker, logger)

	// ---- Push channel (connect before submitting so no notification is lost) ----
	mgr := channel.NewManager(cfg.Channel, logger)
	mgr.OnMessage(tracker.HandleMessage)
	mgr.OnDown(tracker.SetDegraded)
	if err := mgr.Connect(ctx); err != nil {
		log.Fatalf("channel: %v", err)
	}
	defer mgr.Disconnect()

	job, err := submitter.Submit(ctx, req)
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	ctx = logging.WithJobID(ctx, job.ID)
	logger = logging.With(ctx, logger)
	logger.Info().Msg("waiting for notifications")

	// ---- Wait for a terminal state or a signal ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for tracker.Busy() {
		select {
		case <-sig:
			_ = tracker.Abandon()
			logger.Warn().Msg("interrupted; job abandoned locally, remote job keeps running")
			return
		case <-ticker.C:
			if tracker.Degraded() {
				logger.Error().Msg("channel down; no further updates will arrive")
				os.Exit(1)
			}
		}
	}

	final := tracker.Active()
	if final == nil {
		return
	}
	switch final.State {
	case model.StateSucceeded:
		<-presenter.Done()
	case model.StateFailed:
		logger.Error().Err(domain.ErrRemoteJobFailed).Str("reason", final.StatusMessage).Msg("job failed")
		os.Exit(1)
	}
}
