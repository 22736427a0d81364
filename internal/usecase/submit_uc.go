// File: internal/usecase/submit_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reage-orchestrator/internal/domain"
	"reage-orchestrator/internal/domain/model"
	"reage-orchestrator/internal/domain/ports/adapter"
	"reage-orchestrator/internal/infra/logging"
	"reage-orchestrator/internal/infra/metrics"
)

// Compile-time check
var _ SubmitUseCase = (*submitUC)(nil)

// SubmitUseCase performs the detect -> submit call sequence and activates the
// resulting JobContext in the tracker.
type SubmitUseCase interface {
	Submit(ctx context.Context, req model.JobRequest) (*model.JobContext, error)
}

type submitUC struct {
	api     adapter.ReageAPI
	tracker TrackerUseCase
	log     *zerolog.Logger
}

func NewSubmitUseCase(api adapter.ReageAPI, tracker TrackerUseCase, log *zerolog.Logger) *submitUC {
	return &submitUC{api: api, tracker: tracker, log: log}
}

func (s *submitUC) Submit(ctx context.Context, req model.JobRequest) (*model.JobContext, error) {
	defer logging.TraceDuration(s.log, "SubmitUC.Submit")()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	det, err := s.api.Detect(ctx, req.TargetImage, req.SingleFace)
	if err != nil {
		s.log.Error().Err(err).Str("target", req.TargetImage).Msg("face detection failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrDetectionFailed, err)
	}

	params := adapter.SubmitParams{
		TargetPath: req.TargetImage,
		Landmarks:  det.Landmarks,
	}
	switch req.Kind {
	case model.JobKindVideo:
		params.AgeDelta = req.VideoAgeDelta
		params.ModifyURL = req.VideoURL
		err = s.api.SubmitVideo(ctx, params)
	default:
		params.AgeDelta = req.AgeDelta
		params.ModifyURL = req.TargetImage
		err = s.api.SubmitImage(ctx, params)
	}
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(req.Kind)).Msg("job submission failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	job := model.NewJobContext(uuid.NewString(), req, det.Landmarks)
	if err := s.tracker.Activate(job); err != nil {
		return nil, err
	}
	metrics.IncJobSubmitted(string(req.Kind))
	s.log.Info().Str("job_id", job.ID).Str("kind", string(req.Kind)).Msg("job submitted")
	return job, nil
}

func validateRequest(req model.JobRequest) error {
	if req.TargetImage == "" {
		return domain.ErrMissingTarget
	}
	switch req.Kind {
	case model.JobKindImage:
		if req.AgeDelta < model.MinAgeDelta || req.AgeDelta > model.MaxAgeDelta {
			return domain.ErrAgeDeltaOutOfRange
		}
	case model.JobKindVideo:
		if req.VideoURL == "" {
			return domain.ErrMissingTarget
		}
		if req.VideoAgeDelta < model.MinAgeDelta || req.VideoAgeDelta > model.MaxAgeDelta {
			return domain.ErrAgeDeltaOutOfRange
		}
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}
