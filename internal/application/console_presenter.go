package application

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reage-orchestrator/internal/domain/model"
	"reage-orchestrator/internal/infra/download"
	"reage-orchestrator/internal/usecase"
)

// Compile-time check
var _ usecase.ResultPresenter = (*ConsolePresenter)(nil)

// ConsolePresenter is the terminal-result surface of the CLI: it announces
// the artifact, saves it locally, and signals completion. Each rendering
// slot (image, video) fires at most once per job.
type ConsolePresenter struct {
	dl  *download.Downloader
	log *zerolog.Logger

	once sync.Once
	done chan struct{}
}

func NewConsolePresenter(dl *download.Downloader, log *zerolog.Logger) *ConsolePresenter {
	return &ConsolePresenter{dl: dl, log: log, done: make(chan struct{})}
}

func (p *ConsolePresenter) ShowImage(a model.ResultArtifact) { p.show("image", a) }

func (p *ConsolePresenter) ShowVideo(a model.ResultArtifact) { p.show("video", a) }

// Done is closed after the artifact has been presented and saved.
func (p *ConsolePresenter) Done() <-chan struct{} { return p.done }

func (p *ConsolePresenter) show(kind string, a model.ResultArtifact) {
	p.once.Do(func() {
		defer close(p.done)
		p.log.Info().Str("kind", kind).Str("url", a.URL).Msg("result ready")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		path, err := p.dl.Save(ctx, a)
		if err != nil {
			p.log.Error().Err(err).Str("url", a.URL).Msg("saving result failed; open the URL directly")
			return
		}
		p.log.Info().Str("path", path).Msg("result saved")
	})
}
