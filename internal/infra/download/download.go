package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"reage-orchestrator/internal/domain/model"
)

// Downloader fetches finished artifacts to local files.
type Downloader struct {
	dir    string
	client *http.Client
}

func NewDownloader(dir string, timeout time.Duration) *Downloader {
	if dir == "" {
		dir = "."
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{dir: dir, client: &http.Client{Timeout: timeout}}
}

// Save fetches the artifact and writes it to a kind-appropriate default
// filename, returning the path written.
func (d *Downloader) Save(ctx context.Context, a model.ResultArtifact) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("download http %d", resp.StatusCode)
	}

	path := filepath.Join(d.dir, defaultName(a.Kind))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func defaultName(kind model.MediaKind) string {
	if kind == model.MediaVideo {
		return "face-reage-result.mp4"
	}
	return "face-reage-result.png"
}
