package reage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reage-orchestrator/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ReageAPI = (*AkoolClient)(nil)

// TokenSource supplies the bearer token for each call. How the token was
// obtained (direct or client-credential exchange) is not this package's
// concern.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AkoolClient implements adapter.ReageAPI against the Akool open API using
// plain JSON-over-HTTP calls.
type AkoolClient struct {
	base      string // e.g., https://openapi.akool.com/api/open/v3
	detectURL string // e.g., https://sg3.akool.com/detect
	webhook   string // callback target embedded in every submission
	tokens    TokenSource
	client    *http.Client
}

func NewAkoolClient(base, detectURL, webhook string, tokens TokenSource, timeout time.Duration) (*AkoolClient, error) {
	if base == "" || detectURL == "" {
		return nil, errors.New("akool endpoints empty")
	}
	if tokens == nil {
		return nil, errors.New("token source nil")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AkoolClient{
		base:      base,
		detectURL: detectURL,
		webhook:   webhook,
		tokens:    tokens,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (a *AkoolClient) Name() string { return "akool" }

func (a *AkoolClient) Detect(ctx context.Context, imageURL string, singleFace bool) (adapter.DetectionResult, error) {
	reqBody := struct {
		SingleFace bool   `json:"single_face"`
		ImageURL   string `json:"image_url"`
	}{SingleFace: singleFace, ImageURL: imageURL}

	var payload struct {
		LandmarksStr string `json:"landmarks_str"`
	}
	if err := a.post(ctx, a.detectURL, reqBody, &payload); err != nil {
		return adapter.DetectionResult{}, err
	}
	if payload.LandmarksStr == "" {
		return adapter.DetectionResult{}, errors.New("detect: empty landmarks_str")
	}
	return adapter.DetectionResult{Landmarks: payload.LandmarksStr}, nil
}

// submitPayload matches the highquality reage endpoints. Exactly one of
// ModifyImage/ModifyVideo is set, selecting the modality.
type submitPayload struct {
	TargetImage []targetImage `json:"targetImage"`
	FaceReage   int           `json:"face_reage"`
	ModifyImage string        `json:"modifyImage,omitempty"`
	ModifyVideo string        `json:"modifyVideo,omitempty"`
	WebhookURL  string        `json:"webhookUrl"`
}

type targetImage struct {
	Path string `json:"path"`
	Opts string `json:"opts"`
}

func (a *AkoolClient) SubmitImage(ctx context.Context, p adapter.SubmitParams) error {
	body := submitPayload{
		TargetImage: []targetImage{{Path: p.TargetPath, Opts: p.Landmarks}},
		FaceReage:   p.AgeDelta,
		ModifyImage: p.ModifyURL,
		WebhookURL:  a.webhookOr(p.WebhookURL),
	}
	return a.post(ctx, a.base+"/faceswap/highquality/imgreage", body, nil)
}

func (a *AkoolClient) SubmitVideo(ctx context.Context, p adapter.SubmitParams) error {
	body := submitPayload{
		TargetImage: []targetImage{{Path: p.TargetPath, Opts: p.Landmarks}},
		FaceReage:   p.AgeDelta,
		ModifyVideo: p.ModifyURL,
		WebhookURL:  a.webhookOr(p.WebhookURL),
	}
	return a.post(ctx, a.base+"/faceswap/highquality/vidreage", body, nil)
}

func (a *AkoolClient) webhookOr(override string) string {
	if override != "" {
		return override
	}
	return a.webhook
}

func (a *AkoolClient) post(ctx context.Context, url string, in, out any) error {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	b, _ := json.Marshal(in)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("akool http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
