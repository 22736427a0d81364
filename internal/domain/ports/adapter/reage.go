package adapter

import "context"

// DetectionResult is the opaque face-landmark token returned by the detect
// step. It is never parsed locally; it is only echoed back on submission and
// is valid solely for the request that produced it.
type DetectionResult struct {
	Landmarks string
}

// SubmitParams is the provider-agnostic payload of one job-creation call.
type SubmitParams struct {
	TargetPath string // frame the landmarks were detected on
	Landmarks  string // opaque detect token
	AgeDelta   int
	ModifyURL  string // image or video locator to re-age
	WebhookURL string
}

// ReageAPI is the hex port for the remote face re-aging provider.
type ReageAPI interface {
	Name() string

	// Detect runs face detection on the target frame and returns the opaque
	// landmark token required by the submit calls.
	Detect(ctx context.Context, imageURL string, singleFace bool) (DetectionResult, error)

	// SubmitImage schedules an image re-age job. The response only
	// acknowledges scheduling; the result arrives over the push channel.
	SubmitImage(ctx context.Context, p SubmitParams) error

	// SubmitVideo schedules a video re-age job.
	SubmitVideo(ctx context.Context, p SubmitParams) error
}
