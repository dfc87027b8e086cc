package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"wallgen/internal/aspect"
	"wallgen/internal/providers/fal"
	"wallgen/internal/providers/scene"
)

// State is the gateway's closed set of job states, reconstructed fresh from
// the queue on every poll. No local job table exists.
type State string

const (
	StateQueued    State = "QUEUED"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
)

// Credentials are the per-request upstream keys. They are threaded through
// every call explicitly and discarded with the request.
type Credentials struct {
	RenderKey string
	PromptKey string
}

// GenerationRequest is the validated end-user input for one wallpaper.
type GenerationRequest struct {
	City    string
	Weather string
	Moment  string
	Width   int
	Height  int
}

// Submission is what the caller gets back immediately; the job itself keeps
// running remotely.
type Submission struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
	ResultURL string `json:"result_url"`
}

// JobStatus is the normalized polling answer.
type JobStatus struct {
	State         State
	QueuePosition *int
	ImageURL      string
}

// ImageStream carries the artifact body for unbuffered relay. The caller
// owns Body and must close it.
type ImageStream struct {
	Body        io.ReadCloser
	ContentType string
}

// SceneSynthesizer produces a structured scene description for sparse input.
type SceneSynthesizer interface {
	Synthesize(ctx context.Context, apiKey string, req scene.Request) (*scene.Description, error)
}

// RenderQueue is the asynchronous render service boundary.
type RenderQueue interface {
	Submit(ctx context.Context, apiKey string, in fal.SubmitInput) (*fal.Submission, error)
	Status(ctx context.Context, apiKey, requestID string) (*fal.QueueStatus, error)
	Result(ctx context.Context, apiKey, requestID string) (*fal.Result, error)
	Download(ctx context.Context, imageURL string) (io.ReadCloser, string, error)
}

// Service orchestrates the generation workflow. It holds no per-job state;
// everything it reports is recomputed from upstream on demand.
type Service struct {
	scenes SceneSynthesizer
	queue  RenderQueue
}

// NewService wires the two upstream collaborators.
func NewService(scenes SceneSynthesizer, queue RenderQueue) *Service {
	return &Service{scenes: scenes, queue: queue}
}

// Submit runs the submission path: normalize, synthesize, compose, enqueue.
// The two external calls are strictly sequential; the second depends on the
// first's output. Returns as soon as the queue acknowledges the job.
func (s *Service) Submit(ctx context.Context, creds Credentials, req GenerationRequest) (*Submission, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	profile := aspect.Normalize(req.Width, req.Height)

	desc, err := s.scenes.Synthesize(ctx, creds.PromptKey, scene.Request{
		City:        req.City,
		Weather:     req.Weather,
		Moment:      req.Moment,
		Width:       req.Width,
		Height:      req.Height,
		Ratio:       profile.Ratio,
		Orientation: string(profile.Orientation),
		Framing:     profile.Framing,
	})
	if err != nil {
		return nil, err
	}

	prompt := Compose(desc, profile)
	sub, err := s.queue.Submit(ctx, creds.RenderKey, fal.SubmitInput{
		Prompt: prompt.String(),
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		return nil, err
	}
	return &Submission{JobID: sub.RequestID, StatusURL: sub.StatusURL, ResultURL: sub.ResponseURL}, nil
}

// Status translates the remote job state into the canonical shape. When the
// queue reports completion it performs exactly one result fetch in the same
// call and attaches the first image's URL; a failed result fetch fails the
// whole query.
func (s *Service) Status(ctx context.Context, renderKey, jobID string) (*JobStatus, error) {
	status, err := s.queue.Status(ctx, renderKey, jobID)
	if err != nil {
		return nil, err
	}
	switch status.Status {
	case fal.StatusInQueue:
		return &JobStatus{State: StateQueued, QueuePosition: status.QueuePosition}, nil
	case fal.StatusInProgress:
		return &JobStatus{State: StateRunning}, nil
	case fal.StatusCompleted:
		result, err := s.queue.Result(ctx, renderKey, jobID)
		if err != nil {
			if errors.Is(err, fal.ErrNotReady) {
				// The queue contradicted itself: completed status, pending
				// result. Surface it as an upstream error, not a retriable
				// state.
				return nil, &fal.QueueError{Op: "result", StatusCode: http.StatusBadGateway, Message: "job reported completed but result is unavailable"}
			}
			return nil, err
		}
		if len(result.Images) == 0 {
			return nil, fal.ErrNoImage
		}
		return &JobStatus{State: StateCompleted, ImageURL: result.Images[0].URL}, nil
	default:
		return nil, &fal.QueueError{Op: "status", StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("unrecognized upstream state %q", status.Status)}
	}
}

// Open fetches the finished artifact for streaming. fal.ErrNotReady
// propagates untouched so the HTTP layer can answer with a retriable
// not-ready response instead of an error.
func (s *Service) Open(ctx context.Context, renderKey, jobID string) (*ImageStream, error) {
	result, err := s.queue.Result(ctx, renderKey, jobID)
	if err != nil {
		return nil, err
	}
	if len(result.Images) == 0 {
		return nil, fal.ErrNoImage
	}
	img := result.Images[0]
	body, cdnType, err := s.queue.Download(ctx, img.URL)
	if err != nil {
		return nil, err
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = cdnType
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return &ImageStream{Body: body, ContentType: contentType}, nil
}
