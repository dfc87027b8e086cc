package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wallgen/internal/infra"
)

const defaultTimeout = 120 * time.Second

// Options configures the render-queue client.
type Options struct {
	QueueBaseURL string
	SyncBaseURL  string
	Model        string
	RestyleModel string
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

// Client performs HTTP calls against the render service's queue, its
// synchronous endpoint, and its content store. Credentials are supplied per
// call and never retained.
type Client struct {
	queueBaseURL string
	syncBaseURL  string
	model        string
	restyleModel string
	httpClient   *http.Client
	logger       *infra.Logger
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	queueBase := strings.TrimRight(opts.QueueBaseURL, "/")
	if queueBase == "" {
		queueBase = "https://queue.fal.run"
	}
	syncBase := strings.TrimRight(opts.SyncBaseURL, "/")
	if syncBase == "" {
		syncBase = "https://fal.run"
	}
	model := strings.Trim(opts.Model, "/")
	if model == "" {
		model = "fal-ai/flux/dev"
	}
	restyleModel := strings.Trim(opts.RestyleModel, "/")
	if restyleModel == "" {
		restyleModel = model + "/image-to-image"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		queueBaseURL: queueBase,
		syncBaseURL:  syncBase,
		model:        model,
		restyleModel: restyleModel,
		httpClient:   client,
		logger:       opts.Logger,
	}
}

// Submit enqueues one render without waiting for completion.
func (c *Client) Submit(ctx context.Context, apiKey string, in SubmitInput) (*Submission, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	payload := submitPayload{
		Prompt:       in.Prompt,
		ImageSize:    imageSize{Width: in.Width, Height: in.Height},
		OutputFormat: "png",
	}
	endpoint := fmt.Sprintf("%s/%s", c.queueBaseURL, c.model)
	var sub Submission
	if err := c.postJSON(ctx, apiKey, "submit", endpoint, payload, &sub); err != nil {
		return nil, err
	}
	if sub.RequestID == "" {
		return nil, &QueueError{Op: "submit", StatusCode: http.StatusInternalServerError, Message: "submission response carried no request id"}
	}
	if sub.StatusURL == "" {
		sub.StatusURL = fmt.Sprintf("%s/%s/requests/%s/status", c.queueBaseURL, c.model, sub.RequestID)
	}
	if sub.ResponseURL == "" {
		sub.ResponseURL = fmt.Sprintf("%s/%s/requests/%s", c.queueBaseURL, c.model, sub.RequestID)
	}
	c.logEvent("queue_submit_completed", sub.RequestID, 0)
	return &sub, nil
}

// Status polls the queue for the raw upstream state of one job.
func (c *Client) Status(ctx context.Context, apiKey, requestID string) (*QueueStatus, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	endpoint := fmt.Sprintf("%s/%s/requests/%s/status", c.queueBaseURL, c.model, requestID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fal: build status request: %w", err)
	}
	c.authorize(httpReq, apiKey)

	c.logEvent("queue_status_attempt", requestID, 0)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &QueueError{Op: "status", StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		c.logEvent("queue_status_failed", requestID, resp.StatusCode)
		return nil, &QueueError{Op: "status", StatusCode: normalizeStatus(resp.StatusCode), Message: readBody(resp.Body)}
	}
	var status QueueStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &QueueError{Op: "status", StatusCode: http.StatusInternalServerError, Message: "undecodable status response: " + err.Error()}
	}
	return &status, nil
}

// Result fetches a job's payload. A client-error status is the queue's
// canonical "not ready yet" answer and maps to ErrNotReady.
func (c *Client) Result(ctx context.Context, apiKey, requestID string) (*Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	endpoint := fmt.Sprintf("%s/%s/requests/%s", c.queueBaseURL, c.model, requestID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fal: build result request: %w", err)
	}
	c.authorize(httpReq, apiKey)

	c.logEvent("queue_result_attempt", requestID, 0)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &QueueError{Op: "result", StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		c.logEvent("queue_result_pending", requestID, resp.StatusCode)
		return nil, ErrNotReady
	}
	if resp.StatusCode >= 300 {
		c.logEvent("queue_result_failed", requestID, resp.StatusCode)
		return nil, &QueueError{Op: "result", StatusCode: normalizeStatus(resp.StatusCode), Message: readBody(resp.Body)}
	}
	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &QueueError{Op: "result", StatusCode: http.StatusInternalServerError, Message: "undecodable result response: " + err.Error()}
	}
	c.logEvent("queue_result_completed", requestID, 0)
	return &result, nil
}

// Download streams the binary artifact from the content store. The returned
// reader must be closed by the caller; the second value is the CDN-reported
// content type, which may be empty.
func (c *Client) Download(ctx context.Context, imageURL string) (io.ReadCloser, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fal: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", &FetchError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		msg := readBody(resp.Body)
		_ = resp.Body.Close()
		return nil, "", &FetchError{StatusCode: normalizeStatus(resp.StatusCode), Message: msg}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Generate performs one blocking render on the synchronous endpoint.
func (c *Client) Generate(ctx context.Context, apiKey string, in SubmitInput) (*Image, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	payload := submitPayload{
		Prompt:       in.Prompt,
		ImageSize:    imageSize{Width: in.Width, Height: in.Height},
		OutputFormat: "png",
	}
	endpoint := fmt.Sprintf("%s/%s", c.syncBaseURL, c.model)
	var result Result
	if err := c.postJSON(ctx, apiKey, "generate", endpoint, payload, &result); err != nil {
		return nil, err
	}
	if len(result.Images) == 0 {
		return nil, ErrNoImage
	}
	return &result.Images[0], nil
}

// Restyle performs one blocking image-to-image render. The source image is
// passed as a data URL; callers convert unsupported formats beforehand.
func (c *Client) Restyle(ctx context.Context, apiKey, prompt, imageDataURL string) (*Image, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	payload := restylePayload{
		Prompt:       prompt,
		ImageURL:     imageDataURL,
		Strength:     0.85,
		OutputFormat: "png",
	}
	endpoint := fmt.Sprintf("%s/%s", c.syncBaseURL, c.restyleModel)
	var result Result
	if err := c.postJSON(ctx, apiKey, "restyle", endpoint, payload, &result); err != nil {
		return nil, err
	}
	if len(result.Images) == 0 {
		return nil, ErrNoImage
	}
	return &result.Images[0], nil
}

func (c *Client) postJSON(ctx context.Context, apiKey, op, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("fal: encode %s request: %w", op, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fal: build %s request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq, apiKey)

	c.logEvent("queue_"+op+"_attempt", "", 0)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logFailure("queue_"+op+"_failed", err)
		return &QueueError{Op: op, StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		c.logEvent("queue_"+op+"_failed", "", resp.StatusCode)
		return &QueueError{Op: op, StatusCode: normalizeStatus(resp.StatusCode), Message: readBody(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &QueueError{Op: op, StatusCode: http.StatusInternalServerError, Message: "undecodable response: " + err.Error()}
	}
	return nil
}

func (c *Client) authorize(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Key "+strings.TrimSpace(apiKey))
}

func readBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "no error detail"
	}
	return strings.TrimSpace(string(data))
}

func (c *Client) logEvent(event, requestID string, status int) {
	if c.logger == nil {
		return
	}
	evt := c.logger.Info().Str("event", event).Str("model", c.model)
	if requestID != "" {
		evt = evt.Str("request_id", requestID)
	}
	if status != 0 {
		evt = evt.Int("upstream_status", status)
	}
	evt.Msg("render service call")
}

func (c *Client) logFailure(event string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Error().Str("event", event).Str("model", c.model).Err(err).Msg("render service call")
}
