package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wallgen/internal/infra"
)

const defaultTimeout = 60 * time.Second

// Options configures the synthesizer.
type Options struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Synthesizer turns a sparse generation request into a structured scene
// description through one schema-constrained chat-completions call. The API
// key is supplied per call, never stored.
type Synthesizer struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewSynthesizer constructs a synthesizer with sane defaults.
func NewSynthesizer(opts Options) *Synthesizer {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Synthesizer{
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     opts.Logger,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type       string          `json:"type"`
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatJSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// descriptionSchema is derived once from the Description type; the provider
// enforces it, the synthesizer re-validates after parsing.
var descriptionSchema = mustDescriptionSchema()

func mustDescriptionSchema() json.RawMessage {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	schema := reflector.Reflect(&Description{})
	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("scene: reflect description schema: %v", err))
	}
	return data
}

// Synthesize performs one language-model call and returns the validated
// scene description. Failures are never retried here; they propagate with
// enough detail for the caller to choose a response.
func (s *Synthesizer) Synthesize(ctx context.Context, apiKey string, req Request) (*Description, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	payload := chatRequest{
		Model:       s.model,
		Temperature: 0.7,
		ResponseFormat: &chatFormat{
			Type: "json_schema",
			JSONSchema: &chatJSONSchema{
				Name:   "scene_description",
				Strict: true,
				Schema: descriptionSchema,
			},
		},
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: buildUserMessage(req)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("scene: encode request: %w", err)
	}

	endpoint := s.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("scene: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))

	s.logEvent("scene_synthesis_attempt", req.City, 0)
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logFailure("scene_synthesis_failed", req.City, err)
		return nil, &UpstreamError{Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		msg := readUpstreamError(resp.Body)
		s.logEvent("scene_synthesis_failed", req.City, resp.StatusCode)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		s.logFailure("scene_synthesis_failed", req.City, err)
		return nil, &MalformedError{Reason: "invalid completion envelope", Err: err}
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var desc Description
	if err := json.Unmarshal([]byte(text), &desc); err != nil {
		return nil, &MalformedError{Reason: "payload is not the expected JSON shape", Err: err}
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	s.logEvent("scene_synthesis_completed", req.City, resp.StatusCode)
	return &desc, nil
}

func buildUserMessage(req Request) string {
	caser := cases.Title(language.Und)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "City: %s. Weather: %s. Moment: %s.", caser.String(strings.TrimSpace(req.City)), strings.TrimSpace(req.Weather), strings.TrimSpace(req.Moment))
	fmt.Fprintf(sb, " Target wallpaper: %dx%d pixels, ratio %s, %s orientation.", req.Width, req.Height, req.Ratio, req.Orientation)
	if req.Framing != "" {
		sb.WriteString(" " + req.Framing)
	}
	return sb.String()
}

func readUpstreamError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}
	var parsed chatErrorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(data))
}

func (s *Synthesizer) logEvent(event, city string, status int) {
	if s.logger == nil {
		return
	}
	evt := s.logger.Info().Str("event", event).Str("city", city).Str("instruction_version", InstructionVersion)
	if status != 0 {
		evt = evt.Int("upstream_status", status)
	}
	evt.Msg("language model call")
}

func (s *Synthesizer) logFailure(event, city string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error().Str("event", event).Str("city", city).Err(err).Msg("language model call")
}
