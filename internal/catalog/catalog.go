package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wallgen/internal/infra"
)

const defaultTimeout = 15 * time.Second

// Pricing is the gateway's static price annotation. Amounts are USD.
type Pricing struct {
	InputPerMTok  float64 `json:"input_per_mtok,omitempty"`
	OutputPerMTok float64 `json:"output_per_mtok,omitempty"`
	PerImage      float64 `json:"per_image,omitempty"`
}

// Model is one catalog entry: an upstream model annotated with local pricing.
type Model struct {
	ID       string   `json:"id"`
	Provider string   `json:"provider"`
	Kind     string   `json:"kind"`
	Pricing  *Pricing `json:"pricing,omitempty"`
}

// ProxyError reports a failed upstream catalog fetch.
type ProxyError struct {
	StatusCode int
	Message    string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("catalog: upstream returned status %d: %s", e.StatusCode, e.Message)
}

// Pricing and render-model entries are maintained by hand; the upstream list
// only tells us what exists, not what it costs through this gateway.
var textPricing = map[string]Pricing{
	"gpt-4o-mini": {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4o":      {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"gpt-4.1":     {InputPerMTok: 2.00, OutputPerMTok: 8.00},
}

var renderModels = []Model{
	{ID: "fal-ai/flux/dev", Provider: "fal", Kind: "image", Pricing: &Pricing{PerImage: 0.025}},
	{ID: "fal-ai/flux/dev/image-to-image", Provider: "fal", Kind: "image", Pricing: &Pricing{PerImage: 0.025}},
	{ID: "fal-ai/flux-pro/v1.1", Provider: "fal", Kind: "image", Pricing: &Pricing{PerImage: 0.04}},
}

// Options configures the catalog client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client proxies the language-model provider's model list.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a catalog client with sane defaults.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: client, logger: opts.Logger}
}

type upstreamModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// List fetches the provider's model list, annotates entries with the local
// pricing table, and appends the render-service models.
func (c *Client) List(ctx context.Context, apiKey string) ([]Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))

	if c.logger != nil {
		c.logger.Info().Str("event", "catalog_fetch_attempt").Msg("model catalog call")
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProxyError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Error().Str("event", "catalog_fetch_failed").Int("upstream_status", resp.StatusCode).Msg("model catalog call")
		}
		return nil, &ProxyError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	var upstream upstreamModelList
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return nil, &ProxyError{StatusCode: http.StatusInternalServerError, Message: "undecodable model list: " + err.Error()}
	}

	models := make([]Model, 0, len(upstream.Data)+len(renderModels))
	for _, m := range upstream.Data {
		entry := Model{ID: m.ID, Provider: "openai", Kind: "text"}
		if p, ok := textPricing[m.ID]; ok {
			price := p
			entry.Pricing = &price
		}
		models = append(models, entry)
	}
	models = append(models, renderModels...)
	return models, nil
}
