package fal

// Upstream queue states as reported by the render service.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// SubmitInput is the serialized prompt plus the exact canvas to render.
type SubmitInput struct {
	Prompt string
	Width  int
	Height int
}

// Submission is the immediate response to a queue submission. The gateway
// stores none of it; the caller keeps the request ID for later polls.
type Submission struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// QueueStatus is the raw polling response from the queue.
type QueueStatus struct {
	Status        string `json:"status"`
	QueuePosition *int   `json:"queue_position,omitempty"`
	ResponseURL   string `json:"response_url"`
}

// Image describes one rendered artifact hosted on the service's CDN.
type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Result is a completed job's payload.
type Result struct {
	Images []Image `json:"images"`
}

type submitPayload struct {
	Prompt       string    `json:"prompt"`
	ImageSize    imageSize `json:"image_size"`
	OutputFormat string    `json:"output_format"`
}

type restylePayload struct {
	Prompt       string  `json:"prompt"`
	ImageURL     string  `json:"image_url"`
	Strength     float64 `json:"strength"`
	OutputFormat string  `json:"output_format"`
}

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
