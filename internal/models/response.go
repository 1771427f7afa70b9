package models

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ClassifyRequest is the body of POST /classify. A nil Files means the
// baseline is unknown and every category is reported as changed.
type ClassifyRequest struct {
	Rules    string    `json:"rules"`
	Variable string    `json:"variable,omitempty"`
	Files    *[]string `json:"files"`
}

// CategoryResult is one category decision
type CategoryResult struct {
	Name    string `json:"name"`
	Changed bool   `json:"changed"`
}

// ClassifyResponse lists category decisions in declaration order
type ClassifyResponse struct {
	Results []CategoryResult `json:"results"`
	Files   int              `json:"files"`
}

// WebhookResponse is returned after classifying a push webhook
type WebhookResponse struct {
	Provider   string           `json:"provider"`
	Repository string           `json:"repository"`
	Branch     string           `json:"branch"`
	Commits    int              `json:"commits"`
	Results    []CategoryResult `json:"results"`
}
