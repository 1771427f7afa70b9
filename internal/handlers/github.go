package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/changed-files/internal/models"
)

// GitHubWebhook handles GitHub push webhook requests
func (h *Handler) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	config := WebhookConfig{
		Provider:        ProviderGitHub,
		SignatureHeader: "X-Hub-Signature-256",
		Secret:          h.opts.GitHubWebhookSecret,
		SignaturePrefix: "sha256=",
	}

	h.handleWebhook(w, r, config, func(body []byte) (WebhookPayload, error) {
		var payload models.GitHubPushPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
}
