package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/changed-files/internal/models"
)

// GiteaWebhook handles Gitea push webhook requests
func (h *Handler) GiteaWebhook(w http.ResponseWriter, r *http.Request) {
	config := WebhookConfig{
		Provider:        ProviderGitea,
		SignatureHeader: "X-Gitea-Signature",
		Secret:          h.opts.GiteaWebhookSecret,
	}

	h.handleWebhook(w, r, config, func(body []byte) (WebhookPayload, error) {
		var payload models.GiteaPushPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
}
