package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/models"
)

// WebhookProvider represents different webhook providers
type WebhookProvider string

const (
	ProviderGitea  WebhookProvider = "Gitea"
	ProviderGitHub WebhookProvider = "GitHub"
)

// WebhookConfig holds configuration for webhook processing
type WebhookConfig struct {
	Provider        WebhookProvider
	SignatureHeader string
	Secret          string
	SignaturePrefix string // e.g., "sha256=" for GitHub
}

// WebhookPayload is a generic interface for push webhook payloads
type WebhookPayload interface {
	GetRepositoryName() string
	GetBranch() string
	GetCommits() []models.CommitInfo
	IsNewBranch() bool
}

// handleWebhook is a generic webhook handler that classifies the files of a
// Gitea or GitHub push. Rules come from the "rules" query parameter or the
// configured default.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request, config WebhookConfig, parsePayload func([]byte) (WebhookPayload, error)) {
	// Get signature from header
	headerSignature := r.Header.Get(config.SignatureHeader)
	if headerSignature == "" && config.Secret != "" {
		h.log.Warnf("%s webhook received without signature header", config.Provider)
		h.writeAppError(w, errors.Unauthorized(fmt.Sprintf("Missing %s header", config.SignatureHeader)))
		return
	}

	// Read the raw body for signature verification
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeAppError(w, errors.InvalidRequest("Failed to read request body: "+err.Error()))
		return
	}

	// Verify webhook signature
	if !h.verifyWebhookSignature(body, headerSignature, config) {
		h.log.Warnf("Invalid %s webhook signature", config.Provider)
		h.writeAppError(w, errors.Unauthorized("Invalid webhook signature"))
		return
	}

	// Parse webhook payload using provider-specific parser
	payload, err := parsePayload(body)
	if err != nil {
		h.writeAppError(w, errors.InvalidRequest("Invalid webhook payload: "+err.Error()))
		return
	}

	query := r.URL.Query()
	text := query.Get("rules")
	if text == "" {
		text = h.opts.DefaultRules
	}
	variable := query.Get("variable")
	if variable == "" {
		variable = h.opts.DefaultVariable
	}
	if !h.validator.IsValidVariableName(variable) {
		h.writeAppError(w, errors.InvalidRequest("Invalid variable name: "+variable))
		return
	}

	rs, err := h.rules.ruleSet(text, variable)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	commits := payload.GetCommits()
	log := h.log.With("provider", config.Provider).With("repository", payload.GetRepositoryName())

	var result classifier.Result
	if payload.IsNewBranch() {
		log.Infof("push created branch %s, assuming everything changed", payload.GetBranch())
		result, err = h.classifier.Classify(r.Context(), rs, baseline.Unresolved{Reason: "new branch"})
	} else {
		result, err = h.classifier.Match(rs, models.ChangedFiles(commits))
	}
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	log.Infof("classified push of %d commits to %s", len(commits), payload.GetBranch())
	h.writeJSON(w, &models.WebhookResponse{
		Provider:   string(config.Provider),
		Repository: payload.GetRepositoryName(),
		Branch:     payload.GetBranch(),
		Commits:    len(commits),
		Results:    categoryResults(result),
	}, http.StatusOK)
}

// verifyWebhookSignature verifies the HMAC SHA256 signature of the webhook payload
func (h *Handler) verifyWebhookSignature(payload []byte, headerSignature string, config WebhookConfig) bool {
	if config.Secret == "" {
		// If no secret is configured, skip signature verification
		h.log.Warnf("%s webhook secret not configured, skipping signature verification", config.Provider)
		return true
	}

	// Handle signature prefix (e.g., "sha256=" for GitHub)
	providedSignature := headerSignature
	if config.SignaturePrefix != "" {
		if !strings.HasPrefix(headerSignature, config.SignaturePrefix) {
			return false
		}
		providedSignature = strings.TrimPrefix(headerSignature, config.SignaturePrefix)
	}

	mac := hmac.New(sha256.New, []byte(config.Secret))
	mac.Write(payload)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(providedSignature), []byte(expectedSignature))
}
