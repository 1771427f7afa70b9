package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/models"
)

const maxBodyBytes = 8 << 20

// Classify handles requests to classify an explicit list of changed files
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req models.ClassifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeAppError(w, errors.InvalidRequest("Invalid JSON request body: "+err.Error()))
		return
	}

	if appErr := h.validator.ValidateClassifyRequest(&req); appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	text := req.Rules
	if text == "" {
		text = h.opts.DefaultRules
	}
	variable := req.Variable
	if variable == "" {
		variable = h.opts.DefaultVariable
	}

	rs, err := h.rules.ruleSet(text, variable)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	var (
		result classifier.Result
		files  int
	)
	if req.Files == nil {
		result, err = h.classifier.Classify(r.Context(), rs, baseline.Unresolved{Reason: "no file list"})
	} else {
		files = len(*req.Files)
		result, err = h.classifier.Match(rs, *req.Files)
	}
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	h.log.With("categories", len(result)).Debugf("classified %d files", files)
	h.writeJSON(w, &models.ClassifyResponse{Results: categoryResults(result), Files: files}, http.StatusOK)
}
