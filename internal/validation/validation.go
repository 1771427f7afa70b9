package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/models"
)

var (
	// Pipeline variable names: letters, digits, '.', '_' and '-', not starting with a digit
	variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._-]*$`)
)

const (
	maxRulesLength = 64 * 1024
	maxFiles       = 100000
)

// Validator provides validation methods
type Validator struct{}

// New creates a new validator instance
func New() *Validator {
	return &Validator{}
}

// ValidateClassifyRequest validates a classify request
func (v *Validator) ValidateClassifyRequest(req *models.ClassifyRequest) *errors.AppError {
	if req == nil {
		return errors.InvalidRequest("Request body is required")
	}

	if len(req.Rules) > maxRulesLength {
		return errors.InvalidRequest("Rules too long (maximum 65536 characters)")
	}

	if req.Variable != "" && !v.IsValidVariableName(req.Variable) {
		return errors.InvalidRequest("Invalid variable name: " + req.Variable)
	}

	if req.Files != nil {
		if len(*req.Files) > maxFiles {
			return errors.InvalidRequest("Too many files (maximum 100000)")
		}
		for _, f := range *req.Files {
			if strings.ContainsRune(f, '\x00') {
				return errors.InvalidRequest("File paths must not contain NUL bytes")
			}
		}
	}

	return nil
}

// IsValidVariableName checks if a name can be used as a pipeline variable
func (v *Validator) IsValidVariableName(name string) bool {
	return variableNamePattern.MatchString(strings.TrimSpace(name))
}

// IsValidCollectionURI checks if a collection URI is an absolute http(s) URL
func (v *Validator) IsValidCollectionURI(uri string) bool {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ParseID parses a positive numeric pipeline id
func (v *Validator) ParseID(name, value string) (int, *errors.AppError) {
	if strings.TrimSpace(value) == "" {
		return 0, errors.MissingVariable(name)
	}

	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, errors.ConfigInvalid("Invalid " + name + ": must be a positive number")
	}

	return id, nil
}

// IsValidPort checks if a TCP port is in range
func (v *Validator) IsValidPort(port int) bool {
	return port > 0 && port <= 65535
}
