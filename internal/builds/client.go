// Package builds queries the Azure DevOps Build REST API for the previous
// successful build of a pipeline and the commits associated with a build.
package builds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/models"
)

const (
	apiVersion        = "6.0"
	continuationToken = "X-MS-ContinuationToken"
	maxErrorBody      = 512
)

// Client talks to one Azure DevOps organization (collection).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a client for the collection URI, e.g.
// https://dev.azure.com/org/. An empty token sends unauthenticated requests,
// which works for public projects.
func NewClient(collectionURI, token string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(collectionURI, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// LatestSuccessfulBuild returns the most recently finished successful build of
// a pipeline definition, or nil when there is none. branch optionally limits
// the search to one branch.
func (c *Client) LatestSuccessfulBuild(ctx context.Context, project string, definitionID int, branch string) (*models.Build, error) {
	q := url.Values{}
	q.Set("definitions", strconv.Itoa(definitionID))
	q.Set("resultFilter", "succeeded")
	q.Set("statusFilter", "completed")
	q.Set("queryOrder", "finishTimeDescending")
	q.Set("$top", "1")
	if branch = strings.TrimSpace(branch); branch != "" {
		if !strings.HasPrefix(branch, "refs/") {
			branch = "refs/heads/" + branch
		}
		q.Set("branchName", branch)
	}

	var list models.BuildList
	if _, err := c.get(ctx, c.projectURL(project, "_apis/build/builds"), q, &list); err != nil {
		return nil, queryFailed(ctx, err, "latest successful build")
	}

	if len(list.Value) == 0 {
		c.log.Debugf("no successful build found for definition %d", definitionID)
		return nil, nil
	}
	build := list.Value[0]
	c.log.Debugf("latest successful build is %d (%s) at %s", build.ID, build.BuildNumber, build.SourceVersion)
	return &build, nil
}

// BuildCommits returns the ids of the commits associated with a build, in
// the order the service reports them. Paged responses are followed.
func (c *Client) BuildCommits(ctx context.Context, project string, buildID int) ([]string, error) {
	c.log.Debugf("get the list of changes for the build %d", buildID)

	endpoint := c.projectURL(project, fmt.Sprintf("_apis/build/builds/%d/changes", buildID))
	ids := make([]string, 0)
	token := ""
	for {
		q := url.Values{}
		if token != "" {
			q.Set("continuationToken", token)
		}

		var page models.ChangeList
		header, err := c.get(ctx, endpoint, q, &page)
		if err != nil {
			return nil, queryFailed(ctx, err, fmt.Sprintf("changes of build %d", buildID))
		}
		ids = append(ids, page.CommitIDs()...)

		token = header.Get(continuationToken)
		if token == "" {
			return ids, nil
		}
	}
}

// queryFailed classifies a failed request. A request aborted by the run's
// context is a cancellation, not a service failure.
func queryFailed(ctx context.Context, err error, what string) *errors.AppError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Cancelled(ctxErr)
	}
	return errors.BuildQueryFailed(err, what)
}

func (c *Client) projectURL(project, path string) string {
	return c.baseURL + "/" + url.PathEscape(project) + "/" + path
}

// get performs an authenticated GET and decodes a JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out interface{}) (http.Header, error) {
	q.Set("api-version", apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debugf("GET %s", req.URL.Redacted())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("GET %s: unexpected status %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return resp.Header, nil
}
