// Package client talks to the skill-test API on behalf of a proctored
// attempt. *Client satisfies proctor.Submitter and proctor.ProgressSaver.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/proctor"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Body.Code, e.Body.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Body.Message)
}

// Unwrap makes final client errors match proctor.ErrSubmissionRejected so the
// runner does not retry them.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return nil
	case e.Status >= 400 && e.Status < 500:
		return proctor.ErrSubmissionRejected
	}
	return nil
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

func (c *Client) CreateAttempt(ctx context.Context, req dto.CreateSkillTestRequest) (*dto.CreateSkillTestResponse, error) {
	var resp dto.CreateSkillTestResponse
	if err := c.do(ctx, http.MethodPost, "/skill-test/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetAttempt(ctx context.Context, attemptID string) (*dto.AttemptViewDTO, error) {
	var view dto.AttemptViewDTO
	path := "/skill-test?attemptId=" + url.QueryEscape(attemptID)
	if err := c.do(ctx, http.MethodGet, path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) StartAttempt(ctx context.Context, attemptID string) (*dto.AttemptViewDTO, error) {
	var view dto.AttemptViewDTO
	if err := c.do(ctx, http.MethodPost, "/skill-test/start", dto.AttemptRefRequest{AttemptID: attemptID}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Submit(ctx context.Context, attemptID string, answers []*int, reason proctor.Reason) (*dto.SkillTestResultDTO, error) {
	req := dto.SubmitSkillTestRequest{AttemptID: attemptID, MCQAnswers: answers, Reason: string(reason)}
	var res dto.SkillTestResultDTO
	if err := c.do(ctx, http.MethodPost, "/skill-test/submit", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Forfeit(ctx context.Context, attemptID string) error {
	return c.do(ctx, http.MethodPost, "/skill-test/forfeit", dto.AttemptRefRequest{AttemptID: attemptID}, nil)
}

func (c *Client) SaveProgress(ctx context.Context, attemptID string, p proctor.Progress) error {
	req := dto.SaveProgressRequest{
		AttemptID:      attemptID,
		MCQAnswers:     p.Answers,
		LockedIndices:  p.LockedIndices,
		TabSwitchCount: p.TabSwitchCount,
	}
	return c.do(ctx, http.MethodPost, "/skill-test/progress", req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr.Body); decodeErr != nil {
			apiErr.Body.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// MachineConfig turns a fetched attempt into the state machine's config,
// resuming from the server's deadline when the attempt already started.
func MachineConfig(view *dto.AttemptViewDTO, violationThreshold int, now time.Time) proctor.Config {
	cfg := proctor.Config{
		QuestionCount:           len(view.Questions),
		OptionCounts:            make([]int, len(view.Questions)),
		TimeLimitMinutes:        view.TimeLimitMinutes,
		PerQuestionTimerEnabled: view.PerQuestionTimerEnabled,
		OneTimeVisit:            view.OneTimeVisit,
		ViolationThreshold:      violationThreshold,
		Answers:                 view.MCQAnswers,
		LockedIndices:           view.LockedIndices,
		TabSwitchCount:          view.TabSwitchCount,
	}
	for i, q := range view.Questions {
		cfg.OptionCounts[i] = len(q.Options)
	}
	if view.PerQuestionTimeMinutes != nil {
		cfg.PerQuestionTimeMinutes = *view.PerQuestionTimeMinutes
	}
	if view.Deadline != nil {
		remaining := int(view.Deadline.Sub(now) / time.Second)
		if remaining < 1 {
			remaining = 1
		}
		cfg.RemainingSeconds = remaining
	}
	return cfg
}
