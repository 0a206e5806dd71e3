// Package client is a typed Go client for the SwiftCV API. It keeps the
// session token from the last successful login and caches resume previews so
// repeated reads of the same resume do not refetch it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/harshshukla07/SwiftCV/internal/resume"
)

// User is the sanitized account record the API returns.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Resume is the flattened wire shape of a resume. Timestamps are only present
// on list, public and mutation responses.
type Resume struct {
	ID                  uint                `json:"id"`
	UserID              uint                `json:"user_id"`
	Title               string              `json:"title"`
	Public              bool                `json:"public"`
	Template            string              `json:"template"`
	AccentColor         string              `json:"accent_color"`
	ProfessionalSummary string              `json:"professional_summary"`
	Skills              []string            `json:"skills"`
	PersonalInfo        resume.PersonalInfo `json:"personal_info"`
	Experience          []resume.Experience `json:"experience"`
	Education           []resume.Education  `json:"education"`
	Projects            []resume.Project    `json:"projects"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
	UpdatedAt           *time.Time          `json:"updated_at,omitempty"`
}

// ResumeData is the full-document payload of an update. The server replaces
// the stored document with it wholesale.
type ResumeData struct {
	Title               string              `json:"title"`
	Public              bool                `json:"public"`
	Template            string              `json:"template,omitempty"`
	AccentColor         string              `json:"accent_color,omitempty"`
	ProfessionalSummary string              `json:"professional_summary"`
	Skills              []string            `json:"skills"`
	PersonalInfo        resume.PersonalInfo `json:"personal_info"`
	Experience          []resume.Experience `json:"experience"`
	Education           []resume.Education  `json:"education"`
	Projects            []resume.Project    `json:"projects"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a SwiftCV server.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.RWMutex
	token    string
	previews map[uint]*Resume
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithToken seeds an existing session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New constructs a Client for the server at baseURL, e.g.
// "https://api.example.com".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		previews:   make(map[uint]*Resume),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, empty when not logged in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Message == "" {
			failure.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: failure.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type authEnvelope struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account and stores the returned session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var envelope authEnvelope
	err := c.do(ctx, http.MethodPost, "/api/users/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	c.setToken(envelope.Token)
	return &envelope.User, nil
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var envelope authEnvelope
	err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	c.setToken(envelope.Token)
	return &envelope.User, nil
}

// UserData returns the authenticated user's record.
func (c *Client) UserData(ctx context.Context) (*User, error) {
	var envelope struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/data", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.User, nil
}

// ListResumes returns every resume owned by the authenticated user.
func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	var envelope struct {
		Resumes []Resume `json:"resumes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/resumes", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Resumes, nil
}

type resumeEnvelope struct {
	Resume Resume `json:"resume"`
}

// CreateResume creates an empty resume with the given title.
func (c *Client) CreateResume(ctx context.Context, title string) (*Resume, error) {
	var envelope resumeEnvelope
	err := c.do(ctx, http.MethodPost, "/api/resumes/create", map[string]string{"title": title}, &envelope)
	if err != nil {
		return nil, err
	}
	return &envelope.Resume, nil
}

// GetResume fetches one of the caller's resumes. The response carries no
// timestamps.
func (c *Client) GetResume(ctx context.Context, id uint) (*Resume, error) {
	var envelope resumeEnvelope
	path := "/api/resumes/get/" + strconv.FormatUint(uint64(id), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Resume, nil
}

// PublicResume fetches a resume by id without authentication. Only resumes
// whose public flag is set are served.
func (c *Client) PublicResume(ctx context.Context, id uint) (*Resume, error) {
	var envelope resumeEnvelope
	path := "/api/resumes/public/" + strconv.FormatUint(uint64(id), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Resume, nil
}

// UpdateResume replaces a resume's document and settings wholesale and drops
// any cached preview of it.
func (c *Client) UpdateResume(ctx context.Context, id uint, data ResumeData) (*Resume, error) {
	var envelope resumeEnvelope
	err := c.do(ctx, http.MethodPut, "/api/resumes/update", map[string]any{
		"resumeId":   id,
		"resumeData": data,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	c.InvalidatePreview(id)
	return &envelope.Resume, nil
}

// DeleteResume removes one of the caller's resumes and drops any cached
// preview of it. Deleting a missing id is not an error.
func (c *Client) DeleteResume(ctx context.Context, id uint) error {
	path := "/api/resumes/delete/" + strconv.FormatUint(uint64(id), 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.InvalidatePreview(id)
	return nil
}

// DuplicateResume deep-copies a resume under a collision-free title.
func (c *Client) DuplicateResume(ctx context.Context, id uint) (*Resume, error) {
	var envelope resumeEnvelope
	err := c.do(ctx, http.MethodPost, "/api/resumes/duplicate", map[string]uint{"resumeId": id}, &envelope)
	if err != nil {
		return nil, err
	}
	return &envelope.Resume, nil
}

// Preview returns a resume for display, serving repeated calls for the same
// id from an in-memory cache until the entry is invalidated.
func (c *Client) Preview(ctx context.Context, id uint) (*Resume, error) {
	c.mu.RLock()
	cached := c.previews[id]
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	fetched, err := c.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.previews[id] = fetched
	c.mu.Unlock()
	return fetched, nil
}

// InvalidatePreview drops the cached preview for id, forcing the next Preview
// call to refetch.
func (c *Client) InvalidatePreview(id uint) {
	c.mu.Lock()
	delete(c.previews, id)
	c.mu.Unlock()
}

func (c *Client) enhance(ctx context.Context, path, content string) (string, error) {
	var envelope struct {
		EnhancedContent string `json:"enhancedContent"`
	}
	err := c.do(ctx, http.MethodPost, path, map[string]string{"userContent": content}, &envelope)
	if err != nil {
		return "", err
	}
	return envelope.EnhancedContent, nil
}

// EnhanceSummary rewrites a professional summary through the server's AI
// endpoint.
func (c *Client) EnhanceSummary(ctx context.Context, content string) (string, error) {
	return c.enhance(ctx, "/api/ai/enhance-pro-sum", content)
}

// EnhanceJobDescription rewrites a job description through the server's AI
// endpoint.
func (c *Client) EnhanceJobDescription(ctx context.Context, content string) (string, error) {
	return c.enhance(ctx, "/api/ai/enhance-job-desc", content)
}

// UploadResumeText sends free-form resume text for AI extraction; the server
// persists and returns the structured resume.
func (c *Client) UploadResumeText(ctx context.Context, title, resumeText string) (*Resume, error) {
	var envelope resumeEnvelope
	err := c.do(ctx, http.MethodPost, "/api/ai/upload-resume", map[string]string{
		"title":      title,
		"resumeText": resumeText,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return &envelope.Resume, nil
}
