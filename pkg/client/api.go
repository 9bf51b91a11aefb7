// Package client is the notes data layer for front ends: an HTTP client for
// the API and a Store that applies edits optimistically and syncs them in
// the background.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotePatch is a partial note; nil fields are left out of the request.
type NotePatch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// Merge overlays later onto p; fields set in later win.
func (p NotePatch) Merge(later NotePatch) NotePatch {
	if later.Title != nil {
		p.Title = later.Title
	}
	if later.Content != nil {
		p.Content = later.Content
	}
	if later.Tags != nil {
		p.Tags = later.Tags
	}
	return p
}

func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil
}

func (p NotePatch) apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = append([]string{}, (*p.Tags)...)
	}
}

// APIError carries the server's {"error": ...} message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Backend is the API surface the Store depends on.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*User, error)
	ListNotes(ctx context.Context) ([]Note, error)
	CreateNote(ctx context.Context, patch NotePatch) (*Note, error)
	UpdateNote(ctx context.Context, id string, patch NotePatch) (*Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// API talks to the notes server; the session cookie lives in its jar.
type API struct {
	BaseURL string
	HTTP    *http.Client
}

// NewAPI takes the API root, e.g. http://localhost:8080/api.
func NewAPI(baseURL string) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Jar: jar, Timeout: 15 * time.Second},
	}, nil
}

type userEnvelope struct {
	User User `json:"user"`
}

func (a *API) Register(ctx context.Context, name, email, password string) (*User, error) {
	var out userEnvelope
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/auth", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (a *API) Login(ctx context.Context, email, password string) (*User, error) {
	var out userEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (a *API) Me(ctx context.Context) (*User, error) {
	var out userEnvelope
	if err := a.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (a *API) ListNotes(ctx context.Context) ([]Note, error) {
	var out []Note
	if err := a.do(ctx, http.MethodGet, "/notes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNote sends the new-note defaults overlaid with patch.
func (a *API) CreateNote(ctx context.Context, patch NotePatch) (*Note, error) {
	title, content, tags := "Untitled", "", []string{}
	body := NotePatch{Title: &title, Content: &content, Tags: &tags}.Merge(patch)
	var out Note
	if err := a.do(ctx, http.MethodPost, "/notes", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type updateBody struct {
	ID string `json:"id"`
	NotePatch
}

func (a *API) UpdateNote(ctx context.Context, id string, patch NotePatch) (*Note, error) {
	var out Note
	if err := a.do(ctx, http.MethodPut, "/notes", updateBody{ID: id, NotePatch: patch}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteNote(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/notes?id="+url.QueryEscape(id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeError(res *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Error == "" {
		return &APIError{Status: res.StatusCode, Message: fmt.Sprintf("HTTP error! status: %d", res.StatusCode)}
	}
	return &APIError{Status: res.StatusCode, Message: body.Error}
}

var _ Backend = (*API)(nil)
