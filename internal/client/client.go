// Package client is a typed HTTP client for the TravelShare backend API.
//
// The backend is a separately deployed service; this package only wraps its
// REST/JSON and multipart endpoints. Failed calls surface immediately to the
// caller, there are no retries and no backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"travelshare/internal/models"
	"travelshare/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// StatusError is returned when the backend answers with a non-success status.
type StatusError struct {
	Operation  string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.StatusCode)
}

// Filter narrows the post listing. Zero-value fields are omitted from the
// query string entirely, never sent empty.
type Filter struct {
	Keyword   string
	Sentiment string
}

// ImageUpload is an optional image attached to a new post.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CreatePostInput carries the multipart form fields for post creation.
type CreatePostInput struct {
	Username string
	Body     string
	Image    *ImageUpload
}

// CreatePostResult is the backend's response to a successful post creation.
type CreatePostResult struct {
	PostID         string  `json:"post_id"`
	ImageID        string  `json:"image_id"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

// Client talks to the TravelShare backend API.
type Client struct {
	baseURL string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets a per-request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.hc.Timeout = d
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListPosts fetches posts, newest first, optionally filtered by keyword and
// sentiment label.
func (c *Client) ListPosts(ctx context.Context, f Filter) ([]models.Post, error) {
	const op = "list_posts"
	span, ctx := observability.NewClientSpan(ctx, "client.ListPosts",
		attribute.String("posts.keyword", f.Keyword),
		attribute.String("posts.sentiment", f.Sentiment),
	)
	defer span.End()
	start := time.Now()

	reqURL := c.baseURL + "/posts/"
	q := url.Values{}
	if f.Keyword != "" {
		q.Set("keyword", f.Keyword)
	}
	if f.Sentiment != "" {
		q.Set("sentiment", f.Sentiment)
	}
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	var out struct {
		Posts []models.Post `json:"posts"`
	}
	err = c.doJSON(req, op, &out)
	observability.ObserveBackendCall(op, start, err)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("posts.count", len(out.Posts)))
	return out.Posts, nil
}

// CreatePost submits a new post as a multipart form. The image part is
// omitted entirely when no image is attached.
func (c *Client) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	const op = "create_post"
	span, ctx := observability.NewClientSpan(ctx, "client.CreatePost",
		attribute.String("post.username", in.Username),
		attribute.Bool("post.has_image", in.Image != nil),
	)
	defer span.End()
	start := time.Now()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("username", in.Username); err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := w.WriteField("body", in.Body); err != nil {
		span.SetError(err)
		return nil, err
	}
	if in.Image != nil {
		part, err := createImagePart(w, in.Image)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if _, err := part.Write(in.Image.Content); err != nil {
			span.SetError(err)
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		span.SetError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts/", &buf)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out CreatePostResult
	err = c.doJSON(req, op, &out)
	observability.ObserveBackendCall(op, start, err)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.String("post.id", out.PostID))
	return &out, nil
}

// PlanTrip requests an AI-generated itinerary and returns the plan text
// verbatim. Numeric request fields travel as JSON numbers.
func (c *Client) PlanTrip(ctx context.Context, in models.PlanRequest) (string, error) {
	const op = "plan_trip"
	span, ctx := observability.NewClientSpan(ctx, "client.PlanTrip",
		attribute.String("plan.city", in.City),
		attribute.Int("plan.days", in.Days),
	)
	defer span.End()
	start := time.Now()

	payload, err := json.Marshal(in)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/plan-trip/", bytes.NewReader(payload))
	if err != nil {
		span.SetError(err)
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.PlanResponse
	err = c.doJSON(req, op, &out)
	observability.ObserveBackendCall(op, start, err)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	return out.Plan, nil
}

// ImageURL returns the full-size image URL for the given image id.
// The id is path-escaped but otherwise not validated; no network call is made.
func (c *Client) ImageURL(id string) string {
	return c.baseURL + "/images/" + url.PathEscape(id)
}

// ThumbnailURL returns the thumbnail URL for the given image id.
func (c *Client) ThumbnailURL(id string) string {
	return c.ImageURL(id) + "/thumbnail"
}

// Ping checks backend reachability via its documentation endpoint, the same
// probe the container health check uses.
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping"
	span, ctx := observability.NewClientSpan(ctx, "client.Ping")
	defer span.End()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/docs", nil)
	if err != nil {
		span.SetError(err)
		return err
	}

	err = c.doJSON(req, op, nil)
	observability.ObserveBackendCall(op, start, err)
	if err != nil {
		span.SetError(err)
	}
	return err
}

// doJSON executes the request and decodes a JSON response body into out.
// A non-2xx status is an error; the body is never returned to the caller.
func (c *Client) doJSON(req *http.Request, op string, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return models.NewUpstreamError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.NewUpstreamError(op, &StatusError{Operation: op, StatusCode: resp.StatusCode})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// createImagePart writes a file part preserving the upload's content type,
// which mime/multipart's CreateFormFile would discard.
func createImagePart(w *multipart.Writer, img *ImageUpload) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
	ct := img.ContentType
	if ct == "" {
		ct = http.DetectContentType(img.Content)
	}
	h.Set("Content-Type", ct)
	return w.CreatePart(h)
}
