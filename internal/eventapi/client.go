package eventapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const maxImageFetchBytes = 20 << 20

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the Event Service over HTTP. Calls are never retried.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient validates cfg and returns a client. A nil httpClient gets a client with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("eventapi: invalid base URL %q", cfg.BaseURL)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, token: cfg.Token, http: httpClient, logger: logger.With("component", "eventapi")}, nil
}

// ListEvents returns every event known to the service.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var resp listResponse
	if err := c.doJSON(ctx, "list events", http.MethodGet, c.endpoint("events"), nil, "", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RemoteError{Op: "list events", Message: resp.Message}
	}
	return resp.Events, nil
}

// CreateEvent persists a new event.
func (c *Client) CreateEvent(ctx context.Context, payload Payload) (Event, error) {
	return c.sendPayload(ctx, "create event", http.MethodPost, c.endpoint("events"), payload)
}

// UpdateEvent replaces the event with the given id.
func (c *Client) UpdateEvent(ctx context.Context, id string, payload Payload) (Event, error) {
	if strings.TrimSpace(id) == "" {
		return Event{}, fmt.Errorf("eventapi: update event: empty id")
	}
	return c.sendPayload(ctx, "update event", http.MethodPut, c.endpoint("events", id), payload)
}

// DeleteEvent removes the event with the given id.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("eventapi: delete event: empty id")
	}
	var resp statusResponse
	if err := c.doJSON(ctx, "delete event", http.MethodDelete, c.endpoint("events", id), nil, "", &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &RemoteError{Op: "delete event", Message: resp.Message}
	}
	return nil
}

// FetchImage downloads a remote image so it can be re-sent as a binary part.
// Relative references resolve against the base URL.
func (c *Client) FetchImage(ctx context.Context, ref string) (ImagePart, error) {
	target, err := c.baseURL.Parse(strings.TrimSpace(ref))
	if err != nil || strings.TrimSpace(ref) == "" {
		return ImagePart{}, fmt.Errorf("eventapi: invalid image reference %q", ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return ImagePart{}, fmt.Errorf("eventapi: build image request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ImagePart{}, &RemoteError{Op: "fetch image", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return ImagePart{}, &RemoteError{Op: "fetch image", StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageFetchBytes+1))
	if err != nil {
		return ImagePart{}, &RemoteError{Op: "fetch image", Err: err}
	}
	if len(data) > maxImageFetchBytes {
		return ImagePart{}, &RemoteError{Op: "fetch image", Message: "image exceeds fetch limit"}
	}

	mime := mimetype.Detect(data)
	name := path.Base(target.Path)
	if name == "" || name == "/" || name == "." {
		name = "image"
	}
	if path.Ext(name) == "" {
		name += mime.Extension()
	}
	return ImagePart{Filename: name, ContentType: mime.String(), Data: data}, nil
}

func (c *Client) sendPayload(ctx context.Context, op, method, endpoint string, payload Payload) (Event, error) {
	body, contentType, err := EncodePayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("eventapi: %s: %w", op, err)
	}
	var resp eventResponse
	if err := c.doJSON(ctx, op, method, endpoint, body, contentType, &resp); err != nil {
		return Event{}, err
	}
	if !resp.Success {
		return Event{}, &RemoteError{Op: op, Message: resp.Message}
	}
	return resp.Event, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("eventapi: %s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "event service call failed", "op", op, "request_id", requestID, "error", err)
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "event service call", "op", op, "request_id", requestID, "status", resp.StatusCode, "duration", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode/100 != 2 {
		var status statusResponse
		_ = json.Unmarshal(raw, &status)
		remote := &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: status.Message}
		if resp.StatusCode == http.StatusNotFound {
			remote.Err = ErrEventNotFound
		}
		return remote
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, strings.TrimSuffix(c.baseURL.Path, "/"))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u := *c.baseURL
	u.Path = strings.Join(escaped, "/")
	u.RawPath = ""
	return u.String()
}

// EncodePayload renders payload as multipart/form-data and returns the body and its content type.
func EncodePayload(p Payload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	audience, err := json.Marshal(nonNil(p.TargetAudience))
	if err != nil {
		return nil, "", fmt.Errorf("encode target audience: %w", err)
	}

	fields := []struct{ key, value string }{
		{"name", p.Name},
		{"description", p.Description},
		{"eventType", p.EventType},
		{"eventOrganizers", p.EventOrganizers},
		{"eventHashtags", p.EventHashtags},
		{"targetAudience", string(audience)},
		{"registrationRequired", p.RegistrationRequired},
		{"startDate", p.StartDate},
		{"endDate", p.EndDate},
		{"startTime", p.StartTime},
		{"endTime", p.EndTime},
		{"latitude", strconv.FormatFloat(p.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(p.Longitude, 'f', -1, 64)},
	}
	if len(p.DailySchedule) > 0 {
		daily, err := json.Marshal(p.DailySchedule)
		if err != nil {
			return nil, "", fmt.Errorf("encode daily schedule: %w", err)
		}
		fields = append(fields, struct{ key, value string }{"dailySchedule", string(daily)})
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.key, err)
		}
	}

	if p.Image != nil {
		if err := writeImagePart(w, *p.Image); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func writeImagePart(w *multipart.Writer, img ImagePart) error {
	contentType := img.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(img.Data).String()
	}
	filename := img.Filename
	if filename == "" {
		filename = "image"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return fmt.Errorf("write image part: %w", err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
