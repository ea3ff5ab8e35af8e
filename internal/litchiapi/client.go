// Package litchiapi talks to the Parse backend of the Litchi mission hub.
package litchiapi

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/VolaTeQ/litchitool/internal/binfmt"
	"github.com/VolaTeQ/litchitool/internal/logging"
	"github.com/VolaTeQ/litchitool/internal/mission"
)

const (
	DefaultBaseURL = "https://parse.litchiapi.com"
	DefaultAppID   = "APjd97yuFQ9TUiIIKgDiqzczon1z2339RxINQe6g"
)

const tracerName = "github.com/VolaTeQ/litchitool/internal/litchiapi"

// Client is an authenticated session against the mission hub.
type Client struct {
	http    *http.Client
	baseURL string
	appID   string
	session Session
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another Parse server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAppID overrides the X-Parse-Application-Id header.
func WithAppID(id string) Option {
	return func(c *Client) { c.appID = id }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Login authenticates and returns a ready client.
func Login(ctx context.Context, username, password string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		appID:   DefaultAppID,
	}
	for _, o := range opts {
		o(c)
	}

	ctx, span := c.start(ctx, "litchiapi.Login", attribute.String("litchi.username", username))
	defer span.End()

	payload := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	body, err := jsonBody(payload)
	if err != nil {
		return nil, spanError(span, err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/parse/login", body, "application/json")
	if err != nil {
		return nil, spanError(span, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, spanError(span, err)
	}
	if !success(resp.StatusCode) {
		return nil, spanError(span, &AuthError{Body: string(data)})
	}
	if err := json.Unmarshal(data, &c.session); err != nil {
		return nil, spanError(span, fmt.Errorf("decode session: %w", err))
	}
	logging.FromContext(ctx).Debug("logged in", "user", c.session.Username, "object_id", c.session.ObjectID)
	return c, nil
}

// Session returns the login session data.
func (c *Client) Session() Session { return c.session }

// Upload stores m as a binary file and creates a mission object named name
// referencing it. The returned id identifies the mission object.
func (c *Client) Upload(ctx context.Context, m *mission.Mission, name string) (ObjectID, error) {
	ctx, span := c.start(ctx, "litchiapi.Upload",
		attribute.String("litchi.mission_name", name),
		attribute.Int("litchi.waypoints", m.NumWaypoints()),
	)
	defer span.End()
	log := logging.FromContext(ctx)

	data := binfmt.Encode(m)
	log.Debug("uploading mission binary", "bytes", len(data))
	var file MissionFile
	if err := c.call(ctx, http.MethodPost, "/parse/files/mission", bytes.NewReader(data), "application/octet-stream", &file); err != nil {
		return "", spanError(span, err)
	}

	start := m.Start()
	payload := map[string]any{
		"ACL": map[ObjectID]map[string]bool{
			c.session.ObjectID: {"read": true, "write": true},
		},
		"location": map[string]any{
			"__type":    "GeoPoint",
			"latitude":  start.Lat,
			"longitude": start.Lon,
		},
		"name": name,
		"user": userPointer(c.session.ObjectID),
		"file": map[string]string{
			"__type": "File",
			"name":   file.Name,
			"url":    file.URL,
		},
	}

	log.Debug("creating mission object", "file", file.Name)
	body, err := jsonBody(payload)
	if err != nil {
		return "", spanError(span, err)
	}
	var created map[string]any
	if err := c.call(ctx, http.MethodPost, "/parse/classes/Mission", body, "application/json", &created); err != nil {
		return "", spanError(span, err)
	}
	id, ok := created["objectId"].(string)
	if !ok {
		raw, _ := json.Marshal(created)
		return "", spanError(span, &ResponseFormatError{Msg: "response has no objectId", Body: string(raw)})
	}
	span.SetAttributes(attribute.String("litchi.object_id", id))
	return ObjectID(id), nil
}

// Missions lists the mission objects owned by the logged in user.
func (c *Client) Missions(ctx context.Context) ([]Mission, error) {
	ctx, span := c.start(ctx, "litchiapi.Missions")
	defer span.End()

	where, err := json.Marshal(map[string]any{"user": userPointer(c.session.ObjectID)})
	if err != nil {
		return nil, spanError(span, err)
	}
	path := "/parse/classes/Mission?" + url.Values{"where": {string(where)}}.Encode()

	var resp struct {
		Results *[]json.RawMessage `json:"results"`
	}
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, path, nil, "", &raw); err != nil {
		return nil, spanError(span, err)
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Results == nil {
		return nil, spanError(span, &ResponseFormatError{Msg: "response should have results array field", Body: string(raw)})
	}

	missions := make([]Mission, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		m, err := decodeMission(r)
		if err != nil {
			return nil, spanError(span, err)
		}
		missions = append(missions, m)
	}
	span.SetAttributes(attribute.Int("litchi.missions", len(missions)))
	return missions, nil
}

// DeleteMission removes a mission object.
func (c *Client) DeleteMission(ctx context.Context, id ObjectID) error {
	ctx, span := c.start(ctx, "litchiapi.DeleteMission", attribute.String("litchi.object_id", string(id)))
	defer span.End()
	return spanError(span, c.call(ctx, http.MethodDelete, "/parse/classes/Mission/"+url.PathEscape(string(id)), nil, "", nil))
}

// SyncDevices asks the hub to push missions to the user's devices.
func (c *Client) SyncDevices(ctx context.Context) error {
	ctx, span := c.start(ctx, "litchiapi.SyncDevices")
	defer span.End()
	logging.FromContext(ctx).Debug("synchronizing devices")
	return spanError(span, c.call(ctx, http.MethodPost, "/parse/functions/syncMyDevices", nil, "", nil))
}

// call performs an authenticated request and decodes a 2xx JSON response
// into out, if non-nil.
func (c *Client) call(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !success(resp.StatusCode) {
		return &HTTPError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ResponseFormatError{Msg: err.Error(), Body: string(data)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Parse-Application-Id", c.appID)
	if c.session.SessionToken != "" {
		req.Header.Set("X-Parse-Session-Token", c.session.SessionToken)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logging.FromContext(ctx).Debug("api request", "method", method, "path", req.URL.Path)
	return c.http.Do(req)
}

func (c *Client) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func spanError(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func success(status int) bool { return status >= 200 && status < 300 }
