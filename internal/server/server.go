// Package server exposes mission conversion over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/VolaTeQ/litchitool/internal/binfmt"
	"github.com/VolaTeQ/litchitool/internal/csvformat"
	"github.com/VolaTeQ/litchitool/internal/history"
	"github.com/VolaTeQ/litchitool/internal/kmlexport"
	"github.com/VolaTeQ/litchitool/internal/logging"
	"github.com/VolaTeQ/litchitool/internal/mission"
	"github.com/VolaTeQ/litchitool/internal/observability"
)

const (
	DefaultCacheSize = 128
	MaxBodyBytes     = 8 << 20
	recentEntries    = 20
	tracerName       = "github.com/VolaTeQ/litchitool/internal/server"
)

//go:embed templates/index.html
var content embed.FS

type result struct {
	body      []byte
	waypoints int
	pois      int
}

type cacheKey [sha256.Size]byte

// Server converts uploaded CSV missions.
type Server struct {
	missionCfg mission.Config
	metrics    *observability.ConversionCollector
	history    history.Writer
	cache      *lru.Cache[cacheKey, result]
	tpl        *template.Template

	mu     sync.Mutex
	recent []history.Entry
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	missionCfg mission.Config
	metrics    *observability.ConversionCollector
	history    history.Writer
	cacheSize  int
}

// WithMissionConfig sets the mission configuration applied to uploads.
func WithMissionConfig(cfg mission.Config) Option {
	return func(o *serverOptions) { o.missionCfg = cfg }
}

// WithMetrics records conversions in c.
func WithMetrics(c *observability.ConversionCollector) Option {
	return func(o *serverOptions) { o.metrics = c }
}

// WithHistory records every successful conversion in w.
func WithHistory(w history.Writer) Option {
	return func(o *serverOptions) { o.history = w }
}

// WithCacheSize bounds the result cache.
func WithCacheSize(n int) Option {
	return func(o *serverOptions) { o.cacheSize = n }
}

// New creates a Server.
func New(opts ...Option) (*Server, error) {
	o := serverOptions{
		missionCfg: mission.DefaultConfig(),
		history:    history.Discard{},
		cacheSize:  DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	cache, err := lru.New[cacheKey, result](o.cacheSize)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New("index.html").ParseFS(content, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		missionCfg: o.missionCfg,
		metrics:    o.metrics,
		history:    o.history,
		cache:      cache,
		tpl:        tpl,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("POST /convert", s.convertHandler("convert", "application/octet-stream", encodeBinary))
	mux.Handle("POST /kml", s.convertHandler("kml", "application/vnd.google-earth.kml+xml", encodeKML))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logging.FromContext(ctx).Info("server listening", "addr", addr)
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type encodeFunc func(w io.Writer, m *mission.Mission, name string) error

func encodeBinary(w io.Writer, m *mission.Mission, _ string) error {
	_, err := binfmt.WriteTo(w, m)
	return err
}

func encodeKML(w io.Writer, m *mission.Mission, name string) error {
	return kmlexport.Write(w, m, name)
}

func (s *Server) convertHandler(endpoint, contentType string, encode encodeFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer(tracerName).Start(ctx, "server."+endpoint)
		defer span.End()
		log := logging.FromContext(ctx).With("endpoint", endpoint)

		res, cached, err := s.convert(r.WithContext(ctx), endpoint, encode)
		s.metrics.ObserveConversion(endpoint, start, res.waypoints, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Warn("conversion failed", "err", err)
			writeError(w, err)
			return
		}
		span.SetAttributes(
			attribute.Int("mission.waypoints", res.waypoints),
			attribute.Bool("cache.hit", cached),
		)
		log.Debug("conversion done", "waypoints", res.waypoints, "bytes", len(res.body), "cached", cached)

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(res.body)))
		w.Header().Set("X-Litchi-Waypoints", strconv.Itoa(res.waypoints))
		w.Header().Set("X-Litchi-POIs", strconv.Itoa(res.pois))
		w.Write(res.body)
	})
}

func (s *Server) convert(r *http.Request, endpoint string, encode encodeFunc) (result, bool, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	if err != nil {
		return result{}, false, &requestError{status: http.StatusRequestEntityTooLarge, err: err}
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "mission"
	}
	noHeader := r.URL.Query().Get("header") == "false"

	h := sha256.New()
	io.WriteString(h, endpoint+"\x00"+name+"\x00"+strconv.FormatBool(noHeader)+"\x00")
	h.Write(body)
	var key cacheKey
	copy(key[:], h.Sum(nil))
	if res, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit()
		return res, true, nil
	}

	opts := []csvformat.Option{csvformat.WithConfig(s.missionCfg)}
	if noHeader {
		opts = append(opts, csvformat.WithoutHeader())
	}
	m, err := csvformat.ReadCSV(bytes.NewReader(body), opts...)
	if err != nil {
		return result{}, false, err
	}
	var out bytes.Buffer
	if err := encode(&out, m, name); err != nil {
		return result{}, false, err
	}
	res := result{body: out.Bytes(), waypoints: m.NumWaypoints(), pois: m.NumPOIs()}
	s.cache.Add(key, res)

	entry := history.NewEntry(endpoint, r.RemoteAddr, name, m, len(res.body))
	s.remember(entry)
	if err := s.history.Write(r.Context(), entry); err != nil {
		logging.FromContext(r.Context()).Warn("history write failed", "err", err)
	}
	return res, false, nil
}

func (s *Server) remember(e history.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, e)
	if len(s.recent) > recentEntries {
		s.recent = s.recent[len(s.recent)-recentEntries:]
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	recent := make([]history.Entry, len(s.recent))
	for i, e := range s.recent {
		recent[len(recent)-1-i] = e
	}
	s.mu.Unlock()

	data := struct {
		CacheLen int
		Recent   []history.Entry
	}{s.cache.Len(), recent}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := struct {
		Error string `json:"error"`
		Row   *int   `json:"row,omitempty"`
	}{Error: err.Error()}

	var reqErr *requestError
	var rowErr *mission.RowError
	var csvErr *csv.ParseError
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.status
	case errors.As(err, &csvErr), errors.Is(err, mission.ErrFormat), errors.Is(err, mission.ErrParse),
		errors.Is(err, mission.ErrAction), errors.Is(err, mission.ErrInvalidMission):
		status = http.StatusUnprocessableEntity
	}
	if errors.As(err, &rowErr) {
		resp.Row = &rowErr.Row
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
