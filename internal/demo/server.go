package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/banshee-data/heatmap.report/internal/chart"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/httputil"
	"github.com/banshee-data/heatmap.report/internal/interaction"
	"github.com/banshee-data/heatmap.report/internal/metrics"
	"github.com/banshee-data/heatmap.report/internal/presets"
	"github.com/banshee-data/heatmap.report/internal/version"
)

// Server is the HTTP front end of a Shell.
type Server struct {
	shell      *Shell
	metrics    *metrics.Recorder
	log        *slog.Logger
	templates  *TemplateProvider
	assetsHost string
}

// NewServer wires handlers for shell. rec must be the recorder the shell uses.
func NewServer(shell *Shell, rec *metrics.Recorder, log *slog.Logger, assetsHost string) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		shell:      shell,
		metrics:    rec,
		log:        log,
		templates:  NewTemplateProvider(templateFS),
		assetsHost: assetsHost,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.MethodNotAllowed(w)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "not found")
	})

	r.Get("/", s.handlePage)
	r.Get("/heatmap.png", s.handlePNG)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/settled", s.handleSettled)
		r.Get("/readout", s.handleReadout)
		r.Get("/grid", s.handleGrid)
		r.Post("/click", s.handleClick)
	})
	return r
}

// changeFromQuery maps the control names to a Change. Absent parameters keep
// the current selection.
func changeFromQuery(r *http.Request) Change {
	q := r.URL.Query()
	get := func(keys ...string) *string {
		for _, k := range keys {
			if q.Has(k) {
				v := q.Get(k)
				return &v
			}
		}
		return nil
	}
	return Change{
		Size:         get("size"),
		Mode:         get("data", "mode"),
		ColorScale:   get("color"),
		Downsampling: get("downsampling"),
	}
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	ScriptURL    string
	PointsLabel  string
	Seconds      string
	Sizes        []option
	Modes        []option
	Downsampling []option
	Colors       []option
	ChartElement template.HTML
	ChartScript  template.HTML
}

func controls(sel Selection) (sizes, modes, down, colors []option) {
	for _, p := range presets.Sizes {
		sizes = append(sizes, option{strconv.Itoa(int(p.N)), p.Label(), p.N == sel.Size.N})
	}
	for _, m := range heatmap.Modes {
		modes = append(modes, option{m.String(), presets.ModeLabels[m], m == sel.Mode})
	}
	for _, on := range []bool{true, false} {
		label := presets.DownsamplingLabel(on)
		down = append(down, option{label, label, on == sel.Downsampling})
	}
	for _, c := range presets.ColorScales {
		colors = append(colors, option{c, c, c == sel.ColorScale})
	}
	return sizes, modes, down, colors
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	frame, err := s.shell.Commit(changeFromQuery(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	hm, err := chart.NewHeatMap(frame.Grid, frame.Selection.RenderConfig(), chart.Options{
		AssetsHost: s.assetsHost,
		SettleURL:  fmt.Sprintf("/api/settled?token=%d", frame.Token),
		ClickURL:   "/api/click",
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	snippet := chart.Snippet(hm)

	readout, _ := s.shell.Readout()
	data := pageData{
		ScriptURL:    chart.ScriptURL(s.assetsHost),
		PointsLabel:  frame.Selection.Size.Label(),
		Seconds:      readout.Text,
		ChartElement: template.HTML(snippet.Element),
		ChartScript:  template.HTML(snippet.Script),
	}
	data.Sizes, data.Modes, data.Downsampling, data.Colors = controls(frame.Selection)

	var buf bytes.Buffer
	if err := s.templates.Execute(&buf, "page.html", data); err != nil {
		s.log.Error("render page", "error", err)
		httputil.InternalServerError(w, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Debug("write page", "error", err)
	}
}

func (s *Server) handleSettled(w http.ResponseWriter, r *http.Request) {
	token, err := strconv.ParseUint(r.URL.Query().Get("token"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "token must be a positive integer")
		return
	}
	readout, ok := s.shell.Settle(token)
	if !ok {
		httputil.Conflict(w, fmt.Sprintf("token %d is stale or already settled", token))
		return
	}
	current, _ := s.shell.Readout()
	readout.PointsLabel = current.PointsLabel
	httputil.WriteJSONOK(w, readout)
}

func (s *Server) handleReadout(w http.ResponseWriter, r *http.Request) {
	readout, published := s.shell.Readout()
	httputil.WriteJSONOK(w, struct {
		interaction.Readout
		Published bool `json:"published"`
	}{readout, published})
}

type gridResponse struct {
	Size         int              `json:"size"`
	Points       string           `json:"points"`
	Mode         heatmap.Mode     `json:"mode"`
	ColorScale   string           `json:"color_scale"`
	Downsampling bool             `json:"downsampling"`
	Geometry     heatmap.Geometry `json:"geometry"`
	Summary      heatmap.Summary  `json:"summary"`
	X            []int            `json:"x"`
	Y            []int            `json:"y"`
	Z            [][]float64      `json:"z"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.shell.Current()
	if !ok {
		httputil.NotFound(w, "no grid has been generated yet")
		return
	}
	sel := frame.Selection
	httputil.WriteJSONOK(w, gridResponse{
		Size:         int(sel.Size.N),
		Points:       sel.Size.Label(),
		Mode:         sel.Mode,
		ColorScale:   sel.ColorScale,
		Downsampling: sel.Downsampling,
		Geometry:     heatmap.GeometryFor(sel.Size.N, sel.Downsampling),
		Summary:      frame.Grid.Summarize(),
		X:            frame.Grid.X,
		Y:            frame.Grid.Y,
		Z:            frame.Grid.Z,
	})
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.shell.Current()
	if !ok {
		httputil.NotFound(w, "no grid has been generated yet")
		return
	}
	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, frame.Grid, frame.Selection.RenderConfig()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Debug("write png", "error", err)
	}
}

type clickRequest struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid click payload")
		return
	}
	s.shell.Click(req.X, req.Y, req.Value)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.Version})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving heatmap demo", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
