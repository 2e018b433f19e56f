package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/metrics"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
	"github.com/banshee-data/heatmap.report/internal/presets"
	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

type fixture struct {
	clock  *timeutil.MockClock
	shell  *Shell
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC))
	rec := metrics.NewRecorder()
	size, ok := presets.SizeFor(presets.DefaultSize)
	require.True(t, ok)

	shell, err := NewShell(ShellOptions{
		Logger:    monitoring.NewNop(),
		Clock:     clock,
		Metrics:   rec,
		Generator: heatmap.NewSeededGenerator(3),
		Initial: Selection{
			Size:         size,
			Mode:         presets.DefaultMode,
			ColorScale:   presets.DefaultColorScale,
			Downsampling: presets.DefaultDownsampling,
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(shell, rec, monitoring.NewNop(), "/assets/").Handler())
	t.Cleanup(srv.Close)
	return &fixture{clock: clock, shell: shell, server: srv}
}

var settleToken = regexp.MustCompile(`/api/settled\?token=(\d+)`)

func (f *fixture) getPage(t *testing.T, query string) (int, string) {
	t.Helper()
	resp, err := http.Get(f.server.URL + "/" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func tokenFrom(t *testing.T, page string) uint64 {
	t.Helper()
	m := settleToken.FindStringSubmatch(page)
	require.Len(t, m, 2, "page has no settle URL")
	token, err := strconv.ParseUint(m[1], 10, 64)
	require.NoError(t, err)
	return token
}

func (f *fixture) settle(t *testing.T, token uint64) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(fmt.Sprintf("%s/api/settled?token=%d", f.server.URL, token), "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestPage_DefaultSelection(t *testing.T) {
	f := newFixture(t)

	status, page := f.getPage(t, "")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, page, `This component rendered <span class="stats">100</span>`)
	assert.Contains(t, page, `<span class="stats" id="time">x</span>`)
	assert.Contains(t, page, `/assets/echarts.min.js`)
	assert.Contains(t, page, `<option value="random" selected>Random</option>`)
	assert.Contains(t, page, `<option value="YlGnBu" selected>YlGnBu</option>`)
	assert.Contains(t, page, `<option value="On" selected>On</option>`)
	assert.Contains(t, page, `<option value="noise">Perlin noise</option>`)
	assert.Equal(t, uint64(1), tokenFrom(t, page))
}

func TestPage_SettleUpdatesReadout(t *testing.T) {
	f := newFixture(t)

	_, page := f.getPage(t, "?size=100&data=noise&color=Jet&downsampling=Off")
	token := tokenFrom(t, page)
	assert.Contains(t, page, `<span class="stats">10,000</span>`)

	f.clock.Advance(1500 * time.Millisecond)
	status, body := f.settle(t, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1.500", body["text"])
	assert.Equal(t, "10,000", body["points_label"])

	// The next page shows the published value until its own frame settles.
	_, page = f.getPage(t, "")
	assert.Contains(t, page, `id="time">1.500</span>`)
	assert.Contains(t, page, `<option value="noise" selected>Perlin noise</option>`)
	assert.Contains(t, page, `<option value="Off" selected>Off</option>`)
}

func TestSettle_StaleToken(t *testing.T) {
	f := newFixture(t)

	_, first := f.getPage(t, "?size=10")
	_, second := f.getPage(t, "?size=33")
	stale, latest := tokenFrom(t, first), tokenFrom(t, second)
	require.Greater(t, latest, stale)

	status, body := f.settle(t, stale)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "stale")

	f.clock.Advance(250 * time.Millisecond)
	status, body = f.settle(t, latest)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0.250", body["text"])
	assert.Equal(t, "1,000", body["points_label"])

	status, _ = f.settle(t, latest)
	assert.Equal(t, http.StatusConflict, status, "a cycle publishes once")
}

func TestSettle_BadToken(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Post(f.server.URL+"/api/settled?token=abc", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPage_InvalidSelection(t *testing.T) {
	f := newFixture(t)
	_, _ = f.getPage(t, "")

	for _, q := range []string{"?size=11", "?data=fractal", "?color=Viridis", "?downsampling=maybe"} {
		status, body := f.getPage(t, q)
		assert.Equal(t, http.StatusBadRequest, status, q)
		assert.Contains(t, body, "invalid argument", q)
	}

	// Rejected changes leave the selection alone.
	frame, ok := f.shell.Current()
	require.True(t, ok)
	assert.Equal(t, heatmap.GridSize(10), frame.Selection.Size.N)
	assert.Equal(t, presets.DefaultColorScale, frame.Selection.ColorScale)
}

func TestGridAndReadout(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/api/grid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, _ = f.getPage(t, "?size=33&data=sequential")

	resp, err = http.Get(f.server.URL + "/api/grid")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var grid gridResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&grid))
	assert.Equal(t, 33, grid.Size)
	assert.Equal(t, "1,000", grid.Points)
	assert.Equal(t, heatmap.Sequential, grid.Mode)
	assert.Len(t, grid.Z, 33)
	assert.Equal(t, 64.0, grid.Summary.Max)
	assert.Equal(t, 1, grid.Geometry.GapX)
	assert.Equal(t, 5, grid.Geometry.TickInterval)

	resp, err = http.Get(f.server.URL + "/api/readout")
	require.NoError(t, err)
	defer resp.Body.Close()
	var readout map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&readout))
	assert.Equal(t, false, readout["published"])
	assert.Equal(t, "x", readout["text"])
	assert.Equal(t, "1,000", readout["points_label"])
}

func TestPNG(t *testing.T) {
	f := newFixture(t)
	_, _ = f.getPage(t, "?color=Blackbody")

	resp, err := http.Get(f.server.URL + "/heatmap.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	head := make([]byte, 8)
	_, err = io.ReadFull(resp.Body, head)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), head)
}

func TestClickHealthMetrics(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/api/click", "application/json", strings.NewReader(`{"x":1,"y":2,"value":3.5}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Post(f.server.URL+"/api/click", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])

	resp, err = http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "heatmap_cell_clicks_total 1")
}

func TestRouting_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/api/settled?token=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
