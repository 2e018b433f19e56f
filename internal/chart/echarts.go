package chart

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/event"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/google/uuid"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
)

// DefaultAssetsHost serves echarts.min.js when no local copy is configured.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// visualMapColors is the number of colors sampled from a scale for the visual map.
const visualMapColors = 11

// RenderConfig carries the display options chosen alongside a grid.
type RenderConfig struct {
	ColorScale   string
	Downsampling bool
}

// Options controls the page glue around the chart.
type Options struct {
	ChartID    string
	AssetsHost string
	Title      string

	// SettleURL receives a POST once the first frame after this render has
	// finished drawing. Empty disables the notification.
	SettleURL string
	// ClickURL receives a POST with the clicked cell. Clicks are always
	// logged to the browser console.
	ClickURL string
}

// NewChartID returns an id usable both as a DOM id and inside a JS identifier.
func NewChartID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewHeatMap builds the ECharts heat map for g.
func NewHeatMap(g *heatmap.Grid, cfg RenderConfig, o Options) (*charts.HeatMap, error) {
	scale, err := LookupColorScale(cfg.ColorScale)
	if err != nil {
		return nil, err
	}
	geom := heatmap.GeometryFor(g.Size, cfg.Downsampling)
	shown := g
	if cfg.Downsampling {
		shown = Downsample(g, MaxDownsampledSide)
	}
	summary := shown.Summarize()
	lo, hi := summary.Min, summary.Max
	if hi <= lo {
		hi = lo + 1
	}

	if o.ChartID == "" {
		o.ChartID = NewChartID()
	}
	if o.AssetsHost == "" {
		o.AssetsHost = DefaultAssetsHost
	}

	label := &opts.AxisLabel{Show: opts.Bool(true)}
	if !geom.AutoTicks() {
		// ECharts skips Interval labels between each one shown.
		label.Interval = strconv.Itoa(geom.TickInterval - 1)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  o.Title,
			ChartID:    o.ChartID,
			Width:      fmt.Sprintf("%dpx", geom.Width),
			Height:     fmt.Sprintf("%dpx", geom.Height),
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithGridOpts(opts.Grid{Left: "30", Right: "90", Bottom: "50", Top: "30", ContainLabel: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: axisLabels(shown.X), AxisLabel: label}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: axisLabels(shown.Y), AxisLabel: label}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Right:      "0",
			Top:        "middle",
			InRange:    &opts.VisualMapInRange{Color: scale.Hex(visualMapColors)},
		}),
		charts.WithEventListeners(listeners(o)...),
	)
	if o.Title != "" {
		hm.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: o.Title}))
	}

	hm.AddSeries("heatmap", heatMapData(shown),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderWidth: float32(geom.GapX), BorderColor: "#ffffff"}),
	)
	return hm, nil
}

func axisLabels(idx []int) []string {
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = strconv.Itoa(v)
	}
	return out
}

// heatMapData flattens g into [column, row, value] triples indexed by axis position.
func heatMapData(g *heatmap.Grid) []opts.HeatMapData {
	cols, rows := g.Dims()
	data := make([]opts.HeatMapData, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, g.Z[r][c]}})
		}
	}
	return data
}

func listeners(o Options) []event.Listener {
	click := `(params) => { console.debug(params);`
	if o.ClickURL != "" {
		click += fmt.Sprintf(` fetch(%s, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify({x: params.value[0], y: params.value[1], value: params.value[2]})});`,
			strconv.Quote(o.ClickURL))
	}
	click += ` }`

	ls := []event.Listener{{EventName: "click", Handler: opts.FuncOpts(click)}}
	if o.SettleURL != "" {
		settled := fmt.Sprintf(`(function () {
	let sent = false;
	return function () {
		if (sent) { return; }
		sent = true;
		requestAnimationFrame(() => fetch(%s, {method: "POST"})
			.then((r) => r.ok ? r.json() : null)
			.then((d) => { if (d) { let el = document.getElementById("time"); if (el) { el.innerText = d.text; } } }));
	};
})()`, strconv.Quote(o.SettleURL))
		ls = append(ls, event.Listener{EventName: "finished", Handler: opts.FuncOpts(settled)})
	}
	return ls
}

// Snippet renders the chart element and its script for embedding in a page.
func Snippet(hm *charts.HeatMap) render.ChartSnippet {
	return hm.RenderSnippet()
}

// RenderPage writes a standalone HTML page for the chart.
func RenderPage(hm *charts.HeatMap) ([]byte, error) {
	var buf bytes.Buffer
	if err := hm.Render(&buf); err != nil {
		return nil, fmt.Errorf("render heat map: %w", err)
	}
	return buf.Bytes(), nil
}

// ScriptURL is the echarts bundle the page must load before a snippet.
func ScriptURL(assetsHost string) string {
	if assetsHost == "" {
		assetsHost = DefaultAssetsHost
	}
	return assetsHost + "echarts.min.js"
}
