// Package heatmap writes species-richness triples as a Leaflet heat-map page,
// JSON or CSV.
//
// The HTML page loads Leaflet and the leaflet.heat plugin from a CDN and
// draws one heat point per grid cell, weighted by richness. It matches the
// map the project has always served at /query: an OpenStreetMap base layer
// centred on (0, 0) at zoom 2 with a heat radius of 8.
package heatmap

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"slices"
	"strconv"

	"github.com/matzehuels/taxonscope/pkg/richness"
)

const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats lists the supported output formats.
var Formats = []string{FormatHTML, FormatJSON, FormatCSV}

const (
	DefaultRadius = 8
	DefaultZoom   = 2
)

// Options configures the HTML page.
type Options struct {
	Title  string  // Page title (default: "Species richness")
	Radius int     // Heat point radius in pixels (default: 8)
	Zoom   int     // Initial zoom level (default: 2)
	Lat    float64 // Initial centre latitude
	Lon    float64 // Initial centre longitude
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Title == "" {
		opts.Title = "Species richness"
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	if opts.Zoom <= 0 {
		opts.Zoom = DefaultZoom
	}
	return opts
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid heat-map format: %q (must be one of: html, json, csv)", format)
	}
	return nil
}

// Render writes triples in the given format.
func Render(triples []richness.Triple, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return HTML(triples, opts)
	case FormatJSON:
		return JSON(triples)
	case FormatCSV:
		return CSV(triples)
	}
	return nil, ValidateFormat(format)
}

// JSON encodes triples as an array of [lat, lon, weight] arrays, the shape
// leaflet.heat consumes directly.
func JSON(triples []richness.Triple) ([]byte, error) {
	points := make([][3]float64, len(triples))
	for i, t := range triples {
		points[i] = [3]float64{t.Lat, t.Lon, float64(t.Weight)}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("encode triples: %w", err)
	}
	return append(data, '\n'), nil
}

// CSV writes a lat,lon,weight header followed by one row per triple.
func CSV(triples []richness.Triple) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"lat", "lon", "weight"})
	for _, t := range triples {
		_ = w.Write([]string{
			strconv.FormatFloat(t.Lat, 'f', -1, 64),
			strconv.FormatFloat(t.Lon, 'f', -1, 64),
			strconv.Itoa(t.Weight),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// HTML renders a self-contained heat-map page.
func HTML(triples []richness.Triple, opts Options) ([]byte, error) {
	opts = opts.WithDefaults()
	points, err := JSON(triples)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, pageData{
		Title:  opts.Title,
		Legend: fmt.Sprintf("%s: %d cells", opts.Title, len(triples)),
		Center: template.JS(fmt.Sprintf("[%s, %s]", jsNum(opts.Lat), jsNum(opts.Lon))),
		Zoom:   template.JS(strconv.Itoa(opts.Zoom)),
		Radius: template.JS(strconv.Itoa(opts.Radius)),
		Points: template.JS(bytes.TrimSpace(points)),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// pageData carries numbers as pre-formatted JS so the template emits them
// verbatim instead of space-padded.
type pageData struct {
	Title  string
	Legend string
	Center template.JS
	Zoom   template.JS
	Radius template.JS
	Points template.JS
}

func jsNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var pageTmpl = template.Must(template.New("heatmap").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
  <style>
    html, body, #map { height: 100%; margin: 0; }
    .legend { background: white; padding: 4px 8px; font: 12px sans-serif; }
  </style>
</head>
<body>
  <div id="map"></div>
  <script>
    var map = L.map('map').setView({{.Center}}, {{.Zoom}});
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);
    var points = {{.Points}};
    var max = points.reduce(function (m, p) { return Math.max(m, p[2]); }, 1);
    L.heatLayer(points, { radius: {{.Radius}}, max: max }).addTo(map);
    var legend = L.control({ position: 'bottomleft' });
    legend.onAdd = function () {
      var div = L.DomUtil.create('div', 'legend');
      div.textContent = {{.Legend}};
      return div;
    };
    legend.addTo(map);
  </script>
</body>
</html>
`))
