// Package figure builds Plotly.js figure specifications for the dashboard charts.
package figure

// Figure is a Plotly figure: traces plus layout, serialized as-is for Plotly.newPlot
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single Plotly trace
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode,omitempty"`
	Name          string    `json:"name,omitempty"`
	X             []float64 `json:"x,omitempty"`
	Y             []float64 `json:"y,omitempty"`
	Lat           []float64 `json:"lat,omitempty"`
	Lon           []float64 `json:"lon,omitempty"`
	Text          []string  `json:"text,omitempty"`
	YAxis         string    `json:"yaxis,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
	Line          *Line     `json:"line,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
}

// Marker styles trace points
type Marker struct {
	Color   string  `json:"color,omitempty"`
	Size    int     `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Line styles trace lines and shapes
type Line struct {
	Color string `json:"color,omitempty"`
	Dash  string `json:"dash,omitempty"`
	Width int    `json:"width,omitempty"`
}

// Layout is the subset of Plotly layout attributes the dashboard uses
type Layout struct {
	Title      *Text   `json:"title,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	YAxis2     *Axis   `json:"yaxis2,omitempty"`
	Legend     *Legend `json:"legend,omitempty"`
	Shapes     []Shape `json:"shapes,omitempty"`
	Mapbox     *Mapbox `json:"mapbox,omitempty"`
	Margin     Margin  `json:"margin"`
	ShowLegend bool    `json:"showlegend"`
}

// Text is a Plotly title object
type Text struct {
	Text string `json:"text"`
}

// Axis configures a cartesian axis
type Axis struct {
	Title      *Text     `json:"title,omitempty"`
	Type       string    `json:"type,omitempty"`
	Range      []float64 `json:"range,omitempty"`
	Overlaying string    `json:"overlaying,omitempty"`
	Side       string    `json:"side,omitempty"`
	ShowGrid   *bool     `json:"showgrid,omitempty"`
	Dtick      float64   `json:"dtick,omitempty"`
}

// Legend configures the legend box
type Legend struct {
	Orientation string  `json:"orientation,omitempty"`
	Y           float64 `json:"y,omitempty"`
	Title       *Text   `json:"title,omitempty"`
}

// Shape is a layout shape such as the elbow marker line
type Shape struct {
	Type string  `json:"type"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	Line Line    `json:"line"`
}

// Mapbox configures the map view
type Mapbox struct {
	Style  string `json:"style"`
	Center LatLon `json:"center"`
	Zoom   int    `json:"zoom"`
}

// LatLon is a map position
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Margin is the plot margin in pixels
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}
