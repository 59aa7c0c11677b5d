package figure

import (
	"fmt"
	"sort"

	"geoprospect/domain/geochem"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Map defaults
const (
	MapStyle     = "carto-positron"
	MapCenterLat = -13.5
	MapCenterLon = -48.5
	MapZoom      = 4
)

// palette is Plotly's default qualitative sequence
var palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA",
	"#FFA15A", "#19D3F3", "#FF6692", "#B6E880",
}

// ClassColor returns the colour of a 1-based class
func ClassColor(class int) string {
	if class < 1 {
		return palette[0]
	}
	return palette[(class-1)%len(palette)]
}

var plotMargin = Margin{L: 60, R: 60, T: 40, B: 40}

// Empty is the placeholder shown before a column is selected
func Empty(title string) Figure {
	return Figure{
		Data: []Trace{},
		Layout: Layout{
			Title:  &Text{Text: title},
			XAxis:  &Axis{Title: &Text{Text: "x axis"}, Type: "log"},
			YAxis:  &Axis{Title: &Text{Text: "y axis"}, Type: "log"},
			Margin: plotMargin,
		},
	}
}

// ProbabilityScatter plots value against cumulative probability on log axes,
// one trace per class
func ProbabilityScatter(a *geochem.Analysis) Figure {
	if a == nil || len(a.Points) == 0 {
		return Empty("Load Data First")
	}

	byClass := make(map[int]*Trace)
	var order []int
	for _, p := range a.Points {
		tr, ok := byClass[p.Class]
		if !ok {
			tr = &Trace{
				Type:          "scatter",
				Mode:          "markers",
				Name:          fmt.Sprintf("Class %d", p.Class),
				Marker:        &Marker{Color: ClassColor(p.Class), Size: 7},
				HoverTemplate: "P = %{x:.2f}%<br>" + a.Column + " = %{y}<extra>%{fullData.name}</extra>",
			}
			byClass[p.Class] = tr
			order = append(order, p.Class)
		}
		tr.X = append(tr.X, p.Probability)
		tr.Y = append(tr.Y, p.Value)
	}
	sort.Ints(order)

	data := make([]Trace, 0, len(order))
	for _, c := range order {
		data = append(data, *byClass[c])
	}

	return Figure{
		Data: data,
		Layout: Layout{
			Title:      &Text{Text: a.Column + " x Cumulative Probability"},
			XAxis:      &Axis{Title: &Text{Text: "Probability (%)"}, Type: "log"},
			YAxis:      &Axis{Title: &Text{Text: a.Column}, Type: "log"},
			Legend:     &Legend{Orientation: "h", Y: -0.2, Title: &Text{Text: "Class"}},
			Margin:     Margin{L: 60, R: 60, T: 40, B: 30},
			ShowLegend: true,
		},
	}
}

// ElbowPlot draws distortion against K with fit time on a secondary axis and
// a dash-dot line at the selected K
func ElbowPlot(e geochem.ElbowResult) Figure {
	if len(e.Scores) == 0 {
		return Empty("Load Data First")
	}

	ks := e.KValues()
	distortions := e.Distortions()
	fitTimes := make([]float64, len(e.Scores))
	for i, s := range e.Scores {
		fitTimes[i] = s.FitTime.Seconds()
	}

	top := floats.Max(distortions)
	mean := stat.Mean(distortions, nil)

	title := fmt.Sprintf("Elbow at K = %d", e.Elbow)
	if !e.Detected {
		title = fmt.Sprintf("No elbow detected, K = %d", e.Elbow)
	}

	return Figure{
		Data: []Trace{
			{
				Type:          "scatter",
				Mode:          "markers+lines",
				Name:          "Distortion",
				X:             ks,
				Y:             distortions,
				Marker:        &Marker{Color: palette[0]},
				HoverTemplate: "K = %{x}<br>Distortion = %{y:.4f}<extra></extra>",
			},
			{
				Type:          "scatter",
				Mode:          "lines",
				Name:          "Fit time (s)",
				X:             ks,
				Y:             fitTimes,
				YAxis:         "y2",
				Line:          &Line{Color: "#00CC96", Dash: "dot"},
				HoverTemplate: "K = %{x}<br>Fit time = %{y:.4f}s<extra></extra>",
			},
		},
		Layout: Layout{
			Title: &Text{Text: title},
			XAxis: &Axis{Title: &Text{Text: "Number of K clusters"}, Dtick: 1},
			YAxis: &Axis{Title: &Text{Text: "Distortion Score"}, Range: []float64{-5, top + mean/3}},
			YAxis2: &Axis{
				Title:      &Text{Text: "Fit time (s)"},
				Overlaying: "y",
				Side:       "right",
				ShowGrid:   boolPtr(false),
			},
			Shapes: []Shape{{
				Type: "line",
				X0:   float64(e.Elbow),
				X1:   float64(e.Elbow),
				Y0:   -mean,
				Y1:   top + mean,
				Line: Line{Dash: "dashdot", Color: "#EF553B"},
			}},
			Legend:     &Legend{Orientation: "h", Y: -0.2},
			Margin:     Margin{L: 60, R: 60, T: 40, B: 30},
			ShowLegend: true,
		},
	}
}

// Map places located samples on a carto-positron map coloured by class. Without
// coordinates it shows the empty default view.
func Map(a *geochem.Analysis) Figure {
	fig := Figure{
		Layout: Layout{
			Mapbox: &Mapbox{
				Style:  MapStyle,
				Center: LatLon{Lat: MapCenterLat, Lon: MapCenterLon},
				Zoom:   MapZoom,
			},
			Margin: Margin{L: 10, R: 10, T: 10, B: 10},
		},
	}
	if a == nil || len(a.Locations) == 0 {
		fig.Data = []Trace{{Type: "scattermapbox", Lat: []float64{}, Lon: []float64{}}}
		return fig
	}

	byClass := make(map[int]*Trace)
	var order []int
	var lats, lons []float64
	for _, p := range a.Points {
		loc, ok := a.Locations[p.RowIndex]
		if !ok {
			continue
		}
		tr, ok := byClass[p.Class]
		if !ok {
			tr = &Trace{
				Type:   "scattermapbox",
				Mode:   "markers",
				Name:   fmt.Sprintf("Class %d", p.Class),
				Marker: &Marker{Color: ClassColor(p.Class), Size: 8, Opacity: 0.8},
			}
			byClass[p.Class] = tr
			order = append(order, p.Class)
		}
		tr.Lat = append(tr.Lat, loc.Lat)
		tr.Lon = append(tr.Lon, loc.Lon)
		tr.Text = append(tr.Text, fmt.Sprintf("%s = %g", a.Column, p.Value))
		lats = append(lats, loc.Lat)
		lons = append(lons, loc.Lon)
	}
	if len(lats) == 0 {
		fig.Data = []Trace{{Type: "scattermapbox", Lat: []float64{}, Lon: []float64{}}}
		return fig
	}
	sort.Ints(order)

	for _, c := range order {
		fig.Data = append(fig.Data, *byClass[c])
	}
	fig.Layout.Mapbox.Center = LatLon{Lat: stat.Mean(lats, nil), Lon: stat.Mean(lons, nil)}
	fig.Layout.Legend = &Legend{Orientation: "h"}
	fig.Layout.ShowLegend = true
	return fig
}

func boolPtr(b bool) *bool { return &b }
