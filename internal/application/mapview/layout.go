package mapview

import (
	"github.com/wmcornejo/reView/pkg/types/figure"
)

// Base map presentation.  The three font family spellings are intentional:
// the frontend stylesheet grew them independently and the rendered output is
// matched against them.
const (
	mapDragMode  = "select"
	mapHoverMode = "closest"

	paperBackground = "#1663B5"
	plotBackground  = "#083C04"

	titleFontFamily = "Time New Roman"
	titleFontColor  = "white"

	legendFontFamily = "Times New Roman"
	legendBackground = "#E4ECF6"
	legendFontColor  = "black"
	legendFontSize   = 15

	colorBarFontFamily = "New Times Roman"
	colorBarFontColor  = "white"
	colorBarFontSize   = 15

	mapCenterLon = -97.5
	mapCenterLat = 39.5
	mapZoom      = 3.25
)

// DefaultBasemap is the mapbox style used when a request names none.
const DefaultBasemap = "satellite-streets"

// DefaultTitleSize is the title font size in px.
const DefaultTitleSize = 18

// DefaultPointSize is the marker size in px.
const DefaultPointSize = 5

// baseLayout returns the shared map layout: margins sized for the colorbar
// and title, dark paper background, continental-US center.  Callers fill in
// the per-request fields (basemap style, title text, legend switch, y range).
func baseLayout() figure.Layout {
	return figure.Layout{
		DragMode:     mapDragMode,
		HoverMode:    mapHoverMode,
		Margin:       &figure.Margin{L: 20, R: 115, T: 115, B: 20},
		PaperBGColor: paperBackground,
		PlotBGColor:  plotBackground,
		Title: &figure.Title{
			Font:    &figure.Font{Family: titleFontFamily, Size: DefaultTitleSize, Color: titleFontColor},
			X:       figure.Float(0.05),
			Y:       figure.Float(0.94),
			YRef:    "container",
			YAnchor: "bottom",
			Pad:     &figure.Pad{B: 10},
		},
		Mapbox: &figure.Mapbox{
			Style:  DefaultBasemap,
			Center: &figure.Center{Lon: mapCenterLon, Lat: mapCenterLat},
			Zoom:   mapZoom,
		},
	}
}
