package models

import "time"

// Intensity is one of five fixed presence tiers driving the heatmap. The
// tiers are deliberately not configurable; a continuous scale was rejected.
type Intensity string

const (
	IntensityGrad0 Intensity = "grad0"
	IntensityGrad1 Intensity = "grad1"
	IntensityGrad2 Intensity = "grad2"
	IntensityGrad3 Intensity = "grad3"
	IntensityGrad4 Intensity = "grad4"
)

// ClassifyIntensity maps a device count onto its tier.
func ClassifyIntensity(deviceCount int) Intensity {
	switch {
	case deviceCount <= 0:
		return IntensityGrad0
	case deviceCount < 6:
		return IntensityGrad1
	case deviceCount < 8:
		return IntensityGrad2
	case deviceCount < 12:
		return IntensityGrad3
	default:
		return IntensityGrad4
	}
}

// HeatmapCell is one summarized presence window, ready for rendering.
type HeatmapCell struct {
	WindowStart time.Time `json:"window_start"`
	WindowStop  time.Time `json:"window_stop"`
	DeviceCount int       `json:"device_count"`
	Intensity   Intensity `json:"intensity"`
	Color       string    `json:"color"`
	Tooltip     string    `json:"tooltip"`
}
