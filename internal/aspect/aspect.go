package aspect

import "math"

// Orientation classifies the requested canvas.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
	OrientationSquare    Orientation = "square"
)

// Profile carries the rendering hints derived from the requested dimensions.
type Profile struct {
	Ratio       string
	Orientation Orientation
	Framing     string
}

type supportedRatio struct {
	name  string
	value float64
}

// supportedRatios is ordered; on equal distance the earlier entry wins.
var supportedRatios = []supportedRatio{
	{"21:9", 21.0 / 9.0},
	{"16:9", 16.0 / 9.0},
	{"3:2", 3.0 / 2.0},
	{"4:3", 4.0 / 3.0},
	{"5:4", 5.0 / 4.0},
	{"1:1", 1.0},
	{"4:5", 4.0 / 5.0},
	{"3:4", 3.0 / 4.0},
	{"2:3", 2.0 / 3.0},
	{"9:16", 9.0 / 16.0},
	{"9:21", 9.0 / 21.0},
}

var framingHints = map[Orientation]string{
	OrientationPortrait:  "Vertical framing: stack the scene along the vertical axis, letting the landmark rise toward the upper third of the frame.",
	OrientationLandscape: "Horizontal framing: spread the cityscape along the horizontal axis, placing the landmark slightly off-center.",
	OrientationSquare:    "Square framing: center the platform with balanced margins on every side.",
}

// Normalize maps arbitrary dimensions to the nearest supported rendering
// ratio and derives the orientation-dependent framing hint used during
// prompt composition. Pure; callers validate the dimensions beforehand.
func Normalize(width, height int) Profile {
	target := float64(width) / float64(height)
	best := supportedRatios[0]
	bestDiff := math.Abs(best.value - target)
	for _, r := range supportedRatios[1:] {
		diff := math.Abs(r.value - target)
		if diff < bestDiff {
			best = r
			bestDiff = diff
		}
	}

	orientation := OrientationSquare
	switch {
	case height > width:
		orientation = OrientationPortrait
	case width > height:
		orientation = OrientationLandscape
	}

	return Profile{
		Ratio:       best.name,
		Orientation: orientation,
		Framing:     framingHints[orientation],
	}
}

// SupportedRatios exposes the ratio names in selection order.
func SupportedRatios() []string {
	names := make([]string, 0, len(supportedRatios))
	for _, r := range supportedRatios {
		names = append(names, r.name)
	}
	return names
}
