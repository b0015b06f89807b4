package ir

import (
	"fmt"
	"strings"
)

// Orientation is the coarse screen orientation a Style belongs to.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Style is one of the four discrete responsive layout classifications.
type Style string

const (
	// StyleTrain is the wide landscape style; content fits to height.
	StyleTrain Style = "Train"
	// StyleRectangle is the narrow landscape style; content fits to width.
	StyleRectangle Style = "Rectangle"
	// StyleSquare is used for near-square windows; content fits to height.
	StyleSquare Style = "Square"
	// StyleSword is the tall portrait style; content fits to width.
	StyleSword Style = "Sword"
)

// Styles lists every style in a fixed order (landscape first).
var Styles = []Style{StyleTrain, StyleRectangle, StyleSquare, StyleSword}

// Orientation returns the orientation whose position rules serve this style.
// Square is a portrait style even though it is chosen for wide windows.
func (s Style) Orientation() Orientation {
	switch s {
	case StyleTrain, StyleRectangle:
		return OrientationLandscape
	default:
		return OrientationPortrait
	}
}

// FitsHeight reports whether the style scales content by the viewport height.
func (s Style) FitsHeight() bool {
	return s == StyleTrain || s == StyleSquare
}

// ParseStyle accepts a style name in any letter case.
func ParseStyle(raw string) (Style, error) {
	for _, s := range Styles {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", raw)
}

// ParseOrientation accepts an orientation name in any letter case.
func ParseOrientation(raw string) (Orientation, error) {
	switch strings.ToLower(raw) {
	case string(OrientationLandscape):
		return OrientationLandscape, nil
	case string(OrientationPortrait):
		return OrientationPortrait, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", raw)
	}
}

// GameMode tags the game phase used by per-node visibility rules.
type GameMode string

const (
	GameModeNormalSpin GameMode = "normalSpin"
	GameModeFreeSpin   GameMode = "freeSpin"
)

// ParseGameMode accepts a game mode name in any letter case.
func ParseGameMode(raw string) (GameMode, error) {
	switch {
	case strings.EqualFold(raw, string(GameModeNormalSpin)):
		return GameModeNormalSpin, nil
	case strings.EqualFold(raw, string(GameModeFreeSpin)):
		return GameModeFreeSpin, nil
	default:
		return "", fmt.Errorf("unknown game mode %q", raw)
	}
}

// ModeFor returns the game mode matching the free-spin flag.
func ModeFor(isFreeSpin bool) GameMode {
	if isFreeSpin {
		return GameModeFreeSpin
	}
	return GameModeNormalSpin
}
