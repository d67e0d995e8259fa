package model

import (
	"fmt"
	"strconv"
	"strings"
)

type ImageID int64

// ImageElementPrefix is the naming convention for image element ids inside content.
const ImageElementPrefix = "img-"

func (id ImageID) ElementID() string {
	return ImageElementPrefix + strconv.FormatInt(int64(id), 10)
}

// ParseImageElementID extracts the numeric id from an element id such as "img-42".
// Anything not following the convention is rejected.
func ParseImageElementID(elementID string) (ImageID, bool) {
	rest, ok := strings.CutPrefix(elementID, ImageElementPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return ImageID(v), true
}

type Position string

const (
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
	PositionCenter Position = "center"
)

func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case PositionLeft, PositionRight, PositionCenter:
		return p, nil
	}
	return "", fmt.Errorf("unknown image position %q", s)
}

type SizePreset string

const (
	SizeSmall  SizePreset = "small"
	SizeMedium SizePreset = "medium"
	SizeLarge  SizePreset = "large"
	SizeFull   SizePreset = "full"
)

func ParseSizePreset(s string) (SizePreset, error) {
	switch p := SizePreset(strings.ToLower(strings.TrimSpace(s))); p {
	case SizeSmall, SizeMedium, SizeLarge, SizeFull:
		return p, nil
	}
	return "", fmt.Errorf("unknown size preset %q", s)
}

// Width returns the width a preset maps to.
func (p SizePreset) Width() Length {
	switch p {
	case SizeSmall:
		return Px(200)
	case SizeMedium:
		return Px(400)
	case SizeLarge:
		return Px(600)
	case SizeFull:
		return Percent(100)
	}
	return Length{}
}

// Length is a CSS width: either absolute pixels or a percentage of the container.
type Length struct {
	Value   float64
	Percent bool
}

func Px(v float64) Length { return Length{Value: v} }

func Percent(v float64) Length { return Length{Value: v, Percent: true} }

func (l Length) IsZero() bool { return l.Value == 0 }

// Px resolves the length against a container width.
func (l Length) Px(container float64) float64 {
	if l.Percent {
		return container * l.Value / 100
	}
	return l.Value
}

func (l Length) String() string {
	v := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if l.Percent {
		return v + "%"
	}
	return v + "px"
}

// ParseLength accepts "400px", "400", "100%" and "auto" (zero length).
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return Length{}, nil
	}
	percent := false
	switch {
	case strings.HasSuffix(s, "%"):
		percent = true
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", s, err)
	}
	return Length{Value: v, Percent: percent}, nil
}
