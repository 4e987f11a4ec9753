package model

import "image"

// Orientation distinguishes horizontal from vertical ruling segments.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns "horizontal" or "vertical".
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// TextToken is one positioned piece of text on a page, as reported by the
// layout backend.
type TextToken struct {
	Text string
	BBox BBox

	// FontSize is the backend's font-size hint in layout units, or 0 if the
	// backend does not report one.
	FontSize float64
}

// RulingSegment is a straight graphical line on a page. For a horizontal
// segment Position is its Y coordinate and Start/End its X extent; for a
// vertical segment Position is its X coordinate and Start/End its Y extent.
type RulingSegment struct {
	Orientation Orientation
	Position    float64
	Start       float64
	End         float64
}

// Length returns the extent of the segment along its own axis.
func (r RulingSegment) Length() float64 {
	if r.End > r.Start {
		return r.End - r.Start
	}
	return r.Start - r.End
}

// PageLayout is the normalized output of the layout backend for one page:
// positioned text tokens, ruling segments, and an optional rendered pixel map.
// It is immutable once built; the detection pass for the page is its sole
// reader.
type PageLayout struct {
	// PageNumber is 1-based.
	PageNumber int

	// Width and Height are the page dimensions in layout units. They are
	// required when PixelMap is set, so pixel coordinates can be mapped back
	// onto the page.
	Width  float64
	Height float64

	Tokens  []TextToken
	Rulings []RulingSegment

	// PixelMap is a rendered image of the page, or nil if the backend did not
	// render one. When present it enables the image-edge detector.
	PixelMap image.Image
}

// RulingsByOrientation splits the page's rulings into horizontal and vertical
// segments, preserving order.
func (p *PageLayout) RulingsByOrientation() (horizontals, verticals []RulingSegment) {
	for _, r := range p.Rulings {
		if r.Orientation == Vertical {
			verticals = append(verticals, r)
		} else {
			horizontals = append(horizontals, r)
		}
	}
	return horizontals, verticals
}
