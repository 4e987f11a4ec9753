package tables

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/lattice/model"
)

// ImageEdgeDetector reconstructs tables from a rendered pixel map of the
// page. It scans the image for long straight runs of dark pixels, treats them
// as ruling lines, and then builds a grid the same way the ruling-grid
// detector does. It corroborates the other detectors on pages where the
// backend supplied a rendering, and catches grids drawn in ways the ruling
// extractor misses (e.g. filled rectangles instead of stroked lines).
type ImageEdgeDetector struct {
	config Config
}

// NewImageEdgeDetector creates an image-edge detector with default
// configuration.
func NewImageEdgeDetector() *ImageEdgeDetector {
	return &ImageEdgeDetector{config: DefaultConfig()}
}

// Name returns "image-edge".
func (d *ImageEdgeDetector) Name() string {
	return DetectorImageEdge
}

// Configure sets the detector configuration.
func (d *ImageEdgeDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// Detect scans the page's pixel map for line structure. Pages without a
// pixel map, or without page dimensions to map pixels back to layout units,
// yield no candidates.
func (d *ImageEdgeDetector) Detect(page *model.PageLayout) ([]RawCandidate, error) {
	if page.PixelMap == nil || page.Width <= 0 || page.Height <= 0 {
		return nil, nil
	}

	gray := d.grayscale(page.PixelMap)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	rowYs := d.scanHorizontalRuns(gray)
	colXs := d.scanVerticalRuns(gray)

	// Map pixel coordinates onto the page. Pixel rows count down from the
	// top of the page; layout Y counts up from the bottom.
	scaleX := page.Width / float64(w)
	scaleY := page.Height / float64(h)

	rowBounds := make([]float64, len(rowYs))
	for i, py := range rowYs {
		rowBounds[i] = page.Height - (py+0.5)*scaleY
	}
	colBounds := make([]float64, len(colXs))
	for i, px := range colXs {
		colBounds[i] = (px + 0.5) * scaleX
	}

	rowBounds = clusterCoords(rowBounds, d.config.ClusterTolerance)
	colBounds = clusterCoords(colBounds, d.config.ClusterTolerance)

	candidate, ok := buildGridCandidate(DetectorImageEdge, rowBounds, colBounds, page.Tokens, d.config)
	if !ok {
		return nil, nil
	}

	return []RawCandidate{candidate}, nil
}

// grayscale converts the pixel map to 8-bit gray, downsampling with a
// bilinear scaler when either dimension exceeds the working resolution cap.
func (d *ImageEdgeDetector) grayscale(src image.Image) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	maxDim := d.config.EdgeMaxDimension
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		scale := float64(maxDim) / float64(w)
		if h > w {
			scale = float64(maxDim) / float64(h)
		}
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(gray, gray.Bounds(), src, bounds, xdraw.Src, nil)
	return gray
}

// scanHorizontalRuns returns the pixel Y coordinates of rows containing a
// dark run long enough to count as a horizontal line.
func (d *ImageEdgeDetector) scanHorizontalRuns(gray *image.Gray) []float64 {
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	minRun := int(d.config.EdgeMinRunFraction * float64(w))
	if minRun < 2 {
		minRun = 2
	}

	var ys []float64
	for y := 0; y < h; y++ {
		run, best := 0, 0
		for x := 0; x < w; x++ {
			if gray.GrayAt(x, y).Y <= d.config.EdgeDarkThreshold {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
		if best >= minRun {
			ys = append(ys, float64(y))
		}
	}

	return collapseAdjacent(ys)
}

// scanVerticalRuns returns the pixel X coordinates of columns containing a
// dark run long enough to count as a vertical line.
func (d *ImageEdgeDetector) scanVerticalRuns(gray *image.Gray) []float64 {
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	minRun := int(d.config.EdgeMinRunFraction * float64(h))
	if minRun < 2 {
		minRun = 2
	}

	var xs []float64
	for x := 0; x < w; x++ {
		run, best := 0, 0
		for y := 0; y < h; y++ {
			if gray.GrayAt(x, y).Y <= d.config.EdgeDarkThreshold {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
		if best >= minRun {
			xs = append(xs, float64(x))
		}
	}

	return collapseAdjacent(xs)
}

// collapseAdjacent merges consecutive pixel coordinates (thick drawn lines
// register on several adjacent scanlines) into their midpoints. Input is
// ascending.
func collapseAdjacent(coords []float64) []float64 {
	if len(coords) == 0 {
		return nil
	}

	var out []float64
	start, prev := coords[0], coords[0]

	for _, c := range coords[1:] {
		if c-prev <= 1.5 {
			prev = c
			continue
		}
		out = append(out, (start+prev)/2)
		start, prev = c, c
	}
	out = append(out, (start+prev)/2)

	return out
}
