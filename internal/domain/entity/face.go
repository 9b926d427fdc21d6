package entity

import (
	"image"
	"sort"
)

// DuplicateIoU is the overlap above which two boxes count as the same face.
const DuplicateIoU = 0.5

// BBox is an axis-aligned face rectangle (x1,y1)-(x2,y2) in pixel coordinates.
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// BBoxFromRect converts an image.Rectangle into a BBox.
func BBoxFromRect(r image.Rectangle) BBox {
	return BBox{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect returns the box as an image.Rectangle.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b BBox) Width() int  { return b.X2 - b.X1 }
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// Area is zero for degenerate or inverted boxes.
func (b BBox) Area() int {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Empty reports whether the box has no area.
func (b BBox) Empty() bool {
	return b.Area() == 0
}

// Clip limits the box to a w x h frame.
func (b BBox) Clip(w, h int) BBox {
	return BBox{
		X1: clamp(b.X1, 0, w),
		Y1: clamp(b.Y1, 0, h),
		X2: clamp(b.X2, 0, w),
		Y2: clamp(b.Y2, 0, h),
	}
}

// Pad grows the box by ratio of its own size on every side and clips it to a w x h frame.
func (b BBox) Pad(ratio float64, w, h int) BBox {
	padW := int(float64(b.Width()) * ratio)
	padH := int(float64(b.Height()) * ratio)
	return BBox{
		X1: b.X1 - padW,
		Y1: b.Y1 - padH,
		X2: b.X2 + padW,
		Y2: b.Y2 + padH,
	}.Clip(w, h)
}

// IoU returns intersection-over-union of two boxes.
// Disjoint boxes and boxes without area give 0.
func IoU(a, b BBox) float64 {
	if a.Empty() || b.Empty() {
		return 0
	}

	inter := BBox{
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
		X2: min(a.X2, b.X2),
		Y2: min(a.Y2, b.Y2),
	}.Area()
	if inter == 0 {
		return 0
	}

	union := a.Area() + b.Area() - inter
	return float64(inter) / float64(union)
}

// DetectionMethod identifies which cascade stage produced a candidate.
type DetectionMethod int

const (
	MethodPrimary DetectionMethod = iota
	MethodFallback1
	MethodFallback2
	MethodFallback3
)

func (m DetectionMethod) String() string {
	switch m {
	case MethodPrimary:
		return "primary"
	case MethodFallback1:
		return "fallback1"
	case MethodFallback2:
		return "fallback2"
	case MethodFallback3:
		return "fallback3"
	default:
		return "unknown"
	}
}

// MarshalText keeps the method readable in JSON reports.
func (m DetectionMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// FaceCandidate is one detected face.
type FaceCandidate struct {
	Box        BBox            `json:"bbox"`
	Confidence float64         `json:"confidence"`
	Method     DetectionMethod `json:"method"`
}

// AppendDistinct adds boxes to kept, skipping any box whose IoU with an
// already kept box exceeds threshold.
func AppendDistinct(kept []BBox, boxes []BBox, threshold float64) []BBox {
	for _, box := range boxes {
		duplicate := false
		for _, k := range kept {
			if IoU(box, k) > threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, box)
		}
	}
	return kept
}

// ScanScales calls scan for each scale factor in order and returns the
// deduplicated boxes of the first scale that finds anything.
func ScanScales(scales []float64, scan func(scale float64) ([]BBox, error)) ([]BBox, error) {
	for _, scale := range scales {
		boxes, err := scan(scale)
		if err != nil {
			return nil, err
		}

		kept := AppendDistinct(nil, boxes, DuplicateIoU)
		if len(kept) > 0 {
			return kept, nil
		}
	}
	return nil, nil
}

// SuppressNonMax keeps the most confident candidates, dropping any candidate
// overlapping a kept one by more than threshold.
func SuppressNonMax(candidates []FaceCandidate, threshold float64) []FaceCandidate {
	sorted := make([]FaceCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]FaceCandidate, 0, len(sorted))
	for _, c := range sorted {
		overlaps := false
		for _, k := range kept {
			if IoU(c.Box, k.Box) > threshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
