package app

import (
	"context"
	"errors"
	"image"
	"sync"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

type fakeFrame struct {
	name   string
	w, h   int
	closed bool
}

func (f *fakeFrame) Width() int      { return f.w }
func (f *fakeFrame) Height() int     { return f.h }
func (f *fakeFrame) Encoded() []byte { return []byte(f.name) }
func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

func nameOf(frame port.Frame) string {
	return frame.(*fakeFrame).name
}

// fakeCodec decodes any payload into a 640x480 frame named after it; "corrupt" fails.
type fakeCodec struct {
	frames []*fakeFrame
}

func (c *fakeCodec) Decode(data []byte) (port.Frame, error) {
	if string(data) == "corrupt" {
		return nil, errors.New("not an image")
	}
	f := &fakeFrame{name: string(data), w: 640, h: 480}
	c.frames = append(c.frames, f)
	return f, nil
}

func (c *fakeCodec) allClosed() bool {
	for _, f := range c.frames {
		if !f.closed {
			return false
		}
	}
	return true
}

type fakeProcessor struct {
	mu       sync.Mutex
	rotated  []float64
	cropped  []entity.BBox
	failCrop bool
}

func (p *fakeProcessor) Crop(frame port.Frame, box entity.BBox) (port.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCrop {
		return nil, errors.New("crop failed")
	}
	p.cropped = append(p.cropped, box)
	return &fakeFrame{name: nameOf(frame) + "/crop", w: box.Width(), h: box.Height()}, nil
}

func (p *fakeProcessor) Rotate(frame port.Frame, center image.Point, angle float64) (port.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotated = append(p.rotated, angle)
	return &fakeFrame{name: nameOf(frame) + "/rotated", w: frame.Width(), h: frame.Height()}, nil
}

func (p *fakeProcessor) Encode(frame port.Frame) ([]byte, error) {
	return []byte(nameOf(frame)), nil
}

type fakeDetector struct {
	name    string
	method  entity.DetectionMethod
	byFrame map[string][]entity.FaceCandidate
	err     error
	panics  bool
	calls   int
}

func (d *fakeDetector) Method() entity.DetectionMethod { return d.method }
func (d *fakeDetector) Name() string                   { return d.name }

func (d *fakeDetector) Detect(ctx context.Context, frame port.Frame) ([]entity.FaceCandidate, error) {
	d.calls++
	if d.panics {
		panic("native crash")
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.byFrame[nameOf(frame)], nil
}

type fakeLocator struct {
	eyes   *entity.EyeLandmarks
	err    error
	panics bool
	calls  int
}

func (l *fakeLocator) Name() string { return "fake-locator" }

func (l *fakeLocator) Locate(ctx context.Context, frame port.Frame, box entity.BBox) (*entity.EyeLandmarks, error) {
	l.calls++
	if l.panics {
		panic("locator crash")
	}
	return l.eyes, l.err
}

type fakeQualityProbe struct {
	byFrame map[string]entity.QualityMeasures
	err     error
	calls   int
}

func (p *fakeQualityProbe) Measure(ctx context.Context, frame port.Frame, box entity.BBox) (entity.QualityMeasures, error) {
	p.calls++
	if p.err != nil {
		return entity.QualityMeasures{}, p.err
	}
	if m, ok := p.byFrame[nameOf(frame)]; ok {
		return m, nil
	}
	return sharpMeasures(), nil
}

type fakeLivenessProbe struct {
	signals entity.LivenessSignals
	err     error
	calls   int
}

func (p *fakeLivenessProbe) Signals(ctx context.Context, frame port.Frame, box entity.BBox) (entity.LivenessSignals, error) {
	p.calls++
	return p.signals, p.err
}

type fakeBackend struct {
	mu        sync.Mutex
	distances map[string]float64
	errs      map[string]error
	panics    map[string]bool
	calls     map[string]int
}

func newFakeBackend(distances map[string]float64) *fakeBackend {
	return &fakeBackend{
		distances: distances,
		errs:      map[string]error{},
		panics:    map[string]bool{},
		calls:     map[string]int{},
	}
}

func (b *fakeBackend) Distance(ctx context.Context, x, y entity.FaceCrop, modelID string) (float64, error) {
	b.mu.Lock()
	b.calls[modelID]++
	err, panics := b.errs[modelID], b.panics[modelID]
	d, ok := b.distances[modelID]
	b.mu.Unlock()

	if panics {
		panic("model crash")
	}
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("model not loaded")
	}
	return d, nil
}

func (b *fakeBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

type fakeAudit struct {
	records []entity.AuditRecord
	err     error
}

func (a *fakeAudit) Record(ctx context.Context, rec entity.AuditRecord) error {
	a.records = append(a.records, rec)
	return a.err
}

func sharpMeasures() entity.QualityMeasures {
	return entity.QualityMeasures{BlurVariance: 240, MeanIntensity: 130, DarkRatio: 0.02, BrightRatio: 0.01}
}

func liveSignals() entity.LivenessSignals {
	return entity.LivenessSignals{GradientVariance: 180, HighFrequencyEnergy: 25000, SkinRatio: 0.55}
}

func face(x1, y1, x2, y2 int, conf float64) entity.FaceCandidate {
	return entity.FaceCandidate{Box: entity.BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: conf}
}

func matchingDistances() map[string]float64 {
	return map[string]float64{"ArcFace": 0.10, "Facenet512": 0.18, "VGG-Face": 0.22}
}
