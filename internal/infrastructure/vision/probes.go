//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// QualityProbe measures sharpness, exposure and occlusion of a face region.
type QualityProbe struct{}

func NewQualityProbe() *QualityProbe { return &QualityProbe{} }

func (p *QualityProbe) Measure(ctx context.Context, frame port.Frame, box entity.BBox) (entity.QualityMeasures, error) {
	_ = ctx
	gray, err := grayRegion(frame, box)
	if err != nil {
		return entity.QualityMeasures{}, err
	}
	defer gray.Close()

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	// very dark (< 30) and very bright (> 225) pixels
	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, entity.DarkPixelLevel-1, 255, gocv.ThresholdBinaryInv)

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, entity.BrightPixelLevel, 255, gocv.ThresholdBinary)

	return entity.QualityMeasures{
		BlurVariance:  variance(lap),
		MeanIntensity: gray.Mean().Val1,
		DarkRatio:     ratioOfMask(dark),
		BrightRatio:   ratioOfMask(bright),
		Width:         gray.Cols(),
		Height:        gray.Rows(),
	}, nil
}

// LivenessProbe extracts the print-attack signals of a face region.
type LivenessProbe struct{}

func NewLivenessProbe() *LivenessProbe { return &LivenessProbe{} }

func (p *LivenessProbe) Signals(ctx context.Context, frame port.Frame, box entity.BBox) (entity.LivenessSignals, error) {
	_ = ctx
	mat, err := matOf(frame)
	if err != nil {
		return entity.LivenessSignals{}, err
	}
	box = box.Clip(mat.Cols(), mat.Rows())
	if box.Empty() {
		return entity.LivenessSignals{}, fmt.Errorf("face box %+v is outside the frame", box)
	}

	face := mat.Region(box.Rect())
	defer face.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(face, &gray, gocv.ColorBGRToGray)

	return entity.LivenessSignals{
		GradientVariance:    gradientVariance(gray),
		HighFrequencyEnergy: highFrequencyEnergy(gray),
		SkinRatio:           skinRatio(face),
	}, nil
}

func grayRegion(frame port.Frame, box entity.BBox) (gocv.Mat, error) {
	mat, err := matOf(frame)
	if err != nil {
		return gocv.Mat{}, err
	}
	box = box.Clip(mat.Cols(), mat.Rows())
	if box.Empty() {
		return gocv.Mat{}, fmt.Errorf("face box %+v is outside the frame", box)
	}

	face := mat.Region(box.Rect())
	defer face.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(face, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// variance of a single channel matrix.
func variance(m gocv.Mat) float64 {
	mean := gocv.NewMat()
	defer mean.Close()
	std := gocv.NewMat()
	defer std.Close()
	gocv.MeanStdDev(m, &mean, &std)

	sd := std.GetDoubleAt(0, 0)
	return sd * sd
}

func gradientVariance(gray gocv.Mat) float64 {
	gx := gocv.NewMat()
	defer gx.Close()
	gocv.Sobel(gray, &gx, gocv.MatTypeCV64F, 1, 0, 3, 1, 0, gocv.BorderDefault)

	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(gray, &gy, gocv.MatTypeCV64F, 0, 1, 3, 1, 0, gocv.BorderDefault)

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	return variance(mag)
}

// highFrequencyEnergy sums the spectrum magnitude over the first quarter of
// rows of the centred spectrum. Columns are summed whole, so only the row
// shift of the centring matters.
func highFrequencyEnergy(gray gocv.Mat) float64 {
	src := gocv.NewMat()
	defer src.Close()
	gray.ConvertTo(&src, gocv.MatTypeCV32F)

	spectrum := gocv.NewMat()
	defer spectrum.Close()
	gocv.DFT(src, &spectrum, gocv.DftComplexOutput)

	planes := gocv.Split(spectrum)
	for i := range planes {
		defer planes[i].Close()
	}
	if len(planes) < 2 {
		return 0
	}

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(planes[0], planes[1], &mag)

	h, w := mag.Rows(), mag.Cols()
	energy := 0.0
	for k := 0; k < (h/2)/2; k++ {
		row := (k + h - h/2) % h
		for c := 0; c < w; c++ {
			energy += float64(mag.GetFloatAt(row, c))
		}
	}
	return energy
}

// skinRatio is the share of pixels whose OpenCV hue (0..180) lies in 0..20 or 160..180.
func skinRatio(face gocv.Mat) float64 {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(face, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return 0
	}
	hue := channels[0]

	low := gocv.NewMat()
	defer low.Close()
	gocv.InRangeWithScalar(hue, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(20, 0, 0, 0), &low)

	high := gocv.NewMat()
	defer high.Close()
	gocv.InRangeWithScalar(hue, gocv.NewScalar(160, 0, 0, 0), gocv.NewScalar(180, 0, 0, 0), &high)

	return ratioOfMask(low) + ratioOfMask(high)
}
