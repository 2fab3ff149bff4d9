package binarizer

import (
	"errors"

	"github.com/barcoded/pdf417/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// ErrLowContrast is returned when the luminance histogram has no usable
// separation between dark and light peaks.
var ErrLowContrast = errors.New("binarizer: insufficient contrast to estimate black point")

// GlobalHistogram binarizes using a single black point estimated from a
// global luminance histogram. Hybrid handles uneven lighting better.
type GlobalHistogram struct {
	source     LuminanceSource
	luminances []byte
	buckets    [luminanceBuckets]int
}

// NewGlobalHistogram creates a GlobalHistogram binarizer over the source.
func NewGlobalHistogram(source LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

// Source returns the underlying luminance source.
func (g *GlobalHistogram) Source() LuminanceSource { return g.source }

// Width returns the source width.
func (g *GlobalHistogram) Width() int { return g.source.Width() }

// Height returns the source height.
func (g *GlobalHistogram) Height() int { return g.source.Height() }

// BlackRow binarizes a single row with light sharpening applied.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	width := g.source.Width()
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}

	g.initBuffers(width)
	luminances := g.source.Row(y, g.luminances)
	for x := 0; x < width; x++ {
		g.buckets[int(luminances[x])>>luminanceShift]++
	}
	blackPoint, err := estimateBlackPoint(g.buckets[:])
	if err != nil {
		return nil, err
	}

	if width < 3 {
		for x := 0; x < width; x++ {
			if int(luminances[x]) < blackPoint {
				row.Set(x)
			}
		}
		return row, nil
	}
	left := int(luminances[0])
	center := int(luminances[1])
	for x := 1; x < width-1; x++ {
		right := int(luminances[x+1])
		if (center*4-left-right)/2 < blackPoint {
			row.Set(x)
		}
		left = center
		center = right
	}
	return row, nil
}

// BlackMatrix binarizes the whole image against a single black point
// estimated from five sample rows.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	width := g.source.Width()
	height := g.source.Height()
	matrix := bitutil.NewBitMatrix(width, height)

	g.initBuffers(width)
	for y := 1; y < 5; y++ {
		row := height * y / 5
		luminances := g.source.Row(row, g.luminances)
		right := width * 4 / 5
		for x := width / 5; x < right; x++ {
			g.buckets[int(luminances[x])>>luminanceShift]++
		}
	}
	blackPoint, err := estimateBlackPoint(g.buckets[:])
	if err != nil {
		return nil, err
	}

	luminances := g.source.Matrix()
	for y := 0; y < height; y++ {
		offset := y * width
		for x := 0; x < width; x++ {
			if int(luminances[offset+x]) < blackPoint {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

func (g *GlobalHistogram) initBuffers(width int) {
	if len(g.luminances) < width {
		g.luminances = make([]byte, width)
	}
	g.buckets = [luminanceBuckets]int{}
}

// estimateBlackPoint finds the valley between the two dominant histogram
// peaks. It fails when the peaks are too close together.
func estimateBlackPoint(buckets []int) (int, error) {
	numBuckets := len(buckets)
	maxBucketCount := 0
	firstPeak := 0
	firstPeakSize := 0
	for x := 0; x < numBuckets; x++ {
		if buckets[x] > firstPeakSize {
			firstPeak = x
			firstPeakSize = buckets[x]
		}
		if buckets[x] > maxBucketCount {
			maxBucketCount = buckets[x]
		}
	}

	secondPeak := 0
	secondPeakScore := 0
	for x := 0; x < numBuckets; x++ {
		dist := x - firstPeak
		score := buckets[x] * dist * dist
		if score > secondPeakScore {
			secondPeak = x
			secondPeakScore = score
		}
	}

	// a single occupied bucket scores zero everywhere
	if secondPeakScore == 0 {
		return 0, ErrLowContrast
	}
	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}
	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, ErrLowContrast
	}

	bestValley := secondPeak - 1
	bestValleyScore := -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		fromFirst := x - firstPeak
		score := fromFirst * fromFirst * (secondPeak - x) * (maxBucketCount - buckets[x])
		if score > bestValleyScore {
			bestValley = x
			bestValleyScore = score
		}
	}

	return bestValley << luminanceShift, nil
}
