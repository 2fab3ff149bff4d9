// Package pdf417 decodes PDF417 barcodes (ISO/IEC 15438) from images or
// pre-binarized bit matrices, including Macro PDF417 multi-symbol payloads.
//
// A Decoder holds the segments of its most recent decode call plus a macro
// assembly session that persists across calls, so a multi-page scan can feed
// one Decoder image by image and assemble the combined payload at the end.
package pdf417

import (
	"fmt"
	"image"
	"math"

	"github.com/barcoded/pdf417/binarizer"
	"github.com/barcoded/pdf417/bitutil"
	"github.com/barcoded/pdf417/decoder"
	"github.com/barcoded/pdf417/detector"
	"github.com/barcoded/pdf417/macro"
)

// Options configures a Decoder.
type Options struct {
	// TryHarder scans every image row for guard patterns instead of
	// sampling. Slower, but finds low or skewed symbols.
	TryHarder bool
}

// Segment is one decoded symbol's payload.
type Segment struct {
	// Text is the payload interpreted through the symbol's compaction
	// modes and any ECI character set designators.
	Text string

	// Bytes is the raw payload, unconverted.
	Bytes []byte

	// ECLevel is the symbol's error correction level, 0-8.
	ECLevel int

	// ErrorsCorrected and Erasures tally the repairs made by error
	// correction for this symbol.
	ErrorsCorrected int
	Erasures        int

	// Macro holds the Macro PDF417 control block, or nil for a plain
	// symbol.
	Macro *macro.Info
}

// Decoder decodes all PDF417 symbols in an image. It is not safe for
// concurrent use; run one Decoder per goroutine and share the Assembler.
type Decoder struct {
	opts      Options
	segments  []Segment
	failures  []error
	assembler *macro.Assembler
}

// NewDecoder creates a Decoder with default options and a fresh macro
// assembly session.
func NewDecoder() *Decoder {
	return NewDecoderWithOptions(Options{})
}

// NewDecoderWithOptions creates a Decoder with the given options.
func NewDecoderWithOptions(opts Options) *Decoder {
	return &Decoder{opts: opts, assembler: macro.NewAssembler()}
}

// Decode binarizes img and decodes every PDF417 symbol in it, replacing the
// segments of any previous call. It returns the number of symbols decoded;
// an image without symbols is (0, nil), not an error. Symbols that were
// located but failed to decode are reported through Failures.
func (d *Decoder) Decode(img image.Image) (int, error) {
	bin := binarizer.NewHybrid(binarizer.NewImageSource(img))
	matrix, err := bin.BlackMatrix()
	if err != nil {
		return 0, fmt.Errorf("binarize: %w", err)
	}
	return d.DecodeBitmap(matrix)
}

// DecodeBitmap decodes every PDF417 symbol in a pre-binarized matrix, set
// bits meaning black modules.
func (d *Decoder) DecodeBitmap(matrix *bitutil.BitMatrix) (int, error) {
	d.segments = d.segments[:0]
	d.failures = d.failures[:0]

	detected := detector.Detect(matrix, true, d.opts.TryHarder)
	for _, points := range detected.Points {
		if len(points) < 8 {
			continue
		}
		result, err := decoder.Decode(
			detected.Bits,
			points[4], // top left of the codeword area
			points[5], // bottom left
			points[6], // top right
			points[7], // bottom right
			minCodewordWidth(points),
			maxCodewordWidth(points),
		)
		if err != nil {
			d.failures = append(d.failures, err)
			continue
		}
		d.segments = append(d.segments, Segment{
			Text:            result.Text,
			Bytes:           result.Bytes,
			ECLevel:         result.ECLevel,
			ErrorsCorrected: result.ErrorsCorrected,
			Erasures:        result.Erasures,
			Macro:           result.Macro,
		})
	}
	return len(d.segments), nil
}

// Segment returns the i-th decoded segment of the most recent decode call.
func (d *Decoder) Segment(i int) Segment {
	return d.segments[i]
}

// Segments returns all segments of the most recent decode call.
func (d *Decoder) Segments() []Segment {
	return d.segments
}

// Text returns the i-th segment's text payload.
func (d *Decoder) Text(i int) string {
	return d.segments[i].Text
}

// Bytes returns the i-th segment's raw payload.
func (d *Decoder) Bytes(i int) []byte {
	return d.segments[i].Bytes
}

// Failures returns the per-symbol errors of the most recent decode call.
// A located symbol that cannot be decoded lands here; it never aborts the
// remaining symbols.
func (d *Decoder) Failures() []error {
	return d.failures
}

// IngestMacro feeds the i-th segment into the macro assembly session. It
// fails with macro.ErrNoMacroBlock for a plain segment.
func (d *Decoder) IngestMacro(i int) (fileID string, complete bool, err error) {
	seg := d.segments[i]
	return d.assembler.Ingest(seg.Macro, seg.Bytes)
}

// MacroComplete reports whether every segment of the file has been ingested.
func (d *Decoder) MacroComplete(fileID string) bool {
	return d.assembler.Complete(fileID)
}

// AssembleMacro concatenates the file's ingested segments in index order,
// failing with ErrIncompleteSet while segments are missing.
func (d *Decoder) AssembleMacro(fileID string) ([]byte, error) {
	return d.assembler.Assemble(fileID)
}

// Assembler exposes the underlying macro session, which may be shared
// across Decoders.
func (d *Decoder) Assembler() *macro.Assembler {
	return d.assembler
}

func widthOf(p1, p2 *detector.Point) int {
	if p1 == nil || p2 == nil {
		return 0
	}
	return int(math.Abs(p1.X - p2.X))
}

// minCodewordWidth estimates the narrowest codeword from the guard pattern
// widths. The stop pattern is 18 modules wide against a codeword's 17, so
// its widths are scaled down.
func minCodewordWidth(points []*detector.Point) int {
	return minInt(
		minInt(widthOf(points[0], points[4]), widthOf(points[6], points[2])*17/18),
		minInt(widthOf(points[1], points[5]), widthOf(points[7], points[3])*17/18),
	)
}

func maxCodewordWidth(points []*detector.Point) int {
	return maxInt(
		maxInt(widthOf(points[0], points[4]), widthOf(points[6], points[2])*17/18),
		maxInt(widthOf(points[1], points[5]), widthOf(points[7], points[3])*17/18),
	)
}

func minInt(a, b int) int {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
