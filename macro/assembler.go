// Package macro reassembles payloads that were split across multiple PDF417
// symbols using the Macro PDF417 mechanism of ISO/IEC 15438.
//
// An Assembler is a caller-owned session object: segments decoded from any
// number of images are ingested into it, keyed by the file identifier
// carried in each symbol's control block, and the original payload is
// produced once every segment of a file is present. The session keeps no
// timers and evicts nothing on its own; lifetime is entirely up to the
// caller via Evict and Reset.
package macro

import (
	"errors"
	"sync"
)

// SegmentCountUnknown marks a control block that did not carry the optional
// segment count field. Such a set is delimited by its last-segment flag
// instead.
const SegmentCountUnknown = -1

var (
	// ErrIncompleteSet is returned by Assemble while one or more segments
	// of the file are still missing.
	ErrIncompleteSet = errors.New("macro segment set incomplete")

	// ErrNoMacroBlock is returned by Ingest for a segment that carried no
	// Macro PDF417 control block.
	ErrNoMacroBlock = errors.New("segment carries no macro control block")

	// ErrUnknownFile is returned when the file identifier has never been
	// ingested into this session.
	ErrUnknownFile = errors.New("unknown macro file identifier")
)

// Info is the metadata decoded from one symbol's Macro PDF417 control block.
type Info struct {
	// SegmentIndex is the zero-based position of this segment's payload
	// within the file.
	SegmentIndex int

	// FileID identifies the file this segment belongs to. It is the
	// control block's sequence of base-900 values rendered as zero-padded
	// decimal triplets, so it is comparable across symbols.
	FileID string

	// SegmentCount is the total number of segments in the file, or
	// SegmentCountUnknown if the optional field was absent.
	SegmentCount int

	// LastSegment is set when the control block carried the terminator.
	LastSegment bool

	// Optional fields. Zero values mean the field was absent.
	FileName  string
	Sender    string
	Addressee string
	Timestamp int64
	FileSize  int64
	Checksum  int

	// OptionalData holds the raw codewords of the optional field section,
	// in stream order.
	OptionalData []int
}

// NewInfo returns an Info with the segment count marked unknown, the state
// of a control block before its optional fields are parsed.
func NewInfo() *Info {
	return &Info{SegmentCount: SegmentCountUnknown}
}

type fileEntry struct {
	segments map[int][]byte
	count    int  // SegmentCountUnknown until a count or terminator is seen
	lastSeen int  // highest index flagged LastSegment, -1 if none
}

// Assembler buffers decoded segments per file identifier until a complete
// set is available. It is safe for concurrent use by multiple decoding
// goroutines; a single mutex guards the whole session, which is adequate
// for the expected volume.
type Assembler struct {
	mu    sync.Mutex
	files map[string]*fileEntry
}

// NewAssembler returns an empty session.
func NewAssembler() *Assembler {
	return &Assembler{files: make(map[string]*fileEntry)}
}

// Ingest stores one decoded segment. Duplicate segment indices for the same
// file overwrite the previous payload; that is not an error. The returned
// boolean reports whether the file's segment set is now complete.
func (a *Assembler) Ingest(info *Info, data []byte) (fileID string, complete bool, err error) {
	if info == nil {
		return "", false, ErrNoMacroBlock
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.files[info.FileID]
	if entry == nil {
		entry = &fileEntry{
			segments: make(map[int][]byte),
			count:    SegmentCountUnknown,
			lastSeen: -1,
		}
		a.files[info.FileID] = entry
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	entry.segments[info.SegmentIndex] = buf

	if info.SegmentCount != SegmentCountUnknown && info.SegmentCount > 0 {
		entry.count = info.SegmentCount
	}
	if info.LastSegment && info.SegmentIndex > entry.lastSeen {
		entry.lastSeen = info.SegmentIndex
	}
	return info.FileID, entry.complete(), nil
}

// Complete reports whether every segment of the file has been ingested.
// Unknown file identifiers are simply not complete.
func (a *Assembler) Complete(fileID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry := a.files[fileID]
	return entry != nil && entry.complete()
}

// Assemble concatenates the file's segments in index order. It fails with
// ErrIncompleteSet while segments are missing; use AssemblePartial for an
// explicit best-effort result.
func (a *Assembler) Assemble(fileID string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry := a.files[fileID]
	if entry == nil {
		return nil, ErrUnknownFile
	}
	if !entry.complete() {
		return nil, ErrIncompleteSet
	}
	out := make([]byte, 0, entry.size())
	for i := 0; i < entry.expected(); i++ {
		out = append(out, entry.segments[i]...)
	}
	return out, nil
}

// AssemblePartial concatenates whatever segments are present, in index
// order, inserting gapMarker at every missing index so gaps are visible
// rather than silently closed. The returned slice lists the missing
// indices; it is empty for a complete set.
func (a *Assembler) AssemblePartial(fileID string, gapMarker []byte) ([]byte, []int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry := a.files[fileID]
	if entry == nil {
		return nil, nil, ErrUnknownFile
	}
	var missing []int
	out := make([]byte, 0, entry.size())
	for i := 0; i < entry.expected(); i++ {
		seg, ok := entry.segments[i]
		if !ok {
			missing = append(missing, i)
			out = append(out, gapMarker...)
			continue
		}
		out = append(out, seg...)
	}
	return out, missing, nil
}

// Files returns the identifiers currently buffered in the session.
func (a *Assembler) Files() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.files))
	for id := range a.files {
		ids = append(ids, id)
	}
	return ids
}

// Evict drops all buffered segments of one file.
func (a *Assembler) Evict(fileID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.files, fileID)
}

// Reset drops the whole session state.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files = make(map[string]*fileEntry)
}

// expected returns the number of segments the file should end up with, or
// the best current bound when the count is still unknown.
func (e *fileEntry) expected() int {
	if e.count != SegmentCountUnknown {
		return e.count
	}
	if e.lastSeen >= 0 {
		return e.lastSeen + 1
	}
	max := -1
	for i := range e.segments {
		if i > max {
			max = i
		}
	}
	return max + 1
}

func (e *fileEntry) complete() bool {
	var n int
	switch {
	case e.count != SegmentCountUnknown:
		n = e.count
	case e.lastSeen >= 0:
		n = e.lastSeen + 1
	default:
		return false
	}
	for i := 0; i < n; i++ {
		if _, ok := e.segments[i]; !ok {
			return false
		}
	}
	return true
}

func (e *fileEntry) size() int {
	total := 0
	for _, seg := range e.segments {
		total += len(seg)
	}
	return total
}
