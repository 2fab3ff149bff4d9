package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segment(index, count int, last bool) *Info {
	return &Info{
		SegmentIndex: index,
		FileID:       "042017",
		SegmentCount: count,
		LastSegment:  last,
	}
}

func TestIngestAndAssemble(t *testing.T) {
	a := NewAssembler()

	_, complete, err := a.Ingest(segment(0, 3, false), []byte("one"))
	require.NoError(t, err)
	assert.False(t, complete)

	_, complete, err = a.Ingest(segment(1, 3, false), []byte("two"))
	require.NoError(t, err)
	assert.False(t, complete)

	fileID, complete, err := a.Ingest(segment(2, 3, true), []byte("three"))
	require.NoError(t, err)
	assert.True(t, complete)

	data, err := a.Assemble(fileID)
	require.NoError(t, err)
	assert.Equal(t, []byte("onetwothree"), data)
}

func TestAssembleOrderIndependent(t *testing.T) {
	a := NewAssembler()
	for _, idx := range []int{2, 0, 1} {
		payload := []byte{byte('a' + idx)}
		_, _, err := a.Ingest(segment(idx, 3, idx == 2), payload)
		require.NoError(t, err)
	}
	data, err := a.Assemble("042017")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestDuplicateSegmentOverwrites(t *testing.T) {
	a := NewAssembler()
	_, _, err := a.Ingest(segment(0, 1, true), []byte("first"))
	require.NoError(t, err)
	_, _, err = a.Ingest(segment(0, 1, true), []byte("second"))
	require.NoError(t, err)

	data, err := a.Assemble("042017")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestAssembleIncomplete(t *testing.T) {
	a := NewAssembler()
	_, complete, err := a.Ingest(segment(0, 2, false), []byte("half"))
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = a.Assemble("042017")
	assert.ErrorIs(t, err, ErrIncompleteSet)
	assert.False(t, a.Complete("042017"))
}

func TestAssemblePartialMarksGaps(t *testing.T) {
	a := NewAssembler()
	_, _, err := a.Ingest(segment(0, 3, false), []byte("AA"))
	require.NoError(t, err)
	_, _, err = a.Ingest(segment(2, 3, true), []byte("CC"))
	require.NoError(t, err)

	data, missing, err := a.AssemblePartial("042017", []byte("??"))
	require.NoError(t, err)
	assert.Equal(t, []byte("AA??CC"), data)
	assert.Equal(t, []int{1}, missing)
}

func TestUnknownCountCompletesOnTerminator(t *testing.T) {
	a := NewAssembler()

	// no count field anywhere; the set is delimited by its terminator
	_, complete, err := a.Ingest(segment(1, SegmentCountUnknown, true), []byte("tail"))
	require.NoError(t, err)
	assert.False(t, complete)

	_, complete, err = a.Ingest(segment(0, SegmentCountUnknown, false), []byte("head"))
	require.NoError(t, err)
	assert.True(t, complete)

	data, err := a.Assemble("042017")
	require.NoError(t, err)
	assert.Equal(t, []byte("headtail"), data)
}

func TestIngestWithoutControlBlock(t *testing.T) {
	a := NewAssembler()
	_, _, err := a.Ingest(nil, []byte("x"))
	assert.ErrorIs(t, err, ErrNoMacroBlock)
}

func TestUnknownFile(t *testing.T) {
	a := NewAssembler()
	_, err := a.Assemble("nope")
	assert.ErrorIs(t, err, ErrUnknownFile)
	_, _, err = a.AssemblePartial("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestEvictAndReset(t *testing.T) {
	a := NewAssembler()
	_, _, err := a.Ingest(segment(0, 1, true), []byte("x"))
	require.NoError(t, err)
	require.Len(t, a.Files(), 1)

	a.Evict("042017")
	assert.Empty(t, a.Files())

	_, _, err = a.Ingest(segment(0, 1, true), []byte("x"))
	require.NoError(t, err)
	a.Reset()
	assert.Empty(t, a.Files())
}

func TestIngestCopiesPayload(t *testing.T) {
	a := NewAssembler()
	buf := []byte("mutable")
	_, _, err := a.Ingest(segment(0, 1, true), buf)
	require.NoError(t, err)
	buf[0] = 'X'

	data, err := a.Assemble("042017")
	require.NoError(t, err)
	assert.Equal(t, []byte("mutable"), data)
}
