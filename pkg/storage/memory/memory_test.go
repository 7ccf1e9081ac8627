package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp3rd/logrelay"
)

func addEntries(t *testing.T, s *Storage, sizes ...int) {
	t.Helper()

	for i, size := range sizes {
		data := make([]byte, size)
		for j := range data {
			data[j] = byte(i + 1)
		}

		require.NoError(t, s.Add(logrelay.Entry{Data: data}))
	}
}

func TestAdd_RejectsEmptyEntry(t *testing.T) {
	s := New()

	require.ErrorIs(t, s.Add(logrelay.Entry{}), ErrEmptyEntry)
}

func TestAdd_UpdatesStatus(t *testing.T) {
	s := New()

	addEntries(t, s, 10, 20, 5)

	status := s.Status()
	assert.Equal(t, 3, status.RecordCount)
	assert.Equal(t, int64(35), status.TotalSize)
}

func TestGetRecord_HonorsBudget(t *testing.T) {
	s := New()

	addEntries(t, s, 10)

	// A 10-byte entry needs 4 prefix + 12 aligned bytes.
	_, ok := s.GetRecord(1, 15)
	assert.False(t, ok)

	entry, ok := s.GetRecord(1, 16)
	require.True(t, ok)
	assert.Equal(t, 10, entry.Size())
}

func TestGetRecord_SkipsExtractedEntries(t *testing.T) {
	s := New()

	addEntries(t, s, 10, 20)

	first, ok := s.GetRecord(7, 1024)
	require.True(t, ok)
	assert.Equal(t, 10, first.Size())

	second, ok := s.GetRecord(7, 1024)
	require.True(t, ok)
	assert.Equal(t, 20, second.Size())

	_, ok = s.GetRecord(7, 1024)
	assert.False(t, ok)
}

func TestGetRecord_PrefersOldestThatFits(t *testing.T) {
	s := New()

	addEntries(t, s, 100, 10)

	// The oldest entry does not fit the budget; the next one does.
	entry, ok := s.GetRecord(1, 20)
	require.True(t, ok)
	assert.Equal(t, 10, entry.Size())
}

func TestUploadSucceeded_RetiresBucket(t *testing.T) {
	s := New()

	addEntries(t, s, 10, 20, 5)

	_, ok := s.GetRecord(3, 1024)
	require.True(t, ok)
	_, ok = s.GetRecord(3, 1024)
	require.True(t, ok)

	s.UploadSucceeded(3)

	status := s.Status()
	assert.Equal(t, 1, status.RecordCount)
	assert.Equal(t, int64(5), status.TotalSize)
}

func TestUploadSucceeded_UnknownBucketIsNoop(t *testing.T) {
	s := New()

	addEntries(t, s, 10)

	s.UploadSucceeded(42)

	status := s.Status()
	assert.Equal(t, 1, status.RecordCount)
	assert.Equal(t, int64(10), status.TotalSize)
}

func TestUploadFailed_RequeuesBucket(t *testing.T) {
	s := New()

	addEntries(t, s, 10)

	_, ok := s.GetRecord(3, 1024)
	require.True(t, ok)

	// Extracted entries are not handed out again for any bucket...
	_, ok = s.GetRecord(4, 1024)
	require.False(t, ok)

	// ...until the bucket fails and they are requeued.
	s.UploadFailed(3)

	entry, ok := s.GetRecord(4, 1024)
	require.True(t, ok)
	assert.Equal(t, 10, entry.Size())
}

func TestUploadFailed_UnknownBucketIsNoop(t *testing.T) {
	s := New()

	addEntries(t, s, 10)

	s.UploadFailed(42)

	status := s.Status()
	assert.Equal(t, 1, status.RecordCount)
}

func TestShrinkToSize_EvictsOldest(t *testing.T) {
	s := New()

	addEntries(t, s, 10, 20, 5)

	evicted := s.ShrinkToSize(24)
	assert.Equal(t, 2, evicted)

	status := s.Status()
	assert.Equal(t, 1, status.RecordCount)
	assert.Equal(t, int64(5), status.TotalSize)

	// The survivor is the newest entry.
	entry, ok := s.GetRecord(1, 1024)
	require.True(t, ok)
	assert.Equal(t, 5, entry.Size())
}

func TestShrinkToSize_NoopWithinBound(t *testing.T) {
	s := New()

	addEntries(t, s, 10, 20)

	assert.Zero(t, s.ShrinkToSize(30))
	assert.Equal(t, int64(30), s.Status().TotalSize)
}

func TestShrinkToSize_NegativeBoundDropsEverything(t *testing.T) {
	s := New()

	addEntries(t, s, 10, 20)

	assert.Equal(t, 2, s.ShrinkToSize(-1))
	assert.Zero(t, s.Status().RecordCount)
}

func TestClose_DropsEntries(t *testing.T) {
	s := New()

	addEntries(t, s, 10)

	require.NoError(t, s.Close())

	status := s.Status()
	assert.Zero(t, status.RecordCount)
	assert.Zero(t, status.TotalSize)
}
