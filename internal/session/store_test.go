package session

import (
	"sort"
	"testing"
	"time"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	st := NewStore(time.Hour)
	a := st.Create(document.New(block(1)), fastOptions())
	b := st.Create(nil, fastOptions())
	assert.Equal(t, 2, st.Len())
	assert.NotEqual(t, a.ID, b.ID)

	got, err := st.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, []string{a.ID, b.ID}, st.IDs())

	require.NoError(t, st.Delete(a.ID))
	_, err = st.Get(a.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(a.ID), ErrSessionNotFound)
}

func TestStoreCleanup(t *testing.T) {
	st := NewStore(20 * time.Millisecond)
	old := st.Create(nil, fastOptions())
	time.Sleep(40 * time.Millisecond)
	fresh := st.Create(nil, fastOptions())

	assert.Equal(t, 1, st.Cleanup())
	_, err := st.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestNewIDIsSortableAndUnique(t *testing.T) {
	ids := make([]string, 500)
	seen := make(map[string]bool)
	for i := range ids {
		ids[i] = newID()
		assert.Len(t, ids[i], 26)
		assert.False(t, seen[ids[i]])
		seen[ids[i]] = true
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestEncodeULID(t *testing.T) {
	var zero [16]byte
	assert.Equal(t, "00000000000000000000000000", encodeULID(zero))

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	assert.Equal(t, "7ZZZZZZZZZZZZZZZZZZZZZZZZZ", encodeULID(ones))
}
