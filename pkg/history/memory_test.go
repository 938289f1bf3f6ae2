package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryHostPushTruncatesForward(t *testing.T) {
	h := NewMemoryHost("")
	assert.Equal(t, "#/", h.Location())

	h.Push("#/a")
	h.Push("#/b")
	h.Go(-2)
	h.Push("#/c")

	entries, index := h.Entries()
	assert.Equal(t, []string{"#/", "#/c"}, entries)
	assert.Equal(t, 1, index)
	assert.Equal(t, "#/c", h.Location())
}

func TestMemoryHostReplace(t *testing.T) {
	h := NewMemoryHost("#/a")
	h.Replace("#/b")

	entries, index := h.Entries()
	assert.Equal(t, []string{"#/b"}, entries)
	assert.Equal(t, 0, index)
}

func TestMemoryHostGoNotifies(t *testing.T) {
	h := NewMemoryHost("#/")
	h.Push("#/a")

	var got []string
	stop := h.Listen(func(loc string) { got = append(got, "first:"+loc) })
	h.Listen(func(loc string) { got = append(got, "second:"+loc) })

	h.Go(-1)
	h.Go(1)
	assert.Equal(t, []string{"first:#/", "second:#/", "first:#/a", "second:#/a"}, got)

	stop()
	stop()
	got = nil
	h.Go(-1)
	assert.Equal(t, []string{"second:#/"}, got)
}

func TestMemoryHostGoOutOfRange(t *testing.T) {
	h := NewMemoryHost("#/")
	calls := 0
	h.Listen(func(string) { calls++ })

	assert.NoError(t, h.Go(-1))
	assert.NoError(t, h.Go(1))
	assert.NoError(t, h.Go(0))
	assert.Equal(t, 0, calls)
	assert.Equal(t, "#/", h.Location())
}

func TestMemoryHostWritesDoNotNotify(t *testing.T) {
	h := NewMemoryHost("#/")
	calls := 0
	h.Listen(func(string) { calls++ })

	h.Push("#/a")
	h.Replace("#/b")
	assert.Equal(t, 0, calls)

	h.SetLocation("#/typed")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "#/typed", h.Location())
}
