package track

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := ParseFile([]byte(`
name: triangle
points:
  - {x: 0, y: 0}
  - {x: 10, y: 0}
  - {x: 5, y: 8}
  - {x: 0, y: 0}
`))
		require.NoError(t, err)
		assert.Equal(t, "triangle", f.Name)
		assert.Equal(t, DefaultWidth, f.Width)
		assert.Equal(t, DefaultFriction, f.Friction)
		assert.Len(t, f.Points, 4)
	})

	t.Run("json document", func(t *testing.T) {
		f, err := ParseFile([]byte(`{"width": 8, "friction": 1.1,
			"points": [{"x": 0, "y": 0}, {"x": 1, "y": 0}, {"x": 1, "y": 1}]}`))
		require.NoError(t, err)
		assert.Equal(t, 8.0, f.Width)
		assert.Equal(t, 1.1, f.Friction)
	})

	t.Run("too few points", func(t *testing.T) {
		_, err := ParseFile([]byte("points: [{x: 0, y: 0}, {x: 1, y: 1}]"))
		assert.ErrorIs(t, err, ErrInvalidTrack)
		assert.ErrorIs(t, err, ErrTooFewPoints)
	})

	t.Run("negative width", func(t *testing.T) {
		_, err := ParseFile([]byte("width: -3\npoints: [{x: 0, y: 0}, {x: 1, y: 1}, {x: 2, y: 0}]"))
		assert.ErrorIs(t, err, ErrInvalidTrack)
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := ParseFile([]byte("points: ["))
		assert.ErrorIs(t, err, ErrInvalidTrack)
	})
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oval.yml")
	f := &File{Name: "oval", Width: 14, Friction: 0.95, Points: Oval(100, 40, 40)}
	require.NoError(t, f.Save(path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Name, got.Name)
	assert.Len(t, got.Points, len(f.Points))
	assert.True(t, IsClosed(got.Points))
}
