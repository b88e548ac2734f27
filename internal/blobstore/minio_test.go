package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	base := "https://cdn.example.com/media/"

	t.Run("inside bucket", func(t *testing.T) {
		name, err := ObjectName(base, "https://cdn.example.com/media/questions/abc/q.png")
		require.NoError(t, err)
		assert.Equal(t, "questions/abc/q.png", name)
	})

	t.Run("strips query", func(t *testing.T) {
		name, err := ObjectName(base, "https://cdn.example.com/media/a.mp3?token=1")
		require.NoError(t, err)
		assert.Equal(t, "a.mp3", name)
	})

	t.Run("foreign url", func(t *testing.T) {
		_, err := ObjectName(base, "https://other.example.com/media/a.mp3")
		assert.ErrorIs(t, err, ErrForeignURL)
	})

	t.Run("bucket root", func(t *testing.T) {
		_, err := ObjectName(base, base)
		assert.ErrorIs(t, err, ErrForeignURL)
	})
}
