package cardqr

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNG(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		size     int
		wantSide int
	}{
		{name: "default", size: DefaultSize, wantSide: DefaultSize},
		{name: "clamped_up", size: 10, wantSide: MinSize},
		{name: "clamped_down", size: 5000, wantSide: MaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := PNG("3f1c9a52-8a0e-4d0c-9a65-0c2a3b7f6e11", tt.size)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSide, img.Bounds().Dx())
			assert.Equal(t, tt.wantSide, img.Bounds().Dy())
		})
	}
}

func TestPNG_EmptyID(t *testing.T) {
	t.Parallel()

	_, err := PNG("", DefaultSize)
	require.ErrorIs(t, err, ErrEmptyID)
}
