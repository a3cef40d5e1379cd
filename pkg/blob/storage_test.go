package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"horario.png", "horario.png"},
		{"Horario Grecia (2024).png", "Horario_Grecia__2024_.png"},
		{"sarchí.jpg", "sarch_.jpg"},
		{"../../etc/passwd", "passwd"},
		{"C:\\fotos\\bus.png", "bus.png"},
		{"", "upload"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeName(tc.input))
		})
	}
}

func TestLocalStorage_Save(t *testing.T) {
	root := t.TempDir()
	storage, err := NewLocalStorage(root, "/uploads/")
	require.NoError(t, err)
	assert.Equal(t, root, storage.Root())
	storage.now = func() time.Time { return time.UnixMilli(1700000000000) }

	url, err := storage.Save(context.Background(), "cards", "Mi foto.png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cards/1700000000000-Mi_foto.png", url)

	written, err := os.ReadFile(filepath.Join(root, "cards", "1700000000000-Mi_foto.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(written))
}

func TestLocalStorage_SaveCancelled(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = storage.Save(ctx, "cards", "a.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
