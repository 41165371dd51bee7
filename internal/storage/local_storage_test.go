package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)

	_, err = os.Stat(tempDir)
	require.NoError(t, err, "Base directory should be created")
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := "V1StGXR8_Z5jdHi6B-myT"
	content := "not really an image"

	err = storage.Save(id, strings.NewReader(content))
	require.NoError(t, err)

	expectedPath := storage.getPathFromID(id)
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err, "File should exist after save")
	require.Equal(t, int64(len(content)), fileInfo.Size())

	readCloser, err := storage.Get(id)
	require.NoError(t, err)
	retrievedContent, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	readCloser.Close()
	require.Equal(t, content, string(retrievedContent))

	err = storage.Delete(id)
	require.NoError(t, err)

	_, err = os.Stat(expectedPath)
	require.True(t, os.IsNotExist(err), "File should not exist after delete")
}

func TestLocalStorage_GetNonExistent(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Get("non_existent_id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_DeleteNonExistent(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, storage.Delete("non_existent_id"))
}

func TestLocalStorage_SaveEmptyKey(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.Error(t, storage.Save("", strings.NewReader("x")))
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

func TestProbeImage(t *testing.T) {
	var pngBuf, jpegBuf, gifBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, testImage(40, 30)))
	require.NoError(t, jpeg.Encode(&jpegBuf, testImage(16, 64), nil))
	require.NoError(t, gif.Encode(&gifBuf, testImage(8, 8), nil))

	testCases := []struct {
		name        string
		data        []byte
		width       int
		height      int
		contentType string
	}{
		{"png", pngBuf.Bytes(), 40, 30, "image/png"},
		{"jpeg", jpegBuf.Bytes(), 16, 64, "image/jpeg"},
		{"gif", gifBuf.Bytes(), 8, 8, "image/gif"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := ProbeImage(bytes.NewReader(tc.data))
			require.NoError(t, err)
			require.Equal(t, tc.width, info.Width)
			require.Equal(t, tc.height, info.Height)
			require.Equal(t, tc.contentType, info.ContentType)
		})
	}
}

func TestProbeImage_NotAnImage(t *testing.T) {
	_, err := ProbeImage(strings.NewReader("plain text pretending to be a picture"))
	require.ErrorIs(t, err, ErrNotAnImage)
}
