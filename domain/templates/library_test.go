package templates

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, lum uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = lum
	}
	require.NoError(t, imaging.Save(img, path))
}

func TestLibrary_PathsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b_rifle.png"), 10)
	writePNG(t, filepath.Join(dir, "a_pistol.png"), 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	lib := NewLibrary(dir, "*.png", false, nil)
	paths, err := lib.Paths()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "a_pistol.png", filepath.Base(paths[0]))
	assert.Equal(t, "b_rifle.png", filepath.Base(paths[1]))
}

func TestLibrary_MissingDirIsEmpty(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "nope"), "*.png", true, nil)
	paths, err := lib.Paths()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLibrary_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))

	lib := NewLibrary(dir, "*.png", true, nil)
	_, err := lib.Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.png")
	assert.False(t, lib.Cached(bad))
}

func TestLibrary_CacheAndEvict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smg.png")
	writePNG(t, path, 50)

	lib := NewLibrary(dir, "*.png", true, nil)
	img, err := lib.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.True(t, lib.Cached(path))

	lib.Evict(path)
	assert.False(t, lib.Cached(path))

	_, err = lib.Load(path)
	require.NoError(t, err)
	lib.Clear()
	assert.False(t, lib.Cached(path))
}

func TestLibrary_NoCachingNeverStores(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knife.png")
	writePNG(t, path, 90)
	lib := NewLibrary(dir, "*.png", false, nil)
	_, err := lib.Load(path)
	require.NoError(t, err)
	assert.False(t, lib.Cached(path))
}

func TestLibrary_WatchEvictsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shotgun.png")
	writePNG(t, path, 30)

	lib := NewLibrary(dir, "*.png", true, nil)
	_, err := lib.Load(path)
	require.NoError(t, err)
	require.True(t, lib.Cached(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- lib.Watch(ctx, ready) }()
	<-ready

	writePNG(t, path, 200)
	assert.Eventually(t, func() bool { return !lib.Cached(path) }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestLibrary_LoadedImageKeepsPixels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gray.png")
	writePNG(t, path, 77)
	img, err := NewLibrary(dir, "*.png", false, nil).Load(path)
	require.NoError(t, err)
	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Equal(t, color.Gray{77}, color.Gray{uint8(r >> 8)})
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}
