package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/sidgoreloc/internal/container"
)

func TestLoadSIDByMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tune.dat")
	data := container.WriteSID(&container.Container{
		LoadAddress: 0x1000,
		Title:       "Tune",
		Payload:     []byte{0x60},
	})
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := New().Load(path)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1000), c.LoadAddress)
	assert.Equal(t, "Tune", c.Title)
}

func TestLoadEditorByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tune.swm")
	data := container.WriteEditor(&container.Container{
		LoadAddress: 0x1000,
		InitAddress: 0x1000,
		PlayAddress: 0x1003,
		Payload:     []byte{0x60},
	})
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := New().Load(path)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1003), c.PlayAddress)
	assert.Equal(t, []byte{0x60}, c.Payload)
}

func TestLoadPRGFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tune.prg")
	assert.NoError(t, os.WriteFile(path, []byte{0x00, 0x10, 0x60}, 0o644))

	c, err := New().Load(path)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1000), c.LoadAddress)
	assert.Equal(t, []byte{0x60}, c.Payload)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load("does-not-exist.prg")
	assert.Error(t, err)
}
