package dma

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"decvm/word"
)

func TestReadWriteSector(t *testing.T) {
	d := NewDisk()
	var sec Sector
	sec[0] = word.FromInt(42)
	assert.NoError(t, d.Write(1, 2, 3, sec))

	got, err := d.Read(1, 2, 3)
	assert.NoError(t, err)
	assert.Equal(t, sec, got)
}

func TestBadGeometry(t *testing.T) {
	d := NewDisk()
	_, err := d.Read(Tracks, 0, 0)
	assert.ErrorIs(t, err, ErrBadGeometry)
	assert.ErrorIs(t, d.Write(0, Cylinders, 0, Sector{}), ErrBadGeometry)
}

func TestLoadImageCreatesWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.bin")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	d, err := LoadImage(path)
	assert.NoError(t, err)
	assert.NotNil(t, d)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.bin")
	d := NewDisk()
	var sec Sector
	sec[3] = word.FromInt(900)
	assert.NoError(t, d.Write(5, 6, 7, sec))
	assert.NoError(t, d.SaveImage(path))

	loaded, err := LoadImage(path)
	assert.NoError(t, err)
	got, err := loaded.Read(5, 6, 7)
	assert.NoError(t, err)
	assert.Equal(t, sec, got)
}
