package mem

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"decvm/word"
)

func TestReadWrite(t *testing.T) {
	b := NewBus()
	assert.NoError(t, b.Write(500, word.FromInt(7)))
	w, err := b.Read(500)
	assert.NoError(t, err)
	assert.Equal(t, 7, w.ToInt())
}

func TestOutOfRange(t *testing.T) {
	b := NewBus()
	_, err := b.Read(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = b.Read(Size)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, b.Write(Size+1, word.Zero), ErrOutOfRange)
}

// TestTransferAtomicity exercises P6: a concurrent reader must never observe
// a half-written transfer destination.
func TestTransferAtomicity(t *testing.T) {
	b := NewBus()
	block := make([]word.Word, 9)
	for i := range block {
		block[i] = word.FromInt(1111 * (i + 1))
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	var bad bool
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := b.Snapshot()
			allZero := true
			allSet := true
			for i := 400; i < 409; i++ {
				if snap[i].Magnitude != 0 {
					allZero = false
				}
				if snap[i] != block[i-400] {
					allSet = false
				}
			}
			if !allZero && !allSet {
				mu.Lock()
				bad = true
				mu.Unlock()
			}
		}
	}()

	assert.NoError(t, b.TransferIn(400, block))
	close(stop)
	wg.Wait()

	assert.False(t, bad, "observed a partially-written transfer destination")
}
