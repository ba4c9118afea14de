// Package mem implements the central object that connects the CPU and the
// DMA controller to a shared memory array, enforcing the bus arbitration
// discipline that keeps every access to that array mutually exclusive.
package mem

import (
	"fmt"
	"sync"

	"decvm/word"
)

// Size is the number of addressable Words in the machine (§3).
const Size = 2000

// ErrOutOfRange is returned when an address falls outside [0, Size).
var ErrOutOfRange = fmt.Errorf("mem: address out of range [0,%d)", Size)

// A Bus is the single owner of main memory and the binary mutual-exclusion
// primitive ("the bus arbiter", I5) that serializes every CPU and DMA access
// to it. One or more components (the CPU, the DMA worker) reach memory only
// through a shared pointer to a Bus.
type Bus struct {
	words [Size]word.Word
	mu    sync.Mutex
}

// NewBus returns a Bus with memory zeroed.
func NewBus() *Bus {
	return &Bus{}
}

// Read acquires the arbiter, reads one Word, and releases it.
func (b *Bus) Read(addr int) (word.Word, error) {
	if addr < 0 || addr >= Size {
		return word.Word{}, ErrOutOfRange
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.words[addr], nil
}

// Write acquires the arbiter, writes one Word, and releases it.
func (b *Bus) Write(addr int, w word.Word) error {
	if addr < 0 || addr >= Size {
		return ErrOutOfRange
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.words[addr] = w
	return nil
}

// TransferIn copies block into memory starting at addr, holding the arbiter
// for the entire copy so that no CPU read observes the destination region
// half-written (P6, I5). It is the memory-side half of a disk-to-memory DMA
// transfer.
func (b *Bus) TransferIn(addr int, block []word.Word) error {
	if addr < 0 || addr+len(block) > Size {
		return ErrOutOfRange
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.words[addr:addr+len(block)], block)
	return nil
}

// TransferOut copies len(block) Words out of memory starting at addr into
// block, holding the arbiter for the entire copy. It is the memory-side half
// of a memory-to-disk DMA transfer.
func (b *Bus) TransferOut(addr int, block []word.Word) error {
	if addr < 0 || addr+len(block) > Size {
		return ErrOutOfRange
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(block, b.words[addr:addr+len(block)])
	return nil
}

// Snapshot returns a copy of the full memory image, taken under a single
// acquisition of the arbiter like any other access.
func (b *Bus) Snapshot() [Size]word.Word {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.words
}
