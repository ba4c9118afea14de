package tracelog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewFileSink(&buf)

	s.Event("hello %d", 42)
	s.Interrupt(6, "address invalid")
	s.Instruction(300, "LOAD", 500)

	out := buf.String()
	assert.True(t, strings.Contains(out, "hello 42"))
	assert.True(t, strings.Contains(out, "interrupt 6: address invalid"))
	assert.True(t, strings.Contains(out, "pc=00300 LOAD     00500"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Event("x")
		Discard.Interrupt(0, "")
		Discard.Instruction(0, "", 0)
	})
}
