// Package tracelog is the core's log sink (§6): an external collaborator the
// core writes to but never depends on the output of. It exposes exactly the
// three operations spec.md requires — an untyped event, an interrupt record,
// and an instruction trace.
package tracelog

import (
	"io"
	"log"
)

// A Sink receives machine events. The core holds one by interface so that
// host-level failures writing to it (a full disk, a closed file) never
// propagate into the machine (§7).
type Sink interface {
	Event(format string, args ...any)
	Interrupt(code int, description string)
	Instruction(pc int, mnemonic string, operand int)
}

// FileSink writes timestamped lines to an *log.Logger, mirroring the
// original C logger's fprintf-with-timestamp shape.
type FileSink struct {
	logger *log.Logger
}

// NewFileSink wraps w (typically an *os.File) with the standard date and
// time prefix (log.LstdFlags), close to the original logger's own hh:mm:ss
// prefix.
func NewFileSink(w io.Writer) *FileSink {
	return &FileSink{logger: log.New(w, "", log.LstdFlags)}
}

// Event records an untyped, free-form line.
func (s *FileSink) Event(format string, args ...any) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

// Interrupt records an interrupt dispatch as one line on the sink's writer.
// Nothing is echoed to the terminal.
func (s *FileSink) Interrupt(code int, description string) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf("interrupt %d: %s", code, description)
}

// Instruction records one fetch: the pc it was fetched from, its mnemonic,
// and its decoded operand value.
func (s *FileSink) Instruction(pc int, mnemonic string, operand int) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf("pc=%05d %-8s %05d", pc, mnemonic, operand)
}

// Discard is a Sink that drops everything, useful for tests and for the
// debug TUI where log lines would otherwise corrupt the terminal display.
var Discard Sink = discard{}

type discard struct{}

func (discard) Event(string, ...any)         {}
func (discard) Interrupt(int, string)        {}
func (discard) Instruction(int, string, int) {}
