// Package cpu implements the register file, address resolution, interrupt
// protocol, and fetch-decode-execute cycle of the decimal-arithmetic machine.
package cpu

import (
	"errors"

	"decvm/mask"
	"decvm/mem"
	"decvm/tracelog"
	"decvm/word"
)

// Condition-code values.
const (
	CCZero     = 0
	CCNegative = 1
	CCPositive = 2
	CCOverflow = 3
)

// Operation-mode values.
const (
	ModeUser   = 0
	ModeKernel = 1
)

// Addressing-mode values decoded from an instruction word.
const (
	AddrDirect    = 0
	AddrImmediate = 1
	AddrIndexed   = 2
)

// NoAddress is returned by resolveAddress for immediate-mode instructions,
// which have no effective address.
const NoAddress = -1

// DefaultHandlerAddr is where Reset installs a harmless RETURN instruction
// and points every interrupt vector entry at, so an unhandled interrupt
// returns control instead of looping forever.
const DefaultHandlerAddr = 200

// ErrFatalPC reports a program counter that has run past the end of memory.
// It is fatal rather than an interrupt because handler dispatch itself would
// be untrustworthy with a bad pc.
var ErrFatalPC = errors.New("cpu: program counter out of range")

// PSW is the packed program status word: condition code, operation mode,
// interrupt-enable, and program counter.
type PSW struct {
	CC   int
	Mode int
	IE   int
	PC   int
}

// instructionRegister holds the fields decoded from the most recently
// fetched instruction word.
type instructionRegister struct {
	Op       int
	AddrMode int
	Value    int
}

// DMADevice is the subset of the DMA controller the CPU drives directly:
// the five programmable registers written by the SDMA* opcodes, and the
// IO_DONE interrupt poll. cpu depends only on this interface so that
// package dma need not import package cpu.
type DMADevice interface {
	SetTrack(v int)
	SetCylinder(v int)
	SetSector(v int)
	SetDirection(v int)
	SetMemAddress(v int)
	Start()

	// PollIODone reports whether the completion interrupt is latched and,
	// if so, clears it. The latch is edge-triggered: a second poll without
	// an intervening transfer returns false.
	PollIODone() bool
}

// CPU is the register file plus the machinery that fetches, decodes, and
// executes instructions against a shared Bus.
type CPU struct {
	Bus    *mem.Bus
	DMA    DMADevice
	Logger tracelog.Sink

	AC word.Word
	IR instructionRegister

	RB int
	RL int
	RX int
	SP int

	PSW PSW

	Halted bool

	inInterruptRemap bool
}

// New wires a CPU to its bus, DMA device, and log sink, then resets it.
func New(bus *mem.Bus, dma DMADevice, logger tracelog.Sink) *CPU {
	if logger == nil {
		logger = tracelog.Discard
	}
	c := &CPU{Bus: bus, DMA: dma, Logger: logger}
	c.Reset()
	return c
}

// Reset establishes power-on state: empty stack, full memory reach, kernel
// mode, interrupts disabled, pc at 0 — and installs the default interrupt
// vector, pointing every one of the nine entries at DefaultHandlerAddr,
// where a RETURN instruction sits so an unhandled interrupt returns cleanly.
func (c *CPU) Reset() {
	c.SP = 0
	c.RX = 0
	c.RB = 0
	c.RL = mem.Size - 1

	c.PSW = PSW{CC: CCZero, Mode: ModeKernel, IE: 0, PC: 0}
	c.AC = word.Zero
	c.IR = instructionRegister{}
	c.Halted = false

	ret := word.Word{Magnitude: mask.Pack(
		[]int{RETURN, AddrDirect, 0},
		[]mask.DigitIndex{mask.D7, mask.D6, mask.D1},
	)}
	_ = c.Bus.Write(DefaultHandlerAddr, ret)
	for code := 0; code < 9; code++ {
		_ = c.Bus.Write(code, word.FromInt(DefaultHandlerAddr))
	}

	c.Logger.Event("cpu reset: pc=0 mode=kernel")
}

// updateCC recomputes the condition code from the current AC. Arithmetic
// opcodes do not call it on their overflow path, so an overflow code set
// earlier in the same instruction is never overwritten.
func (c *CPU) updateCC() {
	v := c.AC.ToInt()
	switch {
	case v == 0:
		c.PSW.CC = CCZero
	case v < 0:
		c.PSW.CC = CCNegative
	default:
		c.PSW.CC = CCPositive
	}
}

// resolveAddress computes the effective address for the current IR,
// relocating and bounds-checking it against RB/RL in user mode. It returns
// NoAddress for immediate-mode operands (callers consume IR.Value
// directly), and faulted=true if an invalid-address interrupt was raised.
func (c *CPU) resolveAddress() (addr int, faulted bool) {
	switch c.IR.AddrMode {
	case AddrImmediate:
		return NoAddress, false
	case AddrIndexed:
		addr = c.IR.Value + c.AC.ToInt()
	default: // AddrDirect
		addr = c.IR.Value
	}

	if c.PSW.Mode == ModeUser {
		addr += c.RB
		if addr < c.RB || addr > c.RL {
			c.raiseInterrupt(IntInvalidAddress)
			return 0, true
		}
	}
	return addr, false
}

// raiseInterrupt implements the save half of the interrupt protocol
// (§4.3): capture the pre-entry PSW fields, switch to kernel mode with
// interrupts disabled, push pc/flags/AC/RX in that order, then jump to the
// handler named by the vector table. A code outside 0-8 remaps to
// IntInvalidCode; inInterruptRemap limits that remap to a single level of
// recursion.
func (c *CPU) raiseInterrupt(code int) {
	if code < 0 || code > IntOverflow {
		if c.inInterruptRemap {
			return
		}
		c.inInterruptRemap = true
		c.raiseInterrupt(IntInvalidCode)
		c.inInterruptRemap = false
		return
	}

	c.Logger.Interrupt(code, interruptNames[code])

	flags := mask.Pack(
		[]int{c.PSW.CC, c.PSW.Mode, c.PSW.IE},
		[]mask.DigitIndex{mask.D3, mask.D2, mask.D1},
	)

	c.PSW.Mode = ModeKernel
	c.PSW.IE = 0

	c.pushRaw(word.FromInt(c.PSW.PC))
	c.pushRaw(word.FromInt(flags))
	c.pushRaw(c.AC)
	c.pushRaw(word.FromInt(c.RX))

	vector, err := c.Bus.Read(code)
	if err != nil {
		c.Halted = true
		return
	}
	c.PSW.PC = vector.ToInt()
}

// pushRaw pre-decrements SP and writes w to memory[SP], the same
// discipline as the PSH opcode but without PSH's caller-facing checks: a
// write that falls outside memory is dropped without raising an interrupt.
func (c *CPU) pushRaw(w word.Word) {
	c.SP--
	_ = c.Bus.Write(c.SP, w)
}

var interruptNames = map[int]string{
	IntInvalidSVC:         "invalid SVC",
	IntInvalidCode:        "invalid interrupt code",
	IntSVC:                "supervisor call",
	IntTimer:              "timer",
	IntIODone:             "I/O complete",
	IntInvalidInstruction: "invalid instruction",
	IntInvalidAddress:     "address invalid",
	IntUnderflow:          "stack underflow",
	IntOverflow:           "arithmetic overflow",
}

// Step executes exactly one instruction cycle: poll the DMA interrupt
// latch, bounds-check and fetch, check for the end-of-program sentinel,
// decode, and dispatch.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	if c.DMA != nil && c.PSW.IE == 1 && c.DMA.PollIODone() {
		c.raiseInterrupt(IntIODone)
		return nil
	}

	pc := c.PSW.PC
	if pc < 0 || pc >= mem.Size {
		c.Halted = true
		c.Logger.Event("fatal: pc out of range: %d", pc)
		return ErrFatalPC
	}

	instr, err := c.Bus.Read(pc)
	if err != nil {
		c.Halted = true
		return err
	}

	if instr.IsSentinel() {
		c.Halted = true
		c.Logger.Event("halt: sentinel encountered at pc=%d", pc)
		return nil
	}

	c.PSW.PC++

	raw := instr.Magnitude
	c.IR = instructionRegister{
		Op:       mask.First(raw, mask.D2, mask.D8),
		AddrMode: mask.Digit(raw, mask.D6),
		Value:    mask.Last(raw, mask.D5),
	}

	entry, ok := instructions[c.IR.Op]
	if !ok {
		c.Logger.Instruction(pc, "???", c.IR.Value)
		c.raiseInterrupt(IntInvalidInstruction)
		return nil
	}

	c.Logger.Instruction(pc, entry.Name, c.IR.Value)
	entry.Exec(c)
	return nil
}
