package cpu

import (
	"decvm/mem"
	"decvm/word"
)

// operand reads the current instruction's operand value: IR.Value directly
// for immediate mode, or the word at the effective address otherwise. ok is
// false if address resolution already raised a fault, in which case the
// opcode must abort without further side effects.
func (c *CPU) operand() (val int, ok bool) {
	if c.IR.AddrMode == AddrImmediate {
		return c.IR.Value, true
	}
	addr, faulted := c.resolveAddress()
	if faulted {
		return 0, false
	}
	w, err := c.Bus.Read(addr)
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return 0, false
	}
	return w.ToInt(), true
}

// execArithmetic returns the executor for SUM/SUB/MUL/DIV, each of which
// combines AC with its operand in a wide integer domain, truncating and
// flagging overflow when the result exceeds seven decimal digits.
func execArithmetic(op int) func(*CPU) {
	return func(c *CPU) {
		operand, ok := c.operand()
		if !ok {
			return
		}

		if op == DIV && operand == 0 {
			c.raiseInterrupt(IntInvalidInstruction)
			return
		}

		ac := int64(c.AC.ToInt())
		o := int64(operand)
		var res int64
		switch op {
		case SUM:
			res = ac + o
		case SUB:
			res = ac - o
		case MUL:
			res = ac * o
		case DIV:
			res = ac / o
		}

		if res > word.MaxMagnitude || res < -word.MaxMagnitude {
			c.PSW.CC = CCOverflow
			c.raiseInterrupt(IntOverflow)
			c.AC = word.Truncate(res)
			return
		}

		c.AC = word.Truncate(res)
		c.updateCC()
	}
}

// execLoad implements LOAD: AC takes the immediate value or the word at the
// effective address.
func execLoad(c *CPU) {
	if c.IR.AddrMode == AddrImmediate {
		c.AC = word.FromInt(c.IR.Value)
		return
	}
	addr, faulted := c.resolveAddress()
	if faulted {
		return
	}
	w, err := c.Bus.Read(addr)
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return
	}
	c.AC = w
}

// execStore implements STORE: AC is written to the effective address.
// Immediate addressing has no destination and is invalid.
func execStore(c *CPU) {
	if c.IR.AddrMode == AddrImmediate {
		c.raiseInterrupt(IntInvalidInstruction)
		return
	}
	addr, faulted := c.resolveAddress()
	if faulted {
		return
	}
	if err := c.Bus.Write(addr, c.AC); err != nil {
		c.raiseInterrupt(IntInvalidAddress)
	}
}

func execLoadRX(c *CPU) { c.AC = word.FromInt(c.RX) }
func execStrRX(c *CPU)  { c.RX = c.AC.ToInt() }
func execLoadRB(c *CPU) { c.AC = word.FromInt(c.RB) }
func execStrRB(c *CPU)  { c.RB = c.AC.ToInt() }
func execLoadRL(c *CPU) { c.AC = word.FromInt(c.RL) }
func execStrRL(c *CPU)  { c.RL = c.AC.ToInt() }
func execLoadSP(c *CPU) { c.AC = word.FromInt(c.SP) }
func execStrSP(c *CPU)  { c.SP = c.AC.ToInt() }

// execComp implements COMP: set cc from AC versus its operand without
// modifying AC.
func execComp(c *CPU) {
	operand, ok := c.operand()
	if !ok {
		return
	}
	ac := c.AC.ToInt()
	switch {
	case ac == operand:
		c.PSW.CC = CCZero
	case ac < operand:
		c.PSW.CC = CCNegative
	default:
		c.PSW.CC = CCPositive
	}
}

// execJump returns the executor for J and the four conditional branches.
// The conditionals compare AC against the word currently at memory[SP] —
// the stack top, not popped.
func execJump(op int) func(*CPU) {
	return func(c *CPU) {
		addr, faulted := c.resolveAddress()
		if faulted {
			return
		}

		if op == J {
			c.PSW.PC = addr
			return
		}

		if c.SP < 0 || c.SP >= mem.Size {
			c.raiseInterrupt(IntInvalidAddress)
			return
		}
		top, err := c.Bus.Read(c.SP)
		if err != nil {
			c.raiseInterrupt(IntInvalidAddress)
			return
		}

		ac := c.AC.ToInt()
		sp := top.ToInt()
		jump := false
		switch op {
		case JMPE:
			jump = ac == sp
		case JMPNE:
			jump = ac != sp
		case JMPLT:
			jump = ac < sp
		case JMPLGT:
			jump = ac > sp
		}
		if jump {
			c.PSW.PC = addr
		}
	}
}

// execPush implements PSH: pre-decrement SP, write AC to memory[SP].
func execPush(c *CPU) {
	c.SP--
	if err := c.Bus.Write(c.SP, c.AC); err != nil {
		c.raiseInterrupt(IntInvalidAddress)
	}
}

// execPop implements POP: read memory[SP] into AC, then post-increment SP.
// A pop with SP already at or beyond RX is an underflow and leaves AC
// unmodified.
func execPop(c *CPU) {
	if c.SP >= c.RX {
		c.raiseInterrupt(IntUnderflow)
		return
	}
	w, err := c.Bus.Read(c.SP)
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return
	}
	c.AC = w
	c.SP++
}

func execSVC(c *CPU) { c.raiseInterrupt(IntSVC) }

// execReturn pops in reverse push order of raiseInterrupt: RX, AC, packed
// flags, pc.
func execReturn(c *CPU) {
	rx, err := c.popRaw()
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return
	}
	c.RX = rx.ToInt()

	ac, err := c.popRaw()
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return
	}
	c.AC = ac

	flags, err := c.popRaw()
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return
	}
	f := flags.ToInt()
	c.PSW.CC = f / 100
	c.PSW.Mode = (f / 10) % 10
	c.PSW.IE = f % 10

	pc, err := c.popRaw()
	if err != nil {
		c.raiseInterrupt(IntInvalidAddress)
		return
	}
	c.PSW.PC = pc.ToInt()
}

// popRaw reads memory[SP] and post-increments SP, without the underflow
// check execPop applies — raiseInterrupt's own pushes are trusted pairs, so
// RETURN only needs plain stack discipline, not the user-facing guard.
func (c *CPU) popRaw() (word.Word, error) {
	w, err := c.Bus.Read(c.SP)
	if err != nil {
		return word.Word{}, err
	}
	c.SP++
	return w, nil
}

func execHAB(c *CPU)  { c.PSW.IE = 1 }
func execDHAB(c *CPU) { c.PSW.IE = 0 }
func execTTI(c *CPU)  {}

// execCHMOD toggles kernel/user mode but only when currently privileged; a
// user-mode attempt raises invalid-instruction (§9: CHMOD is privileged-only).
func execCHMOD(c *CPU) {
	if c.PSW.Mode != ModeKernel {
		c.raiseInterrupt(IntInvalidInstruction)
		return
	}
	c.PSW.Mode = ModeUser
}

// execDMARegister returns the executor for the five SDMA* register-set
// opcodes, each of which writes IR.Value into one DMA controller register.
func execDMARegister(set func(c *CPU, v int)) func(*CPU) {
	return func(c *CPU) {
		if c.DMA == nil {
			return
		}
		set(c, c.IR.Value)
	}
}

// execDMAOn implements SDMAON: request the controller start a transfer.
// Busy/idle arbitration and rejection logging are the controller's own
// concern (§4.5); the CPU only issues the request.
func execDMAOn(c *CPU) {
	if c.DMA == nil {
		return
	}
	c.DMA.Start()
}
