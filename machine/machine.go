// Package machine owns every core component (§9 Design Notes: "a single
// machine value owned by the driver") and exposes the load/run/step/
// shutdown surface the shell drives.
package machine

import (
	"fmt"
	"io"
	"os"
	"time"

	"decvm/cpu"
	"decvm/dma"
	"decvm/loader"
	"decvm/mem"
	"decvm/tracelog"
)

// DefaultMaxCycles bounds a Run call as the liveness safety net §5 requires;
// the original driver's own default of 100 000 is preserved here.
const DefaultMaxCycles = 100_000

// A Machine wires together the bus, CPU, DMA controller, and disk that make
// up one running instance of the emulator.
type Machine struct {
	Bus     *mem.Bus
	CPU     *cpu.CPU
	DMA     *dma.Controller
	Disk    *dma.Disk
	Logger  tracelog.Sink
	LogFile *os.File

	diskPath string
	started  bool
}

// New constructs a Machine, loading (or creating) the disk image at
// diskPath and writing trace/event output to logPath.
func New(diskPath, logPath string) (*Machine, error) {
	var logger tracelog.Sink
	var f *os.File
	if logPath != "" {
		var err error
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("machine: opening log file: %w", err)
		}
		logger = tracelog.NewFileSink(f)
	} else {
		logger = tracelog.Discard
	}

	disk, err := dma.LoadImage(diskPath)
	if err != nil {
		return nil, fmt.Errorf("machine: loading disk image: %w", err)
	}

	bus := mem.NewBus()
	controller := dma.NewController(bus, disk, logger)
	c := cpu.New(bus, controller, logger)

	return &Machine{
		Bus:      bus,
		CPU:      c,
		DMA:      controller,
		Disk:     disk,
		Logger:   logger,
		LogFile:  f,
		diskPath: diskPath,
	}, nil
}

// Load parses a program file and installs it into memory, then configures
// the registers the loader's contract promises on success (§6): RB = 300,
// RL = 1999, SP = RX = RL, mode unchanged (kernel) until Run switches it.
func (m *Machine) Load(r io.Reader) (loader.Result, error) {
	res, err := loader.Load(r, m.Bus)
	if err != nil {
		return loader.Result{}, err
	}

	m.CPU.RB = loader.UserMemStart
	m.CPU.RL = mem.Size - 1
	m.CPU.SP = m.CPU.RL
	m.CPU.RX = m.CPU.RL
	m.CPU.PSW.PC = res.StartAddress
	m.started = false

	m.Logger.Event("loaded %q: %d instructions at %d", res.Name, res.InstructionsLoaded, res.StartAddress)
	return res, nil
}

// Step switches to user mode immediately before executing the first
// instruction after a load (§6: "the machine remains in kernel mode until
// the run command switches to user mode immediately before executing the
// first instruction") and then executes one instruction cycle. Later
// switches into kernel mode — entering an interrupt handler — are left
// alone; only the one-time post-load transition is this method's concern.
func (m *Machine) Step() error {
	if !m.started {
		m.started = true
		m.CPU.PSW.Mode = cpu.ModeUser
	}
	return m.CPU.Step()
}

// Run drives the instruction cycle until the CPU halts or maxCycles is
// exhausted, whichever comes first, returning the number of cycles
// actually executed.
func (m *Machine) Run(maxCycles int) (int, error) {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}
	n := 0
	for ; n < maxCycles; n++ {
		if m.CPU.Halted {
			break
		}
		if err := m.Step(); err != nil {
			return n, err
		}
	}
	if n == maxCycles && !m.CPU.Halted {
		m.Logger.Event("run: exhausted %d cycles without halting", maxCycles)
	}
	return n, nil
}

// Shutdown quiesces any in-flight DMA worker, persists the disk image, and
// closes the log file. Per §5, shutdown must not race a pending transfer.
func (m *Machine) Shutdown() error {
	for m.DMA.Busy() {
		time.Sleep(time.Millisecond)
	}
	err := m.Disk.SaveImage(m.diskPath)
	if m.LogFile != nil {
		_ = m.LogFile.Close()
	}
	return err
}
