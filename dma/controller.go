package dma

import (
	"sync/atomic"
	"time"

	"decvm/mem"
	"decvm/tracelog"
)

// Direction values for the io-direction register (§3).
const (
	DirDiskToMemory = 0
	DirMemoryToDisk = 1
)

// Status values (§3).
const (
	StatusOK    = 0
	StatusError = 1
)

// SeekLatency is the simulated seek/transfer delay the worker sleeps
// before touching the bus, so single-step use can observe the DMA worker
// running concurrently with the CPU. The original hardware slept a full
// second "para que se note en la ejecución paso a paso"; this repository
// defaults to something small enough not to stall automated tests.
var SeekLatency = 50 * time.Millisecond

// A Controller holds the programmable DMA registers and drives the
// background worker that performs the actual transfer. It implements
// cpu.DMADevice.
type Controller struct {
	Bus    *mem.Bus
	Disk   *Disk
	Logger tracelog.Sink

	track, cylinder, sector, direction, memAddr int

	busy   atomic.Bool
	status atomic.Int32

	// ioDone is the single-writer (worker), single-reader-and-clearer
	// (CPU) interrupt latch (§5).
	ioDone atomic.Bool
}

// NewController wires a Controller to the bus and disk it will transfer
// between.
func NewController(bus *mem.Bus, disk *Disk, logger tracelog.Sink) *Controller {
	if logger == nil {
		logger = tracelog.Discard
	}
	return &Controller{Bus: bus, Disk: disk, Logger: logger}
}

func (c *Controller) SetTrack(v int)      { c.track = v }
func (c *Controller) SetCylinder(v int)   { c.cylinder = v }
func (c *Controller) SetSector(v int)     { c.sector = v }
func (c *Controller) SetDirection(v int)  { c.direction = v }
func (c *Controller) SetMemAddress(v int) { c.memAddr = v }

// Status reports the outcome of the most recently completed transfer.
func (c *Controller) Status() int { return int(c.status.Load()) }

// Busy reports whether a transfer is currently in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

// PollIODone reports and clears the completion latch, per the edge-
// triggered hardware-interrupt contract of §4.3/§5.
func (c *Controller) PollIODone() bool {
	return c.ioDone.CompareAndSwap(true, false)
}

// Start requests a transfer using the currently programmed registers. If
// the controller is already busy the request is rejected: logged, status
// set to error, no interrupt raised (§4.5) — the CPU never blocks waiting
// for SDMAON to succeed.
func (c *Controller) Start() {
	if !c.busy.CompareAndSwap(false, true) {
		c.Logger.Event("dma: transfer rejected, controller busy")
		c.status.Store(StatusError)
		return
	}

	track, cylinder, sector, direction, memAddr := c.track, c.cylinder, c.sector, c.direction, c.memAddr
	go c.run(track, cylinder, sector, direction, memAddr)
}

// run is the worker body (§4.5): simulate seek latency, acquire the bus for
// the whole sector copy, release it, then clear busy and latch completion.
func (c *Controller) run(track, cylinder, sector, direction, memAddr int) {
	c.Logger.Event("dma: transfer starting (track=%d cylinder=%d sector=%d dir=%d addr=%d)",
		track, cylinder, sector, direction, memAddr)

	time.Sleep(SeekLatency)

	status := StatusOK
	switch direction {
	case DirDiskToMemory:
		sec, err := c.Disk.Read(track, cylinder, sector)
		if err != nil {
			status = StatusError
			break
		}
		if err := c.Bus.TransferIn(memAddr, sec[:]); err != nil {
			status = StatusError
		}
	case DirMemoryToDisk:
		var sec Sector
		if err := c.Bus.TransferOut(memAddr, sec[:]); err != nil {
			status = StatusError
			break
		}
		if err := c.Disk.Write(track, cylinder, sector, sec); err != nil {
			status = StatusError
		}
	default:
		status = StatusError
	}

	c.status.Store(int32(status))
	c.busy.Store(false)
	c.ioDone.Store(true)
	c.Logger.Event("dma: transfer complete, status=%d", status)
}
