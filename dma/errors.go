package dma

import "errors"

// ErrBadGeometry reports a (track, cylinder, sector) triple outside the
// disk's addressable range.
var ErrBadGeometry = errors.New("dma: track/cylinder/sector out of range")

// ErrBusy describes a start request made while a transfer is already in
// flight; such a request is rejected rather than queued (I4). Start itself
// returns nothing: it reports the rejection by logging it and setting the
// status register to StatusError.
var ErrBusy = errors.New("dma: controller busy")
