// Package adis16460 drives the Analog Devices ADIS16460 inertial sensor
// over SPI. The device samples internally at 2048 Hz, decimates to the
// configured output rate and raises a data-ready line per output sample;
// Poll consumes the pending edge and reads gyro, accel and temperature in
// one burst.
package adis16460

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/host/v3"
)

var (
	// ErrTransportUnavailable means the SPI port or GPIO pin could not be
	// opened at all.
	ErrTransportUnavailable = errors.New("adis16460: transport unavailable")
	// ErrTransport covers failed register transactions on an open channel.
	ErrTransport = errors.New("adis16460: transport error")
	// ErrInvalidParameter rejects configuration outside device limits.
	ErrInvalidParameter = errors.New("adis16460: invalid parameter")
)

// Clock abstracts time for tests. time.Now carries a monotonic reading, so
// intervals derived from it survive wall clock adjustments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Opts holds initialization options.
type Opts struct {
	SampleRateHz int   // decimated output rate; 2048 and above runs undecimated
	Taps         int   // Bartlett window FIR level, 0..7
	Clock        Clock // nil selects the system clock
}

// DefaultOpts matches the bring-up configuration.
var DefaultOpts = Opts{SampleRateHz: 2048, Taps: 4}

// Dev drives one ADIS16460. It owns its SpiChannel exclusively; no other
// code may issue transactions on the channel while the Dev exists.
type Dev struct {
	ch      SpiChannel
	watcher EdgeWatcher
	clock   Clock

	ready atomic.Bool // set by the data-ready edge, cleared by Poll

	txMu sync.Mutex // serializes register transactions on ch

	mu        sync.RWMutex // guards the fields below
	rate      int
	dec       int
	taps      int
	latest    Sample
	latestRaw RawSample
	started   time.Time
	sampled   time.Time

	closeOnce sync.Once
	closeErr  error
}

// New binds a driver to an already open channel and data-ready watcher,
// programs decimation and filter, then reads one sample so the accessors
// hold data before the first edge. dr may be nil when edge-driven polling
// is not needed, e.g. register tooling.
func New(ch SpiChannel, dr EdgeWatcher, opts *Opts) (*Dev, error) {
	if ch == nil {
		return nil, fmt.Errorf("%w: nil channel", ErrInvalidParameter)
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	clk := opts.Clock
	if clk == nil {
		clk = systemClock{}
	}
	d := &Dev{
		ch:      ch,
		watcher: dr,
		clock:   clk,
		started: clk.Now(),
	}
	if err := d.setDecRate(opts.SampleRateHz); err != nil {
		return nil, err
	}
	if err := d.SetTaps(opts.Taps); err != nil {
		return nil, err
	}
	if dr != nil {
		if err := dr.Subscribe(d.edge); err != nil {
			return nil, fmt.Errorf("data ready subscribe: %w", err)
		}
	}
	if err := d.readSample(); err != nil {
		if dr != nil {
			dr.Unsubscribe()
		}
		return nil, err
	}
	return d, nil
}

// Open connects to the device on a Linux SPI port with the data-ready line
// on a GPIO pin. Empty names select DefaultSpiDev and DefaultReadyPin.
func Open(spiDev, readyPin string, opts *Opts) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrTransportUnavailable, err)
	}
	ch, err := OpenSpiChannel(spiDev)
	if err != nil {
		return nil, err
	}
	dr, err := NewPinWatcher(readyPin)
	if err != nil {
		ch.Close()
		return nil, err
	}
	d, err := New(ch, dr, opts)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fmt.Sprintf("ADIS16460{rate:%dHz dec:%d taps:%d}", d.rate, d.dec, d.taps)
}

// edge is the data-ready callback. It only raises the flag; the SPI burst
// happens on the caller's goroutine in Poll.
func (d *Dev) edge() {
	d.ready.Store(true)
}

// DecimationFactor returns the DEC_RATE value for a requested output rate:
// the native 2048 Hz divided down by factor+1, floored. The result is
// clamped to [0, 255]; the register write sequence zeroes the high byte, so
// larger factors cannot be programmed, and rates at or below zero map to
// the slowest programmable rate.
func DecimationFactor(rateHz int) int {
	if rateHz <= 0 {
		return maxDecRate
	}
	dec := nativeRate/rateHz - 1
	if dec < 0 {
		dec = 0
	}
	if dec > maxDecRate {
		dec = maxDecRate
	}
	return dec
}

// setDecRate programs the decimation filter: the factor into the DEC_RATE
// low byte, then a second write zeroing the high byte.
func (d *Dev) setDecRate(rateHz int) error {
	if rateHz <= 0 {
		return fmt.Errorf("%w: sample rate %d Hz", ErrInvalidParameter, rateHz)
	}
	dec := DecimationFactor(rateHz)
	d.txMu.Lock()
	defer d.txMu.Unlock()
	if err := d.writeReg(regDecRate, byte(dec)); err != nil {
		return err
	}
	if err := d.writeReg(regDecRate+1, 0x00); err != nil {
		return err
	}
	d.mu.Lock()
	d.rate = rateHz
	d.dec = dec
	d.mu.Unlock()
	return nil
}

// SetTaps programs the Bartlett window FIR level. Values outside [0, 7]
// return ErrInvalidParameter without any register write, leaving the
// previous filter configuration in place.
func (d *Dev) SetTaps(taps int) error {
	if taps < 0 || taps > maxTaps {
		return fmt.Errorf("%w: taps %d outside 0..%d", ErrInvalidParameter, taps, maxTaps)
	}
	d.txMu.Lock()
	defer d.txMu.Unlock()
	if err := d.writeReg(regFltrCtrl, byte(taps)); err != nil {
		return err
	}
	d.mu.Lock()
	d.taps = taps
	d.mu.Unlock()
	return nil
}

// Poll consumes a pending data-ready edge and reads one sample, reporting
// whether a fresh sample was stored. Edges raised since the last call
// coalesce into a single read; with no edge pending Poll does nothing. On a
// transport error the stored sample and timestamps stay untouched.
func (d *Dev) Poll() (bool, error) {
	if !d.ready.Swap(false) {
		return false, nil
	}
	if err := d.readSample(); err != nil {
		return false, err
	}
	return true, nil
}

// readSample runs one burst and commits it. The commit happens only after
// every transaction succeeded, so readers never observe a partial sample.
func (d *Dev) readSample() error {
	raw, err := d.readBurst()
	if err != nil {
		return err
	}
	now := d.clock.Now()
	d.mu.Lock()
	d.latestRaw = raw
	d.latest = raw.Scaled()
	d.sampled = now
	d.mu.Unlock()
	return nil
}

// Latest returns the most recent sample in physical units. It never touches
// the bus.
func (d *Dev) Latest() Sample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest
}

// LatestRaw returns the most recent raw sample, including the DIAG_STAT
// word from the same burst.
func (d *Dev) LatestRaw() RawSample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latestRaw
}

// StartTime reports when the driver was initialized.
func (d *Dev) StartTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.started
}

// LastSampleTime reports when the latest sample was read.
func (d *Dev) LastSampleTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sampled
}

// SampleRate returns the configured output rate in Hz.
func (d *Dev) SampleRate() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rate
}

// DecRate returns the programmed decimation factor.
func (d *Dev) DecRate() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dec
}

// Taps returns the programmed FIR level.
func (d *Dev) Taps() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.taps
}

// ProdID reads the product identification register. A healthy device
// reports ProductID.
func (d *Dev) ProdID() (uint16, error) {
	return d.ReadRegister(regProdID)
}

// DiagStat reads the self-test and fault flag register. Zero means no
// fault.
func (d *Dev) DiagStat() (uint16, error) {
	return d.ReadRegister(regDiagStat)
}

// Close detaches the edge watcher first, so the callback can no longer
// fire, then closes the SPI channel. Subsequent calls return the first
// result.
func (d *Dev) Close() error {
	d.closeOnce.Do(func() {
		if d.watcher != nil {
			d.closeErr = d.watcher.Unsubscribe()
		}
		if err := d.ch.Close(); err != nil && d.closeErr == nil {
			d.closeErr = err
		}
	})
	return d.closeErr
}
