package adis16460

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// DefaultReadyPin is the GPIO pin wired to the data-ready line.
const DefaultReadyPin = "25"

// EdgeWatcher delivers data-ready notifications. Subscribe installs a
// callback fired on each rising edge; once Unsubscribe returns the callback
// is never invoked again.
type EdgeWatcher interface {
	Subscribe(fn func()) error
	Unsubscribe() error
}

// pinWatcher emulates interrupt callbacks with a goroutine blocking on
// periph's WaitForEdge.
type pinWatcher struct {
	pin  gpio.PinIO
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewPinWatcher configures the named GPIO pin for rising-edge detection.
// An empty name selects DefaultReadyPin.
func NewPinWatcher(name string) (EdgeWatcher, error) {
	if name == "" {
		name = DefaultReadyPin
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: no GPIO pin %q", ErrTransportUnavailable, name)
	}
	if err := p.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("%w: configure pin %q: %v", ErrTransportUnavailable, name, err)
	}
	return &pinWatcher{pin: p}, nil
}

func (w *pinWatcher) Subscribe(fn func()) error {
	if w.stop != nil {
		return fmt.Errorf("%w: pin %s already subscribed", ErrInvalidParameter, w.pin.Name())
	}
	w.stop = make(chan struct{})
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			edge := w.pin.WaitForEdge(time.Second)
			select {
			case <-w.stop:
				return
			default:
			}
			if edge {
				fn()
			}
		}
	}()
	return nil
}

// Unsubscribe halts edge detection and waits for the watch goroutine to
// exit, so the callback cannot fire afterwards.
func (w *pinWatcher) Unsubscribe() error {
	if w.stop == nil {
		return nil
	}
	close(w.stop)
	err := w.pin.Halt()
	w.wg.Wait()
	w.stop = nil
	return err
}
