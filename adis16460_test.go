package adis16460

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// testChannel emulates the device end of the SPI link: address frames select
// a register, data frames answer with its contents, write frames latch the
// payload byte. Every write frame is recorded in order.
type testChannel struct {
	regs     map[byte]uint16
	stored   map[byte]byte
	writes   [][]byte
	addr     byte
	writeErr error
	readErr  error
	closed   int
}

func newTestChannel() *testChannel {
	return &testChannel{
		regs:   map[byte]uint16{regProdID: ProductID},
		stored: map[byte]byte{},
	}
}

func (c *testChannel) Write(p []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	if p[0]&writeBit != 0 {
		c.stored[p[0]&^byte(writeBit)] = p[1]
		return nil
	}
	c.addr = p[0]
	return nil
}

func (c *testChannel) Read(n int) ([]byte, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	v := c.regs[c.addr]
	return []byte{byte(v >> 8), byte(v)}, nil
}

func (c *testChannel) Close() error {
	c.closed++
	return nil
}

func (c *testChannel) setAxis(outAddr, lowAddr byte, v int32) {
	c.regs[outAddr] = uint16(uint32(v) >> 16)
	c.regs[lowAddr] = uint16(uint32(v))
}

// testWatcher hands the subscribed callback back to the test so edges can be
// raised on demand. It records whether the channel was still open when
// Unsubscribe ran.
type testWatcher struct {
	ch            *testChannel
	fn            func()
	subscribed    int
	unsubscribed  int
	closedAtUnsub int
}

func (w *testWatcher) Subscribe(fn func()) error {
	w.fn = fn
	w.subscribed++
	return nil
}

func (w *testWatcher) Unsubscribe() error {
	w.unsubscribed++
	if w.ch != nil {
		w.closedAtUnsub = w.ch.closed
	}
	w.fn = nil
	return nil
}

func (w *testWatcher) fire() {
	if w.fn != nil {
		w.fn()
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestDev(t *testing.T, ch *testChannel, w *testWatcher, opts *Opts) *Dev {
	t.Helper()
	d, err := New(ch, w, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDecimationFactor(t *testing.T) {
	cases := []struct {
		rateHz int
		want   int
	}{
		{4096, 0},
		{2048, 0},
		{1024, 1},
		{683, 1},
		{682, 2},
		{256, 7},
		{100, 19},
		{8, 255},
		{7, 255},
		{1, 255},
		{0, 255},
		{-10, 255},
	}
	for _, c := range cases {
		if got := DecimationFactor(c.rateHz); got != c.want {
			t.Errorf("DecimationFactor(%d) = %d, want %d", c.rateHz, got, c.want)
		}
	}
}

func TestNewProgramsDecimationAndFilter(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	newTestDev(t, ch, w, &Opts{SampleRateHz: 1024, Taps: 4})

	if len(ch.writes) < 3 {
		t.Fatalf("only %d write frames issued", len(ch.writes))
	}
	want := [][]byte{{0xB6, 0x01}, {0xB7, 0x00}, {0xB8, 0x04}}
	for i, frame := range want {
		if got := ch.writes[i]; got[0] != frame[0] || got[1] != frame[1] {
			t.Errorf("write %d = % X, want % X", i, got, frame)
		}
	}
	// Configuration plus the 14 address frames of the seed burst.
	if len(ch.writes) != 3+14 {
		t.Errorf("%d write frames after init, want 17", len(ch.writes))
	}
	if w.subscribed != 1 {
		t.Errorf("watcher subscribed %d times", w.subscribed)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	ch := newTestChannel()
	if _, err := New(ch, &testWatcher{}, &Opts{SampleRateHz: 0, Taps: 4}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("rate 0: err = %v", err)
	}
	if len(ch.writes) != 0 {
		t.Fatalf("rejected rate still issued %d writes", len(ch.writes))
	}
	if _, err := New(ch, &testWatcher{}, &Opts{SampleRateHz: 1024, Taps: 9}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("taps 9: err = %v", err)
	}
	if _, err := New(nil, &testWatcher{}, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("nil channel: err = %v", err)
	}
}

func TestSetTapsRejectedWithoutWrite(t *testing.T) {
	ch := newTestChannel()
	d := newTestDev(t, ch, &testWatcher{ch: ch}, nil)
	before := len(ch.writes)

	for _, taps := range []int{-1, 8, 100} {
		if err := d.SetTaps(taps); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("SetTaps(%d) err = %v", taps, err)
		}
	}
	if len(ch.writes) != before {
		t.Errorf("rejected taps issued %d extra writes", len(ch.writes)-before)
	}
	if d.Taps() != DefaultOpts.Taps {
		t.Errorf("taps changed to %d after rejections", d.Taps())
	}
}

func TestSetTapsPrograms(t *testing.T) {
	ch := newTestChannel()
	d := newTestDev(t, ch, &testWatcher{ch: ch}, nil)

	if err := d.SetTaps(7); err != nil {
		t.Fatalf("SetTaps(7): %v", err)
	}
	last := ch.writes[len(ch.writes)-1]
	if last[0] != 0xB8 || last[1] != 0x07 {
		t.Errorf("filter write frame = % X, want B8 07", last)
	}
	if d.Taps() != 7 {
		t.Errorf("Taps() = %d", d.Taps())
	}
}

func TestSeedReadPopulatesLatest(t *testing.T) {
	ch := newTestChannel()
	ch.setAxis(regXGyroOut, regXGyroLow, 2*65536)
	ch.regs[regTempOut] = 40

	d := newTestDev(t, ch, &testWatcher{ch: ch}, nil)
	s := d.Latest()
	if s.Gx != 0.01 {
		t.Errorf("seed Gx = %v, want 0.01", s.Gx)
	}
	if s.Temp != 27.0 {
		t.Errorf("seed temp = %v, want 27.0", s.Temp)
	}
	if d.LastSampleTime().IsZero() {
		t.Error("seed read left sample time zero")
	}
}

func TestPollWithoutEdgeIsNoop(t *testing.T) {
	ch := newTestChannel()
	d := newTestDev(t, ch, &testWatcher{ch: ch}, nil)
	before := len(ch.writes)

	ok, err := d.Poll()
	if err != nil || ok {
		t.Fatalf("Poll = (%v, %v), want (false, nil)", ok, err)
	}
	if len(ch.writes) != before {
		t.Errorf("idle Poll issued %d frames", len(ch.writes)-before)
	}
}

func TestPollConsumesEdge(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	d := newTestDev(t, ch, w, nil)

	ch.setAxis(regZAcclOut, regZAcclLow, -65536)
	w.fire()

	ok, err := d.Poll()
	if err != nil || !ok {
		t.Fatalf("Poll = (%v, %v), want (true, nil)", ok, err)
	}
	if az := d.Latest().Az; az >= 0 {
		t.Errorf("Az = %v, want negative", az)
	}

	// The edge is consumed; a second poll has nothing to do.
	ok, err = d.Poll()
	if err != nil || ok {
		t.Fatalf("second Poll = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestEdgesCoalesce(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	d := newTestDev(t, ch, w, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.fire()
		}()
	}
	wg.Wait()

	reads := 0
	for i := 0; i < 5; i++ {
		ok, err := d.Poll()
		if err != nil {
			t.Fatalf("Poll %d: %v", i, err)
		}
		if ok {
			reads++
		}
	}
	if reads != 1 {
		t.Errorf("%d reads for a burst of edges, want 1", reads)
	}
}

func TestAxisWordOrder(t *testing.T) {
	cases := []struct {
		name     string
		out, low byte
		get      func(RawSample) int32
	}{
		{"gyro x", regXGyroOut, regXGyroLow, func(r RawSample) int32 { return r.Gx }},
		{"gyro y", regYGyroOut, regYGyroLow, func(r RawSample) int32 { return r.Gy }},
		{"gyro z", regZGyroOut, regZGyroLow, func(r RawSample) int32 { return r.Gz }},
		{"accel x", regXAcclOut, regXAcclLow, func(r RawSample) int32 { return r.Ax }},
		{"accel y", regYAcclOut, regYAcclLow, func(r RawSample) int32 { return r.Ay }},
		{"accel z", regZAcclOut, regZAcclLow, func(r RawSample) int32 { return r.Az }},
	}
	for _, c := range cases {
		ch := newTestChannel()
		w := &testWatcher{ch: ch}
		d := newTestDev(t, ch, w, nil)

		ch.regs[c.out] = 0x1234
		ch.regs[c.low] = 0x5678
		w.fire()
		if _, err := d.Poll(); err != nil {
			t.Fatalf("%s: Poll: %v", c.name, err)
		}
		if got := c.get(d.LatestRaw()); got != 0x12345678 {
			t.Errorf("%s = 0x%08X, want 0x12345678 (OUT word high, LOW word low)", c.name, got)
		}
	}
}

func TestBurstAddressOrder(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	d := newTestDev(t, ch, w, nil)

	ch.regs[regDiagStat] = 0x0020
	start := len(ch.writes)
	w.fire()
	if _, err := d.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	// DIAG_STAT opens the burst and temperature closes it; each axis is
	// addressed OUT before LOW.
	wantOrder := []byte{
		regDiagStat,
		regXGyroOut, regXGyroLow,
		regYGyroOut, regYGyroLow,
		regZGyroOut, regZGyroLow,
		regXAcclOut, regXAcclLow,
		regYAcclOut, regYAcclLow,
		regZAcclOut, regZAcclLow,
		regTempOut,
	}
	frames := ch.writes[start:]
	if len(frames) != len(wantOrder) {
		t.Fatalf("burst issued %d frames, want %d", len(frames), len(wantOrder))
	}
	for i, addr := range wantOrder {
		if frames[i][0] != addr {
			t.Errorf("burst frame %d addressed reg 0x%02X, want 0x%02X", i, frames[i][0], addr)
		}
	}
	if got := d.LatestRaw().Diag; got != 0x0020 {
		t.Errorf("Diag = 0x%04X, want 0x0020", got)
	}
	if got, err := d.DiagStat(); err != nil || got != 0x0020 {
		t.Errorf("DiagStat = (0x%04X, %v), want (0x0020, nil)", got, err)
	}
}

func TestTransportErrorLeavesLatestUntouched(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	clk := &fakeClock{}
	d := newTestDev(t, ch, w, &Opts{SampleRateHz: 1024, Taps: 4, Clock: clk})

	ch.setAxis(regXGyroOut, regXGyroLow, 65536)
	w.fire()
	if _, err := d.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	good := d.Latest()
	goodTime := d.LastSampleTime()

	ch.setAxis(regXGyroOut, regXGyroLow, 8*65536)
	ch.readErr = errors.New("bus gone")
	w.fire()
	ok, err := d.Poll()
	if ok || !errors.Is(err, ErrTransport) {
		t.Fatalf("Poll = (%v, %v), want transport error", ok, err)
	}
	if d.Latest() != good {
		t.Error("failed poll changed the stored sample")
	}
	if !d.LastSampleTime().Equal(goodTime) {
		t.Error("failed poll advanced the sample time")
	}

	// Next edge recovers.
	ch.readErr = nil
	w.fire()
	if ok, err := d.Poll(); !ok || err != nil {
		t.Fatalf("recovery Poll = (%v, %v)", ok, err)
	}
	if gx := d.Latest().Gx; gx != 0.04 {
		t.Errorf("recovered Gx = %v, want 0.04", gx)
	}
}

func TestProdID(t *testing.T) {
	ch := newTestChannel()
	d := newTestDev(t, ch, &testWatcher{ch: ch}, nil)

	id, err := d.ProdID()
	if err != nil {
		t.Fatalf("ProdID: %v", err)
	}
	if id != ProductID {
		t.Errorf("ProdID = 0x%04X, want 0x%04X", id, ProductID)
	}
	last := ch.writes[len(ch.writes)-1]
	if last[0] != regProdID || last[1] != 0x00 {
		t.Errorf("address frame = % X, want 56 00", last)
	}
}

func TestCloseUnsubscribesBeforeChannelClose(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	d := newTestDev(t, ch, w, nil)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.unsubscribed != 1 {
		t.Fatalf("unsubscribed %d times, want 1", w.unsubscribed)
	}
	if w.closedAtUnsub != 0 {
		t.Error("channel was closed before the watcher detached")
	}
	if ch.closed != 1 {
		t.Fatalf("channel closed %d times, want 1", ch.closed)
	}

	// Second close is a no-op.
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if ch.closed != 1 || w.unsubscribed != 1 {
		t.Errorf("second Close reran teardown (closed=%d unsubscribed=%d)", ch.closed, w.unsubscribed)
	}
}

func TestTimestampsAdvanceWithSamples(t *testing.T) {
	ch := newTestChannel()
	w := &testWatcher{ch: ch}
	clk := &fakeClock{}
	d := newTestDev(t, ch, w, &Opts{SampleRateHz: 2048, Taps: 4, Clock: clk})

	started := d.StartTime()
	first := d.LastSampleTime()
	if !first.After(started) {
		t.Fatalf("seed sample time %v not after start %v", first, started)
	}

	w.fire()
	if _, err := d.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !d.LastSampleTime().After(first) {
		t.Error("sample time did not advance with a fresh sample")
	}
	if !d.StartTime().Equal(started) {
		t.Error("start time changed after polling")
	}
}
