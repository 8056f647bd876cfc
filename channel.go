package adis16460

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// SPI parameters the device expects on its serial interface.
var (
	SpiFrequency = physic.MegaHertz
	SpiMode      = spi.Mode3
	SpiBits      = 8
)

// DefaultSpiDev is the port used when Open gets an empty device name.
const DefaultSpiDev = "/dev/spidev0.0"

// SpiChannel is the half-duplex transport register transactions run on.
// Write and Read each clock one chip-select frame; the register protocol
// depends on that framing, so a write and its follow-up read must never be
// merged into a single full-duplex transaction.
type SpiChannel interface {
	Write(p []byte) error
	Read(n int) ([]byte, error)
	Close() error
}

type spiChannel struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenSpiChannel connects to a Linux spidev port with the device's frame
// parameters (1 MHz, mode 3, 8-bit words). The host must be initialized
// first; Open does that for the common path.
func OpenSpiChannel(dev string) (SpiChannel, error) {
	if dev == "" {
		dev = DefaultSpiDev
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrTransportUnavailable, dev, err)
	}
	conn, err := port.Connect(SpiFrequency, SpiMode, SpiBits)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: connect %s: %v", ErrTransportUnavailable, dev, err)
	}
	return &spiChannel{port: port, conn: conn}, nil
}

func (c *spiChannel) Write(p []byte) error {
	return c.conn.Tx(p, nil)
}

func (c *spiChannel) Read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := c.conn.Tx(nil, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *spiChannel) Close() error {
	return c.port.Close()
}
