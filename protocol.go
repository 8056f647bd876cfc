package adis16460

import (
	"encoding/binary"
	"fmt"
)

// Register frames are 16 bits on the wire. A read is two frames: the first
// clocks out the address in its upper byte, the second clocks zeros while
// the device answers with the addressed register. The response always
// belongs to the previously addressed register, so the address write and
// the data read must stay paired per register.
//
// Callers hold d.txMu.

func (d *Dev) readReg(addr byte) ([]byte, error) {
	if err := d.ch.Write([]byte{addr, 0x00}); err != nil {
		return nil, fmt.Errorf("%w: reg 0x%02X address frame: %v", ErrTransport, addr, err)
	}
	b, err := d.ch.Read(2)
	if err != nil {
		return nil, fmt.Errorf("%w: reg 0x%02X data frame: %v", ErrTransport, addr, err)
	}
	if len(b) != 2 {
		return nil, fmt.Errorf("%w: reg 0x%02X returned %d bytes", ErrTransport, addr, len(b))
	}
	return b, nil
}

func (d *Dev) writeReg(addr, value byte) error {
	if err := d.ch.Write([]byte{addr | writeBit, value}); err != nil {
		return fmt.Errorf("%w: reg 0x%02X write: %v", ErrTransport, addr, err)
	}
	return nil
}

// readAxisWord reads the OUT and LOW halves of one output and concatenates
// them, OUT first, into the signed 32-bit axis value.
func (d *Dev) readAxisWord(outAddr, lowAddr byte) (int32, error) {
	out, err := d.readReg(outAddr)
	if err != nil {
		return 0, err
	}
	low, err := d.readReg(lowAddr)
	if err != nil {
		return 0, err
	}
	return int32(ToSigned(append(out, low...))), nil
}

// readBurst runs the full output sequence: DIAG_STAT first, the six axis
// register pairs, then temperature. 14 register reads per burst.
func (d *Dev) readBurst() (RawSample, error) {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	var raw RawSample

	diag, err := d.readReg(regDiagStat)
	if err != nil {
		return raw, err
	}
	raw.Diag = binary.BigEndian.Uint16(diag)

	if raw.Gx, err = d.readAxisWord(regXGyroOut, regXGyroLow); err != nil {
		return raw, err
	}
	if raw.Gy, err = d.readAxisWord(regYGyroOut, regYGyroLow); err != nil {
		return raw, err
	}
	if raw.Gz, err = d.readAxisWord(regZGyroOut, regZGyroLow); err != nil {
		return raw, err
	}
	if raw.Ax, err = d.readAxisWord(regXAcclOut, regXAcclLow); err != nil {
		return raw, err
	}
	if raw.Ay, err = d.readAxisWord(regYAcclOut, regYAcclLow); err != nil {
		return raw, err
	}
	if raw.Az, err = d.readAxisWord(regZAcclOut, regZAcclLow); err != nil {
		return raw, err
	}

	temp, err := d.readReg(regTempOut)
	if err != nil {
		return raw, err
	}
	raw.Temp = int16(ToSigned(temp))

	return raw, nil
}

// ReadRegister returns the 16-bit contents of a single register. Intended
// for diagnostics; sampled data should come through Poll and Latest.
func (d *Dev) ReadRegister(addr byte) (uint16, error) {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	b, err := d.readReg(addr)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// WriteRegister writes one payload byte to a register address.
func (d *Dev) WriteRegister(addr, value byte) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	return d.writeReg(addr, value)
}
