package adis16460

// Datasheet scale factors for the 32-bit accumulated outputs. The 16-bit
// OUT registers carry 0.005 °/s per LSB (gyro) and 0.25 mg per LSB (accel);
// concatenating the LOW word shifts both by 2^16.
const (
	gravity = 9.80665 // standard gravity, m/s² per g

	gyroScale  = 0.005 / 65536.0                   // °/s per LSB
	accelScale = 0.25 / 65536.0 * gravity / 1000.0 // mm/s² per LSB

	tempScale  = 0.05 // °C per LSB of TEMP_OUT
	tempOffset = 25.0 // °C at zero counts
)

// ToSigned interprets b as a big-endian two's-complement integer. The device
// emits 16-bit words; axis outputs concatenate two words into 32 bits.
func ToSigned(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	v := int64(int8(b[0]))
	for _, c := range b[1:] {
		v = v<<8 | int64(c)
	}
	return v
}

// Scaled converts raw register counts into physical units.
func (r RawSample) Scaled() Sample {
	return Sample{
		Gx:   float64(r.Gx) * gyroScale,
		Gy:   float64(r.Gy) * gyroScale,
		Gz:   float64(r.Gz) * gyroScale,
		Ax:   float64(r.Ax) * accelScale,
		Ay:   float64(r.Ay) * accelScale,
		Az:   float64(r.Az) * accelScale,
		Temp: float64(r.Temp)*tempScale + tempOffset,
	}
}
