package adis16460

import "fmt"

// RawSample is one burst of output registers before scaling. Axis values
// carry the OUT word in the upper 16 bits and the LOW word in the lower 16.
type RawSample struct {
	Gx int32 `json:"gx"` // gyro
	Gy int32 `json:"gy"`
	Gz int32 `json:"gz"`

	Ax int32 `json:"ax"` // accel
	Ay int32 `json:"ay"`
	Az int32 `json:"az"`

	Temp int16 `json:"temp"` // internal temperature counts

	Diag uint16 `json:"diag"` // DIAG_STAT word read at the head of the burst
}

// Sample is one reading in physical units.
type Sample struct {
	Gx float64 `json:"gx"` // gyro, °/s
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Ax float64 `json:"ax"` // accel, mm/s²
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Temp float64 `json:"temp_c"` // internal temperature, °C
}

func (s Sample) String() string {
	return fmt.Sprintf("gyro[°/s] x=%+9.4f y=%+9.4f z=%+9.4f  accel[mm/s²] x=%+9.4f y=%+9.4f z=%+9.4f  temp=%.2f°C",
		s.Gx, s.Gy, s.Gz, s.Ax, s.Ay, s.Az, s.Temp)
}
