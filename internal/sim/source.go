// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sim generates synthetic inertial data so the producer and its
// consumers can run without the sensor attached.
package sim

import (
	"math"
	"time"

	adis16460 "github.com/tdenningTRI/ADIS16460"
)

// Raw counts per output unit, the inverse of the driver's scale factors.
const (
	countsPerGyro  = 65536.0 / 0.005                     // per °/s
	countsPerAccel = 65536.0 * 1000.0 / (0.25 * 9.80665) // per accel output unit
)

// Source produces smoothly changing raw samples at a fixed rate.
type Source struct {
	start  time.Time
	last   time.Time
	period time.Duration
}

// NewSource creates a synthetic source pacing fresh samples at rateHz,
// mirroring the data-ready pacing of the real device.
func NewSource(rateHz int) *Source {
	if rateHz < 1 {
		rateHz = 1
	}
	return &Source{
		start:  time.Now(),
		period: time.Second / time.Duration(rateHz),
	}
}

// Next reports one fresh sample per sample period. Between periods it
// returns false, like a poll with no pending data-ready edge.
func (s *Source) Next() (adis16460.RawSample, bool, error) {
	now := time.Now()
	if now.Sub(s.last) < s.period {
		return adis16460.RawSample{}, false, nil
	}
	s.last = now

	elapsed := now.Sub(s.start).Seconds()
	return adis16460.RawSample{
		Gx: int32(20 * math.Sin(elapsed) * countsPerGyro),
		Gy: int32(15 * math.Cos(elapsed*0.7) * countsPerGyro),
		Gz: int32(5 * math.Sin(elapsed*0.3) * countsPerGyro),

		// Gravity on Z plus a gentle sway on X/Y.
		Ax: int32(1.2 * math.Sin(elapsed*0.5) * countsPerAccel),
		Ay: int32(0.8 * math.Cos(elapsed*0.4) * countsPerAccel),
		Az: int32(9.80665 * countsPerAccel),

		// Drift around 27 °C (0.05 °C per count).
		Temp: int16((2.0 + 1.5*math.Sin(elapsed*0.05)) / 0.05),
	}, true, nil
}
