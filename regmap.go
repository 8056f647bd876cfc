// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16460

// RegisterInfo describes one register for debug tooling.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R" or "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField documents a named field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterMap returns metadata for the user page registers.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x00", Name: "FLASH_CNT", Description: "Flash Write Counter", Access: "R"},
		{Address: "0x02", Name: "DIAG_STAT", Description: "Self-Test and Fault Flags", Access: "R", Default: "0x0000",
			BitFields: []BitField{
				{Bits: "1", Name: "DATA_PATH_OVERRUN", Description: "Output registers updated faster than they were read", Values: "1=Overrun"},
				{Bits: "2", Name: "FLASH_UPDATE_FAIL", Description: "Flash memory update failure", Values: "1=Failure"},
				{Bits: "3", Name: "SPI_COMM_ERR", Description: "SPI communication error", Values: "1=Error"},
				{Bits: "4", Name: "STANDBY_MODE", Description: "Device in standby (undervoltage)", Values: "1=Standby"},
				{Bits: "5", Name: "SENSOR_FAIL", Description: "Inertial sensor self-test failure", Values: "1=Failure"},
				{Bits: "6", Name: "MEMORY_FAIL", Description: "Flash memory test failure", Values: "1=Failure"},
				{Bits: "7", Name: "CLOCK_ERR", Description: "Internal clock error", Values: "1=Error"},
			}},
		{Address: "0x04", Name: "X_GYRO_LOW", Description: "Gyroscope X-Axis Low Word", Access: "R"},
		{Address: "0x06", Name: "X_GYRO_OUT", Description: "Gyroscope X-Axis High Word", Access: "R"},
		{Address: "0x08", Name: "Y_GYRO_LOW", Description: "Gyroscope Y-Axis Low Word", Access: "R"},
		{Address: "0x0A", Name: "Y_GYRO_OUT", Description: "Gyroscope Y-Axis High Word", Access: "R"},
		{Address: "0x0C", Name: "Z_GYRO_LOW", Description: "Gyroscope Z-Axis Low Word", Access: "R"},
		{Address: "0x0E", Name: "Z_GYRO_OUT", Description: "Gyroscope Z-Axis High Word", Access: "R"},
		{Address: "0x10", Name: "X_ACCL_LOW", Description: "Accelerometer X-Axis Low Word", Access: "R"},
		{Address: "0x12", Name: "X_ACCL_OUT", Description: "Accelerometer X-Axis High Word", Access: "R"},
		{Address: "0x14", Name: "Y_ACCL_LOW", Description: "Accelerometer Y-Axis Low Word", Access: "R"},
		{Address: "0x16", Name: "Y_ACCL_OUT", Description: "Accelerometer Y-Axis High Word", Access: "R"},
		{Address: "0x18", Name: "Z_ACCL_LOW", Description: "Accelerometer Z-Axis Low Word", Access: "R"},
		{Address: "0x1A", Name: "Z_ACCL_OUT", Description: "Accelerometer Z-Axis High Word", Access: "R"},
		{Address: "0x1C", Name: "SMPL_CNTR", Description: "Sample Counter", Access: "R"},
		{Address: "0x1E", Name: "TEMP_OUT", Description: "Internal Temperature (0.05 °C/LSB, 25 °C at zero)", Access: "R"},
		{Address: "0x32", Name: "MSC_CTRL", Description: "Miscellaneous Control (data ready, self-test)", Access: "RW"},
		{Address: "0x36", Name: "DEC_RATE", Description: "Decimation Filter", Access: "RW", Default: "0x0000",
			BitFields: []BitField{
				{Bits: "10:0", Name: "DEC_RATE", Description: "Output rate = 2048 / (DEC_RATE + 1)", Values: "0-2047"},
			}},
		{Address: "0x38", Name: "FLTR_CTRL", Description: "Bartlett Window FIR Control", Access: "RW", Default: "0x0004",
			BitFields: []BitField{
				{Bits: "2:0", Name: "FILT_SIZE", Description: "Number of taps = 2^FILT_SIZE", Values: "0-7"},
			}},
		{Address: "0x3E", Name: "GLOB_CMD", Description: "Global Commands", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "SOFTWARE_RESET", Description: "Restart the device", Values: "1=Reset"},
			}},
		{Address: "0x56", Name: "PROD_ID", Description: "Product Identification (should be 0x404C)", Access: "R", Default: "0x404C"},
	}
}
