package adis16460

// Register addresses (user page). Each register is 16 bits wide and spans
// two byte addresses; the listed address is the low byte and is the one
// used in read and write frames.
const (
	regFlashCnt = 0x00 // flash write counter
	regDiagStat = 0x02 // self-test and fault flags
	regXGyroLow = 0x04 // gyro X, lower 16 bits
	regXGyroOut = 0x06 // gyro X, upper 16 bits
	regYGyroLow = 0x08
	regYGyroOut = 0x0A
	regZGyroLow = 0x0C
	regZGyroOut = 0x0E
	regXAcclLow = 0x10 // accel X, lower 16 bits
	regXAcclOut = 0x12 // accel X, upper 16 bits
	regYAcclLow = 0x14
	regYAcclOut = 0x16
	regZAcclLow = 0x18
	regZAcclOut = 0x1A
	regSmplCntr = 0x1C // sample counter
	regTempOut  = 0x1E // internal temperature
	regMscCtrl  = 0x32 // miscellaneous control
	regDecRate  = 0x36 // decimation filter
	regFltrCtrl = 0x38 // Bartlett window FIR control
	regGlobCmd  = 0x3E // global commands
	regProdID   = 0x56 // product identification
)

// writeBit marks the address byte of a write frame. The payload byte rides
// in the lower half of the same 16-bit frame.
const writeBit = 0x80

// ProductID is the value a healthy device reports in PROD_ID (16460 decimal).
const ProductID = 0x404C

// Device timing limits.
const (
	nativeRate = 2048 // internal sample rate in Hz before decimation
	maxDecRate = 0xFF // largest factor the low-byte write can program
	maxTaps    = 7    // FLTR_CTRL accepts 2^0 .. 2^7 filter taps
)
