package btthermo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ReadingSize is the length of an encoded characteristic value
const ReadingSize = 2

var (
	// ErrOutOfRange is returned if a temperature does not fit the characteristic format
	ErrOutOfRange = errors.New("temperature out of representable range")

	// ErrShortReading is returned if an encoded value is shorter than ReadingSize
	ErrShortReading = errors.New("short characteristic value")
)

// Reading denotes a temperature in hundredths of a degree Celsius, as transmitted
// in the Temperature characteristic (signed, little-endian)
type Reading int16

// EncodeCelsius rounds a temperature to the nearest hundredth of a degree
func EncodeCelsius(celsius float64) (Reading, error) {
	v := math.Round(celsius * 100)
	if math.IsNaN(v) || v < math.MinInt16 || v > math.MaxInt16 {
		return 0, fmt.Errorf("%w: %.2f°C", ErrOutOfRange, celsius)
	}
	return Reading(v), nil
}

// DecodeReading parses a characteristic value
func DecodeReading(b []byte) (Reading, error) {
	if len(b) < ReadingSize {
		return 0, fmt.Errorf("%w (want %d, have %d)", ErrShortReading, ReadingSize, len(b))
	}
	return Reading(int16(binary.LittleEndian.Uint16(b))), nil
}

// Bytes returns the wire representation of the reading
func (r Reading) Bytes() []byte {
	b := make([]byte, ReadingSize)
	binary.LittleEndian.PutUint16(b, uint16(r))
	return b
}

// Celsius returns the temperature in degrees Celsius
func (r Reading) Celsius() float64 {
	return float64(r) / 100
}
