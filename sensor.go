package btthermo

import (
	"errors"
)

const (
	faultBit       = 0x0004
	magnitudeShift = 3
	degreesPerLSB  = 0.25
)

// ErrSensorFault is returned if the thermocouple circuit is open
var ErrSensorFault = errors.New("sensor fault: thermocouple input open")

// SensorReader provides a single temperature sample in degrees Celsius
type SensorReader interface {
	Read() (float64, error)
}

// SensorReaderFunc is an adapter to allow the use of ordinary functions as SensorReader
type SensorReaderFunc func() (float64, error)

// Read calls f()
func (f SensorReaderFunc) Read() (float64, error) {
	return f()
}

// Sample denotes one raw conversion result of the thermocouple converter
type Sample struct {
	RawCode uint16
	Fault   bool
}

// ParseSample splits a 16-bit sensor word into its magnitude and fault flag
func ParseSample(word uint16) Sample {
	return Sample{
		RawCode: word >> magnitudeShift,
		Fault:   word&faultBit != 0,
	}
}

// Celsius returns the temperature of the sample, only meaningful if Fault is not set
func (s Sample) Celsius() float64 {
	return float64(s.RawCode) * degreesPerLSB
}

// DecodeWord converts a 16-bit sensor word into degrees Celsius
func DecodeWord(word uint16) (float64, error) {
	s := ParseSample(word)
	if s.Fault {
		return 0, ErrSensorFault
	}
	return s.Celsius(), nil
}
