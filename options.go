package btthermo

import (
	"time"
)

// WithDeviceName sets the advertised device name
func WithDeviceName(deviceName string) func(*Peripheral) {
	return func(p *Peripheral) {
		p.deviceName = deviceName
	}
}

// WithAppearance sets the advertised GAP appearance value (omitted if zero)
func WithAppearance(appearance uint16) func(*Peripheral) {
	return func(p *Peripheral) {
		p.appearance = appearance
	}
}

// WithAdvertisingInterval sets the advertising interval
func WithAdvertisingInterval(interval time.Duration) func(*Peripheral) {
	return func(p *Peripheral) {
		p.advertisingInterval = interval
	}
}

// WithPeripheralLogger sets a logger
func WithPeripheralLogger(logger Logger) func(*Peripheral) {
	return func(p *Peripheral) {
		p.logger = logger
	}
}

// WithPeriod sets the sampling period
func WithPeriod(period time.Duration) func(*Loop) {
	return func(l *Loop) {
		l.period = period
	}
}

// WithTicker sets the ticker constructor used to wait for the next period boundary
func WithTicker(newTicker func(time.Duration) Ticker) func(*Loop) {
	return func(l *Loop) {
		l.newTicker = newTicker
	}
}

// WithLoopLogger sets a logger
func WithLoopLogger(logger Logger) func(*Loop) {
	return func(l *Loop) {
		l.logger = logger
	}
}
