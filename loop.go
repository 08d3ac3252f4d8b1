package btthermo

import (
	"context"
	"fmt"
	"time"
)

const defaultPeriod = time.Second

// Ticker delivers period boundaries
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewTimeTicker returns a Ticker backed by time.Ticker
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Loop periodically samples the sensor and publishes the result via the Peripheral.
// It is the single consumer of the peripheral's radio events, which are applied
// between cycles only.
type Loop struct {
	period    time.Duration
	newTicker func(time.Duration) Ticker

	reader     SensorReader
	peripheral *Peripheral

	logger Logger
}

// NewLoop instantiates a new Loop, executing functional options, if any
func NewLoop(reader SensorReader, peripheral *Peripheral, options ...func(*Loop)) *Loop {

	l := &Loop{
		period:     defaultPeriod,
		newTicker:  NewTimeTicker,
		reader:     reader,
		peripheral: peripheral,
		logger:     &NullLogger{},
	}

	for _, option := range options {
		option(l)
	}

	return l
}

// Run executes one cycle immediately and then one per period boundary until ctx
// is done. Pending radio events are applied before each cycle and while waiting.
func (l *Loop) Run(ctx context.Context) error {

	ticker := l.newTicker(l.period)
	defer ticker.Stop()

	l.peripheral.drainEvents()
	l.RunCycle()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.peripheral.events:
			l.peripheral.handleEvent(ev)
		case <-ticker.C():
			l.peripheral.drainEvents()
			l.RunCycle()
		}
	}
}

// RunCycle reads the sensor once and, on success, writes and notifies the encoded
// value. A failed read leaves the previously published value untouched. A failed
// write is returned, but connected centrals are still notified.
func (l *Loop) RunCycle() error {
	dp, err := l.sample()
	if err != nil {
		l.logger.Warnf("skipping cycle: %s", err)
		return err
	}

	value := dp.Reading.Bytes()
	writeErr := l.peripheral.WriteCharacteristic(value)
	if writeErr != nil {
		l.logger.Errorf("failed to update characteristic value: %s", writeErr)
	}
	n := l.peripheral.NotifyAll(value)

	l.logger.Infof("temperature %s, notified %d central(s)", dp, n)

	return writeErr
}

func (l *Loop) sample() (*DataPoint, error) {
	celsius, err := l.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read sensor: %w", err)
	}

	reading, err := EncodeCelsius(celsius)
	if err != nil {
		return nil, fmt.Errorf("failed to encode temperature: %w", err)
	}

	return &DataPoint{
		TimeStamp:   time.Now(),
		Temperature: celsius,
		Reading:     reading,
	}, nil
}
