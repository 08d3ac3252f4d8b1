package btthermo

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRadio struct {
	mu sync.Mutex

	events chan<- Event

	valueHandle  uint16
	registerErr  error
	advertiseErr error
	writeErr     error
	notifyErr    map[Handle]error

	registered []ServiceDescriptor
	advertised []AdvertisingPayload
	intervals  []time.Duration
	writes     [][]byte
	notified   map[Handle][][]byte
	closed     bool
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{
		valueHandle: 0x0003,
		notifyErr:   make(map[Handle]error),
		notified:    make(map[Handle][][]byte),
	}
}

func (r *fakeRadio) Listen(events chan<- Event) {
	r.events = events
}

func (r *fakeRadio) Register(desc ServiceDescriptor) (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, desc)
	if r.registerErr != nil {
		return 0, r.registerErr
	}
	return r.valueHandle, nil
}

func (r *fakeRadio) Advertise(payload AdvertisingPayload, interval time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.advertiseErr != nil {
		return r.advertiseErr
	}
	r.advertised = append(r.advertised, payload)
	r.intervals = append(r.intervals, interval)
	return nil
}

func (r *fakeRadio) WriteValue(valueHandle uint16, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.writes = append(r.writes, append([]byte(nil), value...))
	return nil
}

func (r *fakeRadio) Notify(h Handle, valueHandle uint16, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.notifyErr[h]; err != nil {
		return err
	}
	r.notified[h] = append(r.notified[h], append([]byte(nil), value...))
	return nil
}

func (r *fakeRadio) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeRadio) advertiseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.advertised)
}

func (r *fakeRadio) notifyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, values := range r.notified {
		n += len(values)
	}
	return n
}

type manualTicker struct {
	c       chan time.Time
	period  time.Duration
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time {
	return t.c
}

func (t *manualTicker) Stop() {
	t.stopped = true
}

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func mustNewPeripheral(t *testing.T, radio Radio, options ...func(*Peripheral)) *Peripheral {
	t.Helper()
	p, err := NewPeripheral(radio, options...)
	if err != nil {
		t.Fatalf("failed to instantiate peripheral: %s", err)
	}
	return p
}
