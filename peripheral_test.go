package btthermo

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fako1024/gatt"
)

func TestNewPeripheral(t *testing.T) {
	radio := newFakeRadio()
	p := mustNewPeripheral(t, radio)

	if len(radio.registered) != 1 {
		t.Fatalf("want exactly one registration, have %d", len(radio.registered))
	}
	desc := radio.registered[0]
	if desc.Service.String() != gatt.UUID16(0x181A).String() ||
		desc.Characteristic.String() != gatt.UUID16(0x2A6E).String() {
		t.Fatalf("unexpected service descriptor: %+v", desc)
	}
	if desc.Properties != PropRead|PropNotify {
		t.Fatalf("want read+notify properties, have %#02x", desc.Properties)
	}
	if p.Service().ValueHandle != radio.valueHandle {
		t.Fatalf("want value handle %d, have %d", radio.valueHandle, p.Service().ValueHandle)
	}

	if radio.advertiseCount() != 1 {
		t.Fatalf("want advertising started once, have %d", radio.advertiseCount())
	}
	if !bytes.Equal(radio.advertised[0], p.Payload()) {
		t.Fatalf("advertised payload %x differs from %x", []byte(radio.advertised[0]), []byte(p.Payload()))
	}
	if want := "0201060a095069636f4772696c6c03031a18"; fmt.Sprintf("%x", []byte(p.Payload())) != want {
		t.Fatalf("want payload %s, have %x", want, []byte(p.Payload()))
	}
	if radio.intervals[0] != 500*time.Millisecond {
		t.Fatalf("want advertising interval 500ms, have %v", radio.intervals[0])
	}

	status := p.Status()
	if status.State != StateAdvertising || !status.Advertising || status.Connections != 0 {
		t.Fatalf("unexpected initial status: %+v", status)
	}
}

func TestNewPeripheralRegistrationFailure(t *testing.T) {
	t.Run("radio error", func(t *testing.T) {
		radio := newFakeRadio()
		radio.registerErr = errors.New("no attribute space")

		if _, err := NewPeripheral(radio); !errors.Is(err, ErrRegistration) {
			t.Fatalf("want %v, have %v", ErrRegistration, err)
		}
		if radio.advertiseCount() != 0 {
			t.Fatal("must not advertise without a valid characteristic handle")
		}
	})

	t.Run("no value handle", func(t *testing.T) {
		radio := newFakeRadio()
		radio.valueHandle = 0

		if _, err := NewPeripheral(radio); !errors.Is(err, ErrRegistration) {
			t.Fatalf("want %v, have %v", ErrRegistration, err)
		}
		if radio.advertiseCount() != 0 {
			t.Fatal("must not advertise without a valid characteristic handle")
		}
	})
}

func TestNewPeripheralInvalidAdvertisement(t *testing.T) {
	radio := newFakeRadio()
	if _, err := NewPeripheral(radio, WithDeviceName("a-device-name-that-is-far-too-long")); !errors.Is(err, ErrPayloadTooLong) {
		t.Fatalf("want %v, have %v", ErrPayloadTooLong, err)
	}
	if len(radio.registered) != 0 {
		t.Fatal("must not register with an invalid advertising configuration")
	}
}

func TestPeripheralConnectDisconnect(t *testing.T) {
	radio := newFakeRadio()
	logger, logs := newObservedLogger()
	p := mustNewPeripheral(t, radio, WithPeripheralLogger(logger))

	var statuses []ConnectionStatus
	p.SetStateChangeHandler(func(status ConnectionStatus) {
		statuses = append(statuses, status)
	})

	radio.events <- Event{Type: EventConnect, Handle: "a"}
	radio.events <- Event{Type: EventConnect, Handle: "b"}
	radio.events <- Event{Type: EventDisconnect, Handle: "a"}
	p.drainEvents()

	if len(statuses) != 3 {
		t.Fatalf("want 3 state changes, have %d", len(statuses))
	}
	for i, want := range []int{1, 2, 1} {
		if statuses[i].Connections != want {
			t.Errorf("state change %d: want %d connections, have %d", i, want, statuses[i].Connections)
		}
		if statuses[i].State != StateConnected {
			t.Errorf("state change %d: want %s, have %s", i, StateConnected, statuses[i].State)
		}
	}

	// Advertising is re-armed even though "b" is still connected
	if !statuses[2].Advertising {
		t.Fatal("expected advertising to be active after disconnect")
	}
	if radio.advertiseCount() != 2 {
		t.Fatalf("want 2 advertising starts, have %d", radio.advertiseCount())
	}
	if p.conns.Contains("a") || !p.conns.Contains("b") {
		t.Fatalf("unexpected connection set: %v", p.conns.Handles())
	}

	if n := logs.FilterMessage("central connected (handle a)").Len(); n != 1 {
		t.Fatalf("want one connect diagnostic for handle a, have %d", n)
	}
	if n := logs.FilterMessage("central disconnected (handle a)").Len(); n != 1 {
		t.Fatalf("want one disconnect diagnostic for handle a, have %d", n)
	}

	radio.events <- Event{Type: EventDisconnect, Handle: "b"}
	p.drainEvents()

	status := p.Status()
	if status.State != StateAdvertising || status.Connections != 0 || !status.Advertising {
		t.Fatalf("unexpected status after last disconnect: %+v", status)
	}
}

func TestPeripheralUnexpectedEvents(t *testing.T) {
	radio := newFakeRadio()
	p := mustNewPeripheral(t, radio)

	stateChan := make(chan ConnectionStatus, 4)
	p.SetStateChangeChannel(stateChan)

	// Disconnect without a prior connect still re-arms advertising
	p.handleEvent(Event{Type: EventDisconnect, Handle: "ghost"})
	if p.conns.Len() != 0 {
		t.Fatalf("connection set must stay empty, have %v", p.conns.Handles())
	}
	if radio.advertiseCount() != 2 {
		t.Fatalf("want 2 advertising starts, have %d", radio.advertiseCount())
	}

	// Duplicate connects do not produce a second state change
	p.handleEvent(Event{Type: EventConnect, Handle: "a"})
	p.handleEvent(Event{Type: EventConnect, Handle: "a"})
	if p.conns.Len() != 1 {
		t.Fatalf("want one connection, have %d", p.conns.Len())
	}

	// Unknown event types are ignored
	p.handleEvent(Event{Type: EventType(42), Handle: "a"})

	if len(stateChan) != 2 {
		t.Fatalf("want 2 state changes on channel, have %d", len(stateChan))
	}
}

func TestPeripheralAdvertisingFailureOnDisconnect(t *testing.T) {
	radio := newFakeRadio()
	p := mustNewPeripheral(t, radio)

	p.handleEvent(Event{Type: EventConnect, Handle: "a"})

	errAdv := errors.New("controller busy")
	radio.advertiseErr = errAdv
	p.handleEvent(Event{Type: EventDisconnect, Handle: "a"})

	if status := p.Status(); !errors.Is(status.Error, errAdv) {
		t.Fatalf("want status error %v, have %v", errAdv, status.Error)
	}
}

func TestPeripheralNotifyAll(t *testing.T) {
	radio := newFakeRadio()
	p := mustNewPeripheral(t, radio)

	value := []byte{0x2B, 0x09}
	if n := p.NotifyAll(value); n != 0 {
		t.Fatalf("want no notifications without connections, have %d", n)
	}

	for _, h := range []Handle{"a", "b", "c"} {
		p.handleEvent(Event{Type: EventConnect, Handle: h})
	}
	radio.notifyErr["b"] = ErrNotSubscribed

	if n := p.NotifyAll(value); n != 2 {
		t.Fatalf("want 2 deliveries, have %d", n)
	}
	for _, h := range []Handle{"a", "c"} {
		if len(radio.notified[h]) != 1 || !bytes.Equal(radio.notified[h][0], value) {
			t.Errorf("handle %s: unexpected notifications %x", h, radio.notified[h])
		}
	}
	if len(radio.notified["b"]) != 0 {
		t.Errorf("handle b: unexpected notifications %x", radio.notified["b"])
	}
}

func TestPeripheralWriteAndClose(t *testing.T) {
	radio := newFakeRadio()
	p := mustNewPeripheral(t, radio)

	if err := p.WriteCharacteristic([]byte{0xD6, 0x38}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(radio.writes) != 1 || !bytes.Equal(radio.writes[0], []byte{0xD6, 0x38}) {
		t.Fatalf("unexpected writes: %x", radio.writes)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on close: %s", err)
	}
	if !radio.closed || p.Status().Advertising {
		t.Fatal("expected radio to be closed and advertising to be stopped")
	}
}
