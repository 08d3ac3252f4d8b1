package btthermo

import (
	"errors"
	"fmt"
	"time"

	"github.com/fako1024/gatt"
	"go.uber.org/atomic"
)

const (
	defaultDeviceName          = "PicoGrill"
	defaultAdvertisingInterval = 500 * time.Millisecond

	eventQueueSize = 16
)

// ErrRegistration is returned if the service cannot be registered with the radio stack
var ErrRegistration = errors.New("service registration failed")

// Peripheral denotes a GATT peripheral publishing a single temperature characteristic
type Peripheral struct {
	deviceName          string
	appearance          uint16
	advertisingInterval time.Duration

	service ServiceDescriptor
	payload AdvertisingPayload

	// Only accessed by the goroutine applying events (see Loop)
	conns *ConnectionSet

	connCount   *atomic.Int32
	advertising *atomic.Bool
	lastErr     *atomic.Error

	events chan Event

	stateChangeHandler func(status ConnectionStatus)
	stateChangeChan    chan ConnectionStatus

	radio  Radio
	logger Logger
}

// NewPeripheral instantiates a new Peripheral, executing functional options, if any,
// registers the temperature service and starts advertising
func NewPeripheral(radio Radio, options ...func(*Peripheral)) (*Peripheral, error) {

	// Initialize a new instance of a Peripheral
	p := &Peripheral{
		deviceName:          defaultDeviceName,
		advertisingInterval: defaultAdvertisingInterval,
		service: ServiceDescriptor{
			Service:        EnvironmentalSensingService,
			Characteristic: TemperatureCharacteristic,
			Properties:     PropRead | PropNotify,
		},
		conns:       NewConnectionSet(),
		connCount:   atomic.NewInt32(0),
		advertising: atomic.NewBool(false),
		lastErr:     atomic.NewError(nil),
		events:      make(chan Event, eventQueueSize),
		radio:       radio,
		logger:      &NullLogger{},
	}

	// Execute functional options (if any), see options.go for implementation
	for _, option := range options {
		option(p)
	}

	payload, err := BuildAdvertisingPayload(Advertisement{
		Name:       p.deviceName,
		Services:   []gatt.UUID{p.service.Service},
		Appearance: p.appearance,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid advertising configuration: %w", err)
	}
	p.payload = payload

	p.radio.Listen(p.events)

	handle, err := p.radio.Register(p.service)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRegistration, err)
	}
	if handle == 0 {
		return nil, fmt.Errorf("%w: no value handle assigned", ErrRegistration)
	}
	p.service.ValueHandle = handle
	p.logger.Debugf("registered service %s / characteristic %s (value handle %d)",
		p.service.Service, p.service.Characteristic, handle)

	if err := p.advertise(); err != nil {
		return nil, err
	}

	return p, nil
}

// Status returns the current status of the peripheral (safe for concurrent use)
func (p *Peripheral) Status() ConnectionStatus {
	n := int(p.connCount.Load())
	state := StateAdvertising
	if n > 0 {
		state = StateConnected
	}
	return ConnectionStatus{
		Error:       p.lastErr.Load(),
		State:       state,
		Connections: n,
		Advertising: p.advertising.Load(),
	}
}

// Service returns the registered service descriptor
func (p *Peripheral) Service() ServiceDescriptor {
	return p.service
}

// Payload returns the advertising payload
func (p *Peripheral) Payload() AdvertisingPayload {
	return p.payload
}

// SetStateChangeHandler defines a handler function that is called upon state change
func (p *Peripheral) SetStateChangeHandler(fn func(status ConnectionStatus)) {
	p.stateChangeHandler = fn
}

// SetStateChangeChannel defines a channel that receives state changes (non-blocking)
func (p *Peripheral) SetStateChangeChannel(ch chan ConnectionStatus) {
	p.stateChangeChan = ch
}

// WriteCharacteristic stores the value so it can be read by a newly connecting central
func (p *Peripheral) WriteCharacteristic(value []byte) error {
	if err := p.radio.WriteValue(p.service.ValueHandle, value); err != nil {
		return fmt.Errorf("failed to write characteristic value: %w", err)
	}
	return nil
}

// NotifyAll sends the value to every established link and returns the number of
// successful deliveries. Failed sends are dropped silently.
func (p *Peripheral) NotifyAll(value []byte) int {
	delivered := 0
	for _, h := range p.conns.Handles() {
		if err := p.radio.Notify(h, p.service.ValueHandle, value); err != nil {
			p.logger.Debugf("dropped notification to handle %s: %s", h, err)
			continue
		}
		delivered++
	}
	return delivered
}

// Close stops advertising and releases the radio stack
func (p *Peripheral) Close() error {
	p.advertising.Store(false)
	return p.radio.Close()
}

////////////////////////////////////////////////////////////////////////////////

// drainEvents applies all queued radio events without blocking
func (p *Peripheral) drainEvents() {
	for {
		select {
		case ev := <-p.events:
			p.handleEvent(ev)
		default:
			return
		}
	}
}

func (p *Peripheral) handleEvent(ev Event) {
	switch ev.Type {
	case EventConnect:
		p.onConnect(ev.Handle)
	case EventDisconnect:
		p.onDisconnect(ev.Handle)
	default:
		p.logger.Warnf("ignoring unknown radio event %s for handle %s", ev.Type, ev.Handle)
	}
}

func (p *Peripheral) onConnect(h Handle) {
	if !p.conns.Add(h) {
		p.logger.Warnf("ignoring duplicate connect for handle %s", h)
		return
	}
	p.logger.Infof("central connected (handle %s)", h)

	// The controller stops legacy advertising once a link is established
	p.advertising.Store(false)
	p.setStatus(nil)
}

func (p *Peripheral) onDisconnect(h Handle) {
	if p.conns.Remove(h) {
		p.logger.Infof("central disconnected (handle %s)", h)
	} else {
		p.logger.Warnf("disconnect for unknown handle %s", h)
	}

	// Advertising is re-armed on every disconnect, even if other links remain
	p.setStatus(p.advertise())
}

func (p *Peripheral) advertise() error {
	if err := p.radio.Advertise(p.payload, p.advertisingInterval); err != nil {
		p.logger.Errorf("failed to start advertising: %s", err)
		return fmt.Errorf("failed to start advertising: %w", err)
	}
	p.advertising.Store(true)
	p.logger.Infof("advertising as `%s` every %v", p.deviceName, p.advertisingInterval)
	return nil
}

func (p *Peripheral) setStatus(err error) {
	p.connCount.Store(int32(p.conns.Len()))
	p.lastErr.Store(err)

	status := p.Status()

	// Call handler function, if any
	if p.stateChangeHandler != nil {
		p.stateChangeHandler(status)
	}

	// Put state change on channel, if any
	if p.stateChangeChan != nil {
		select {
		case p.stateChangeChan <- status:
		default:
		}
	}
}
