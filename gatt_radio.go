package btthermo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fako1024/gatt"
	"go.uber.org/multierr"
)

// Value handle reported when the platform does not expose attribute handles
// (CoreBluetooth assigns them internally). Matches the first characteristic
// value of the first service in an HCI database.
const fallbackValueHandle uint16 = 0x0003

// GattRadio implements Radio on top of a gatt.Device (HCI on Linux)
type GattRadio struct {
	btDevice    gatt.Device
	btOptions   []gatt.Option
	btCharacter *gatt.Characteristic
	valueHandle uint16

	interval  time.Duration
	poweredOn chan struct{}
	events    chan<- Event

	mu        sync.RWMutex
	value     []byte
	notifiers map[Handle]gatt.Notifier

	logger Logger
}

// WithGattDevice sets the Bluetooth device
func WithGattDevice(btDevice gatt.Device) func(*GattRadio) {
	return func(r *GattRadio) {
		r.btDevice = btDevice
	}
}

// WithGattOptions sets the options used to open the Bluetooth device
func WithGattOptions(options ...gatt.Option) func(*GattRadio) {
	return func(r *GattRadio) {
		r.btOptions = options
	}
}

// WithRadioLogger sets a logger
func WithRadioLogger(logger Logger) func(*GattRadio) {
	return func(r *GattRadio) {
		r.logger = logger
	}
}

// NewGattRadio opens the Bluetooth device and blocks until it is powered on
func NewGattRadio(ctx context.Context, options ...func(*GattRadio)) (*GattRadio, error) {

	r := &GattRadio{
		btOptions: defaultBTServerOptions(defaultAdvertisingInterval),
		interval:  defaultAdvertisingInterval,
		poweredOn: make(chan struct{}),
		notifiers: make(map[Handle]gatt.Notifier),
		logger:    &NullLogger{},
	}

	for _, option := range options {
		option(r)
	}

	// Initialize a new GATT device (if not provided as option)
	if r.btDevice == nil {
		btDevice, err := gatt.NewDevice(r.btOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to open bluetooth device: %w", err)
		}
		r.btDevice = btDevice
	}

	// Register handlers
	r.btDevice.Handle(
		gatt.AddCentralConnected(r.onCentralConnected),
		gatt.AddCentralDisconnected(r.onCentralDisconnected),
	)

	// Initialize the device
	if err := r.btDevice.Init(r.onStateChanged); err != nil {
		return nil, fmt.Errorf("failed to initialize bluetooth device: %w", err)
	}

	select {
	case <-r.poweredOn:
		return r, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("bluetooth device not powered on: %w", ctx.Err())
	}
}

// Listen sets the channel connect / disconnect events are delivered to
func (r *GattRadio) Listen(events chan<- Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = events
}

// Register adds the service to the device database
func (r *GattRadio) Register(desc ServiceDescriptor) (uint16, error) {
	svc := gatt.NewService(desc.Service)
	c := svc.AddCharacteristic(desc.Characteristic)
	if desc.Properties&PropRead != 0 {
		c.HandleReadFunc(r.serveRead)
	}
	if desc.Properties&PropNotify != 0 {
		c.HandleNotifyFunc(r.serveNotify)
	}

	if err := r.btDevice.AddService(svc); err != nil {
		return 0, fmt.Errorf("failed to add service %s: %w", desc.Service, err)
	}

	return r.bindCharacteristic(c), nil
}

// Advertise (re)starts advertising the payload
func (r *GattRadio) Advertise(payload AdvertisingPayload, interval time.Duration) error {
	structures, err := payload.Structures()
	if err != nil {
		return err
	}

	if opts := advertisingIntervalOptions(interval); interval != r.interval && len(opts) > 0 {
		if err := r.btDevice.Option(opts...); err != nil {
			return fmt.Errorf("failed to set advertising interval to %v: %w", interval, err)
		}
		r.interval = interval
	}

	adv := &gatt.AdvPacket{}
	for _, s := range structures {
		adv.AppendField(s.Type, s.Value)
	}

	return r.btDevice.Advertise(adv)
}

// WriteValue stores the characteristic value served to read requests
func (r *GattRadio) WriteValue(valueHandle uint16, value []byte) error {
	if r.btCharacter == nil || r.valueHandle != valueHandle {
		return fmt.Errorf("unknown value handle %d", valueHandle)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = append(r.value[:0], value...)

	return nil
}

// Notify pushes the value to the central identified by h, if it has subscribed
func (r *GattRadio) Notify(h Handle, valueHandle uint16, value []byte) error {
	r.mu.RLock()
	n, exists := r.notifiers[h]
	r.mu.RUnlock()

	if !exists || n.Done() {
		return ErrNotSubscribed
	}

	_, err := n.Write(value)
	return err
}

// Close terminates advertising and removes all services
func (r *GattRadio) Close() error {
	return multierr.Combine(
		r.btDevice.StopAdvertising(),
		r.btDevice.RemoveAllServices(),
	)
}

////////////////////////////////////////////////////////////////////////////////

func (r *GattRadio) bindCharacteristic(c *gatt.Characteristic) uint16 {
	r.btCharacter = c
	r.valueHandle = c.VHandle()
	if r.valueHandle == 0 {
		r.valueHandle = fallbackValueHandle
	}
	return r.valueHandle
}

func (r *GattRadio) onStateChanged(d gatt.Device, s gatt.State) {
	r.logger.Debugf("bluetooth device state: %s", s)
	if s == gatt.StatePoweredOn {
		select {
		case <-r.poweredOn:
		default:
			close(r.poweredOn)
		}
	}
}

func (r *GattRadio) onCentralConnected(c gatt.Central) {
	r.emit(Event{Type: EventConnect, Handle: Handle(c.ID())})
}

func (r *GattRadio) onCentralDisconnected(c gatt.Central) {
	h := Handle(c.ID())

	r.mu.Lock()
	delete(r.notifiers, h)
	r.mu.Unlock()

	r.emit(Event{Type: EventDisconnect, Handle: h})
}

func (r *GattRadio) emit(ev Event) {
	r.mu.RLock()
	events := r.events
	r.mu.RUnlock()

	if events == nil {
		r.logger.Warnf("dropping %s event for handle %s, no listener", ev.Type, ev.Handle)
		return
	}
	events <- ev
}

func (r *GattRadio) serveRead(rsp gatt.ResponseWriter, req *gatt.ReadRequest) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := rsp.Write(r.value); err != nil {
		r.logger.Warnf("failed to serve read for central `%s`: %s", req.Central.ID(), err)
	}
}

func (r *GattRadio) serveNotify(req gatt.Request, n gatt.Notifier) {
	h := Handle(req.Central.ID())
	r.logger.Debugf("central `%s` subscribed to notifications", h)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifiers[h] = n
}
