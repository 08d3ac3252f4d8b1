package btthermo

import (
	"errors"
	"time"

	"github.com/fako1024/gatt"
)

var (
	// EnvironmentalSensingService denotes the Environmental Sensing service identifier
	EnvironmentalSensingService = gatt.UUID16(0x181A)

	// TemperatureCharacteristic denotes the Temperature characteristic identifier
	TemperatureCharacteristic = gatt.UUID16(0x2A6E)
)

// ErrNotSubscribed is returned by a Radio if a notification cannot be delivered
// to a link (e.g. because it has concurrently disconnected)
var ErrNotSubscribed = errors.New("central not subscribed")

// ServiceDescriptor denotes the single service / characteristic registered at startup
type ServiceDescriptor struct {
	Service        gatt.UUID
	Characteristic gatt.UUID
	Properties     Property

	// ValueHandle is assigned by the radio stack upon registration
	ValueHandle uint16
}

// Radio denotes the radio stack capabilities required by the Peripheral
type Radio interface {

	// Listen sets the channel connect / disconnect events are delivered to
	Listen(events chan<- Event)

	// Register adds the service and returns the value handle of its characteristic
	Register(desc ServiceDescriptor) (uint16, error)

	// Advertise (re)starts advertising the payload at the given interval
	Advertise(payload AdvertisingPayload, interval time.Duration) error

	// WriteValue stores the characteristic value served to read requests
	WriteValue(valueHandle uint16, value []byte) error

	// Notify pushes the value to a single link
	Notify(h Handle, valueHandle uint16, value []byte) error

	// Close stops advertising and releases the stack
	Close() error
}
