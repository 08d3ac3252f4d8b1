package btthermo

import (
	"time"

	"github.com/fako1024/gatt"
)

func defaultBTServerOptions(interval time.Duration) []gatt.Option {
	return []gatt.Option{
		gatt.MacDeviceRole(gatt.PeripheralManager),
	}
}

// CoreBluetooth manages the advertising interval itself
func advertisingIntervalOptions(interval time.Duration) []gatt.Option {
	return nil
}
