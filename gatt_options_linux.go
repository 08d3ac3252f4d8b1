package btthermo

import (
	"time"

	"github.com/fako1024/gatt"
	"github.com/fako1024/gatt/linux/cmd"
)

const (
	defaultMaxConnections   = 4
	advertisingIntervalUnit = 625 * time.Microsecond
)

func defaultBTServerOptions(interval time.Duration) []gatt.Option {
	return append([]gatt.Option{
		gatt.LnxMaxConnections(defaultMaxConnections),
		gatt.LnxDeviceID(-1, true),
	}, advertisingIntervalOptions(interval)...)
}

// advertisingIntervalOptions converts the interval to controller units of 0.625 ms
func advertisingIntervalOptions(interval time.Duration) []gatt.Option {
	units := uint16(interval / advertisingIntervalUnit)
	return []gatt.Option{
		gatt.LnxSetAdvertisingParameters(&cmd.LESetAdvertisingParameters{
			AdvertisingIntervalMin: units,
			AdvertisingIntervalMax: units,
			AdvertisingChannelMap:  0x7,
		}),
	}
}
