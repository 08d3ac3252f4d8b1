//go:generate stringer -type=State -trimprefix=State
package btthermo

import (
	"fmt"
	"time"
)

// State denotes the state of the peripheral session
type State int

const (

	// StateAdvertising is active while no central is connected and the device is advertising
	StateAdvertising State = iota

	// StateConnected is active while at least one central is connected
	StateConnected
)

// ConnectionStatus denotes the current status of the peripheral
type ConnectionStatus struct {
	Error error
	State

	Connections int
	Advertising bool
}

// EventType denotes the kind of radio event
type EventType int

const (

	// EventConnect is emitted when a central establishes a link
	EventConnect EventType = iota + 1

	// EventDisconnect is emitted when a link is torn down
	EventDisconnect
)

func (t EventType) String() string {
	switch t {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event denotes a connect / disconnect notification from the radio stack
type Event struct {
	Type   EventType
	Handle Handle
}

// Property denotes characteristic permission flags (matching the BLE bit layout)
type Property uint8

const (

	// PropRead allows a central to read the characteristic value
	PropRead Property = 0x02

	// PropNotify allows the peripheral to push value updates
	PropNotify Property = 0x10
)

// DataPoint denotes a published temperature measurement at a certain point in time
type DataPoint struct {
	TimeStamp   time.Time
	Temperature float64
	Reading     Reading
}

// String fulfils the Stringer interface
func (d *DataPoint) String() string {
	return fmt.Sprintf("%.2f°C (sent as %d)", d.Temperature, int16(d.Reading))
}
