package btthermo

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fako1024/gatt"
)

// MaxAdvertisingPayloadLength is the legacy advertising data limit
const MaxAdvertisingPayloadLength = 31

var (
	// ErrPayloadTooLong is returned if the advertising data exceeds the legacy limit
	ErrPayloadTooLong = errors.New("advertising payload exceeds 31 bytes")

	errInvalidPayload = errors.New("invalid advertising payload")
)

// advertising data types
const (
	adTypeFlags        = 0x01 // Flags
	adTypeAllUUID16    = 0x03 // Complete List of 16-bit Service Class UUIDs
	adTypeAllUUID128   = 0x07 // Complete List of 128-bit Service Class UUIDs
	adTypeCompleteName = 0x09 // Complete Local Name
	adTypeAppearance   = 0x19 // Appearance
)

// flag bits
const (
	adFlagLimitedDisc    = 1 << iota // LE Limited Discoverable Mode
	adFlagGeneralDisc                // LE General Discoverable Mode
	adFlagLEOnly                     // BR/EDR Not Supported
	adFlagBothController             // Simultaneous LE and BR/EDR to Same Device Capable (Controller)
	adFlagBothHost                   // Simultaneous LE and BR/EDR to Same Device Capable (Host)
)

// Advertisement denotes the static discovery metadata of the device
type Advertisement struct {
	Name       string
	Services   []gatt.UUID
	Appearance uint16

	LimitedDiscoverable bool
	BREDR               bool
}

// ADStructure denotes a single [length][type][value] element of an advertising payload
type ADStructure struct {
	Type  byte
	Value []byte
}

// AdvertisingPayload denotes the serialized advertising data, built once at startup
type AdvertisingPayload []byte

// BuildAdvertisingPayload serializes the advertisement into AD structures
func BuildAdvertisingPayload(a Advertisement) (AdvertisingPayload, error) {
	var p AdvertisingPayload

	flags := byte(adFlagGeneralDisc)
	if a.LimitedDiscoverable {
		flags = adFlagLimitedDisc
	}
	if a.BREDR {
		flags |= adFlagBothController | adFlagBothHost
	} else {
		flags |= adFlagLEOnly
	}
	p = p.append(adTypeFlags, []byte{flags})

	if a.Name != "" {
		p = p.append(adTypeCompleteName, []byte(a.Name))
	}

	for _, u := range a.Services {
		b, err := uuidWireBytes(u)
		if err != nil {
			return nil, err
		}
		typ := byte(adTypeAllUUID128)
		if len(b) == 2 {
			typ = adTypeAllUUID16
		}
		p = p.append(typ, b)
	}

	if a.Appearance != 0 {
		p = p.append(adTypeAppearance, []byte{byte(a.Appearance), byte(a.Appearance >> 8)})
	}

	if len(p) > MaxAdvertisingPayloadLength {
		return nil, fmt.Errorf("%w (have %d bytes)", ErrPayloadTooLong, len(p))
	}

	return p, nil
}

// Structures splits the payload into its AD structures
func (p AdvertisingPayload) Structures() ([]ADStructure, error) {
	var res []ADStructure
	for b := []byte(p); len(b) > 0; {
		l := int(b[0])
		if l == 0 || len(b) < 1+l {
			return nil, errInvalidPayload
		}
		res = append(res, ADStructure{Type: b[1], Value: b[2 : 1+l]})
		b = b[1+l:]
	}
	return res, nil
}

// A field consists of len, typ, data. Len is 1 byte for typ plus len(data).
func (p AdvertisingPayload) append(typ byte, data []byte) AdvertisingPayload {
	p = append(p, byte(len(data)+1), typ)
	return append(p, data...)
}

// uuidWireBytes returns the little-endian on-air representation of a UUID
func uuidWireBytes(u gatt.UUID) ([]byte, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(u.String(), "-", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to parse UUID `%s`: %w", u.String(), err)
	}
	if len(b) != 2 && len(b) != 16 {
		return nil, fmt.Errorf("unsupported UUID width for `%s` (%d bytes)", u.String(), len(b))
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b, nil
}
