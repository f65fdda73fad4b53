// Package wire defines the datagram addressing and message formats spoken
// between a sensor node and its coordinator. All higher layers depend on
// this package; it has no dependencies of its own so it can be shared by
// firmware and host-side tools alike.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// MacAddress is a 6-byte transport address.
type MacAddress [6]byte

// broadcast is the all-ones address. Arrays can not be Go constants, so the
// exported accessor is a function rather than a writable package variable.
var broadcast = MacAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Broadcast returns the all-ones address. It doubles as the "coordinator
// unknown" marker in retained state.
func Broadcast() MacAddress {
	return broadcast
}

// IsBroadcast reports whether the address is the all-ones broadcast address.
func (a MacAddress) IsBroadcast() bool {
	return a == broadcast
}

// String formats the address as lower-case colon-separated hex.
func (a MacAddress) String() string {
	var b strings.Builder
	for i, octet := range a {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02x", octet)
	}
	return b.String()
}

// ParseMac parses a colon-separated hex address, e.g. "a4:cf:12:00:00:01".
func ParseMac(s string) (MacAddress, error) {
	var a MacAddress
	parts := strings.Split(s, ":")
	if len(parts) != len(a) {
		return a, fmt.Errorf("invalid mac address %q: expected 6 octets, got %d", s, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return a, fmt.Errorf("invalid mac address %q: %w", s, err)
		}
		a[i] = byte(v)
	}
	return a, nil
}

// Datagram is a single received or transmitted unit: addressing info plus
// an opaque payload.
type Datagram struct {
	Src     MacAddress
	Dst     MacAddress
	Payload []byte
}

// Message tags. A message is one tag byte followed by a tag-specific payload.
const (
	// TagProbe is broadcast by a node that does not yet know its
	// coordinator. Payload is the fixed two-byte probe body.
	TagProbe = 0xF0

	// TagStatus carries a single payload byte: the sampled wake pin level
	// (0 or 1). Sent unicast to the coordinator.
	TagStatus = 0x22
)

// probeBody is the fixed payload carried by every probe.
var probeBody = [2]byte{0x00, 0x22}

// Message is a decoded tag + payload pair.
type Message struct {
	Tag     byte
	Payload []byte
}

// EncodeProbe returns the discovery probe message bytes.
func EncodeProbe() []byte {
	return []byte{TagProbe, probeBody[0], probeBody[1]}
}

// EncodeStatus returns a status report carrying the sampled pin level.
// Any non-zero level is reported as 1.
func EncodeStatus(level byte) []byte {
	if level != 0 {
		level = 1
	}
	return []byte{TagStatus, level}
}

// DecodeMessage validates and splits a raw payload into tag and body.
func DecodeMessage(data []byte) (Message, error) {
	if len(data) < 1 {
		return Message{}, ErrShortMessage
	}
	msg := Message{Tag: data[0], Payload: data[1:]}
	switch msg.Tag {
	case TagProbe:
		if len(msg.Payload) != len(probeBody) {
			return Message{}, ErrInvalidPayload
		}
	case TagStatus:
		if len(msg.Payload) != 1 || msg.Payload[0] > 1 {
			return Message{}, ErrInvalidPayload
		}
	default:
		return Message{}, ErrUnknownTag
	}
	return msg, nil
}

// Datagram framing used by host transports that carry node traffic over a
// packet socket. Layout: Src(6) | Dst(6) | Payload(0-n).
const datagramHeaderSize = 12

// EncodeDatagram serialises a datagram for a host packet transport.
func EncodeDatagram(d Datagram) []byte {
	out := make([]byte, datagramHeaderSize+len(d.Payload))
	copy(out[0:6], d.Src[:])
	copy(out[6:12], d.Dst[:])
	copy(out[datagramHeaderSize:], d.Payload)
	return out
}

// DecodeDatagram parses bytes produced by EncodeDatagram.
func DecodeDatagram(data []byte) (Datagram, error) {
	if len(data) < datagramHeaderSize {
		return Datagram{}, ErrShortDatagram
	}
	var d Datagram
	copy(d.Src[:], data[0:6])
	copy(d.Dst[:], data[6:12])
	d.Payload = make([]byte, len(data)-datagramHeaderSize)
	copy(d.Payload, data[datagramHeaderSize:])
	return d, nil
}
