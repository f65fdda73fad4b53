package wire

import "errors"

var (
	ErrShortMessage   = errors.New("message too short")
	ErrShortDatagram  = errors.New("datagram shorter than header")
	ErrInvalidPayload = errors.New("invalid payload for message tag")
	ErrUnknownTag     = errors.New("unknown message tag")
	ErrTimeout        = errors.New("receive timed out")
	ErrUnknownPeer    = errors.New("no route to peer")
)
