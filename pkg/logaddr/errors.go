package logaddr

import (
	"errors"
	"fmt"
)

// Sentinel errors for translation failures
var (
	ErrParse             = errors.New("malformed address")
	ErrUnrecognizedClass = errors.New("unrecognized switch class")
	ErrUnwiredPort       = errors.New("physical port is not wired")
)

// ParseError reports input that is not a strict MAC address or location string
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ClassError reports a switch class selector outside the defined variants
type ClassError struct {
	Class SwitchClass
}

func (e *ClassError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnrecognizedClass, int(e.Class))
}

func (e *ClassError) Unwrap() error {
	return ErrUnrecognizedClass
}

// UnwiredPortError reports a physical port with no logical assignment under
// a class wiring. It describes an absent or mis-cabled port, not a fault.
type UnwiredPortError struct {
	Class       SwitchClass
	Coordinates Coordinates
}

func (e *UnwiredPortError) Error() string {
	return fmt.Sprintf("%s: no logical port for port_id %d, switch_id %d, group_id %d",
		e.Class, e.Coordinates.PhysicalPort, e.Coordinates.Switch, e.Coordinates.Group)
}

func (e *UnwiredPortError) Unwrap() error {
	return ErrUnwiredPort
}
