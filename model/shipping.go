package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
	ErrUnknownDestination    = errors.New("unknown destination")
)

// ShippingMethod selects a column of the rate table. The zero value is Standard.
type ShippingMethod uint8

const (
	Standard ShippingMethod = iota
	Express
	Priority
	numShippingMethods
)

var shippingMethodNames = [numShippingMethods]string{"Standard", "Express", "Priority"}

func (m ShippingMethod) Valid() bool { return m < numShippingMethods }

func (m ShippingMethod) String() string {
	if !m.Valid() {
		return fmt.Sprintf("ShippingMethod(%d)", uint8(m))
	}
	return shippingMethodNames[m]
}

// ParseShippingMethod maps a display name ("Express") to its method.
func ParseShippingMethod(s string) (ShippingMethod, error) {
	for i, name := range shippingMethodNames {
		if name == s {
			return ShippingMethod(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShippingMethod, s)
}

func (m ShippingMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShippingMethod, uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *ShippingMethod) UnmarshalText(b []byte) error {
	v, err := ParseShippingMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Destination selects a row of the rate table. The zero value is Canada.
type Destination uint8

const (
	Canada Destination = iota
	UnitedStates
	International
	numDestinations
)

var destinationNames = [numDestinations]string{"Canada", "United States", "International"}

func (d Destination) Valid() bool { return d < numDestinations }

func (d Destination) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Destination(%d)", uint8(d))
	}
	return destinationNames[d]
}

// ParseDestination maps a display name ("United States") to its destination.
func ParseDestination(s string) (Destination, error) {
	for i, name := range destinationNames {
		if name == s {
			return Destination(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDestination, s)
}

func (d Destination) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDestination, uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Destination) UnmarshalText(b []byte) error {
	v, err := ParseDestination(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
