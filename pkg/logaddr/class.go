package logaddr

import (
	"fmt"
	"strconv"
	"strings"
)

// SwitchClass identifies the cabling variant of the switch a NIC hangs off.
type SwitchClass int

const (
	Class0 SwitchClass = iota // non-blocking 1:1 edge wiring
	Class1                    // partial blocking, 32 populated ports
	Class2                    // mountain wiring, river alternate
	Class3                    // same wiring as Class2
	Class4                    // same wiring as Class2
)

// DefaultClass is used when no class is selected.
const DefaultClass = Class2

// wiring is the lookup policy attached to a class: the primary table is
// authoritative and the alternate, when present, is consulted only for
// ports the primary leaves unwired.
type wiring struct {
	primary   *PortMapTable
	alternate *PortMapTable
}

// Classes 2-4 share river edge switches that are cabled either as pure
// mountain racks or as hybrid river racks. Mountain is tried first.
var mountainOrRiver = wiring{primary: &mountainWiring, alternate: &class2PlusWiring}

var classWiring = map[SwitchClass]wiring{
	Class0: {primary: &class0Wiring},
	Class1: {primary: &class1Wiring},
	Class2: mountainOrRiver,
	Class3: mountainOrRiver,
	Class4: mountainOrRiver,
}

// lookupResult is what a wiring lookup found for one physical port.
type lookupResult struct {
	port        int
	ok          bool
	viaFallback bool
}

func (w wiring) lookup(phys int) lookupResult {
	if port, ok := w.primary.Lookup(phys); ok {
		return lookupResult{port: port, ok: true}
	}
	if w.alternate == nil {
		return lookupResult{port: Unwired}
	}
	port, ok := w.alternate.Lookup(phys)
	return lookupResult{port: port, ok: ok, viaFallback: true}
}

// Valid reports whether c is one of the defined classes.
func (c SwitchClass) Valid() bool {
	_, ok := classWiring[c]
	return ok
}

// HasFallback reports whether c consults an alternate table.
func (c SwitchClass) HasFallback() bool {
	w, ok := classWiring[c]
	return ok && w.alternate != nil
}

func (c SwitchClass) String() string {
	if c.Valid() {
		return "class" + strconv.Itoa(int(c))
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// ParseSwitchClass accepts "2", "class2" or "Class2".
func ParseSwitchClass(s string) (SwitchClass, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "class")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedClass, s)
	}
	c := SwitchClass(n)
	if !c.Valid() {
		return 0, &ClassError{Class: c}
	}
	return c, nil
}

// AllClasses lists the defined classes in order.
func AllClasses() []SwitchClass {
	return []SwitchClass{Class0, Class1, Class2, Class3, Class4}
}
