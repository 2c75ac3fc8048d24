package logaddr

import (
	"fmt"
	"strconv"
	"strings"
)

// Logical address field widths, low bits first: port, switch, group.
const (
	PortBits   = 4
	SwitchBits = 5
	GroupBits  = 9

	switchShift = PortBits
	groupShift  = PortBits + SwitchBits

	portMask   = 1<<PortBits - 1
	switchMask = 1<<SwitchBits - 1
	groupMask  = 1<<GroupBits - 1
)

// LogicalAddress packs group, switch and logical port into one integer.
type LogicalAddress int

// Invalid is returned alongside an error; it is never a real address.
const Invalid LogicalAddress = -1

// Pack builds a logical address from its fields. The fields are summed at
// their offsets, so a logical port wider than PortBits (class 0 and 1
// wirings expose more than 16 logical ports) carries into the switch field
// exactly as the fabric manager computes it.
func Pack(group, sw, port int) LogicalAddress {
	return LogicalAddress(group<<groupShift + sw<<switchShift + port)
}

// Group returns the dragonfly group field.
func (a LogicalAddress) Group() int { return int(a>>groupShift) & groupMask }

// Switch returns the switch field.
func (a LogicalAddress) Switch() int { return int(a>>switchShift) & switchMask }

// Port returns the logical port field.
func (a LogicalAddress) Port() int { return int(a) & portMask }

// Unpack returns the three fields using the same boundaries as Pack.
func (a LogicalAddress) Unpack() (group, sw, port int) {
	return a.Group(), a.Switch(), a.Port()
}

// Valid reports whether a could have come out of a successful translation.
func (a LogicalAddress) Valid() bool { return a >= 0 }

// String renders the canonical GGG.SS.PP location. Any value renders,
// including ones that did not come from Pack.
func (a LogicalAddress) String() string {
	return fmt.Sprintf("%03d.%02d.%02d", a.Group(), a.Switch(), a.Port())
}

// PutString writes the location into dst, truncating to len(dst), and
// returns the number of bytes written.
func (a LogicalAddress) PutString(dst []byte) int {
	return copy(dst, a.String())
}

// ParseLocation parses a GGG.SS.PP location back into a logical address.
// Each field must be decimal and within its field width.
func ParseLocation(s string) (LogicalAddress, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Invalid, &ParseError{Input: s, Reason: "expected GGG.SS.PP"}
	}

	limits := [3]int{groupMask, switchMask, portMask}
	names := [3]string{"group", "switch", "port"}
	var fields [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return Invalid, &ParseError{Input: s, Reason: "invalid " + names[i] + " field " + strconv.Quote(p)}
		}
		if v > limits[i] {
			return Invalid, &ParseError{Input: s, Reason: fmt.Sprintf("%s field %d exceeds %d", names[i], v, limits[i])}
		}
		fields[i] = v
	}
	return Pack(fields[0], fields[1], fields[2]), nil
}
