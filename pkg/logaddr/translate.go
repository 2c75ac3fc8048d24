package logaddr

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// Algorithmic MAC field widths within the low 24 bits, low bits first.
const (
	macPortBits   = 6
	macSwitchBits = 5
	macGroupBits  = 9

	macSwitchShift = macPortBits
	macGroupShift  = macPortBits + macSwitchBits

	macPortMask   = 1<<macPortBits - 1
	macSwitchMask = 1<<macSwitchBits - 1
	macGroupMask  = 1<<macGroupBits - 1
)

// macStringLen is the length of "xx:xx:xx:xx:xx:xx".
const macStringLen = 17

// MAC is a parsed 48-bit hardware address.
type MAC [6]byte

func (m MAC) String() string {
	const digits = "0123456789abcdef"
	var b strings.Builder
	b.Grow(macStringLen)
	for i, o := range m {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteByte(digits[o>>4])
		b.WriteByte(digits[o&0x0f])
	}
	return b.String()
}

// Coordinates is the raw topology position encoded in an algorithmic MAC.
type Coordinates struct {
	Group        int
	Switch       int
	PhysicalPort int
}

// ParseMAC parses exactly six colon-separated two-digit hex octets.
// Hyphen, dot and bare forms are rejected, as is the "Unknown" sentinel
// that the discovery probes hand back.
func ParseMAC(s string) (MAC, error) {
	var m MAC
	if len(s) != macStringLen {
		return m, &ParseError{Input: s, Reason: "expected six colon-separated hex octets"}
	}
	for i := range m {
		off := i * 3
		if i < len(m)-1 && s[off+2] != ':' {
			return m, &ParseError{Input: s, Reason: "expected ':' after octet " + strconv.Itoa(i+1)}
		}
		hi, ok1 := fromHex(s[off])
		lo, ok2 := fromHex(s[off+1])
		if !ok1 || !ok2 {
			return m, &ParseError{Input: s, Reason: "non-hex digit in octet " + strconv.Itoa(i+1)}
		}
		m[i] = hi<<4 | lo
	}
	return m, nil
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Coordinates decodes the topology position from the low three octets.
// The OUI prefix does not participate.
func (m MAC) Coordinates() Coordinates {
	addr := int(m[3])<<16 | int(m[4])<<8 | int(m[5])
	return Coordinates{
		Group:        (addr >> macGroupShift) & macGroupMask,
		Switch:       (addr >> macSwitchShift) & macSwitchMask,
		PhysicalPort: addr & macPortMask,
	}
}

// DecodeMAC parses s and returns its topology coordinates.
func DecodeMAC(s string) (Coordinates, error) {
	m, err := ParseMAC(s)
	if err != nil {
		return Coordinates{}, err
	}
	return m.Coordinates(), nil
}

// Translator converts MAC addresses to logical addresses. The zero value is
// ready to use and silent.
type Translator struct {
	// Debug logs which port/switch/group failed and when the class 2+
	// river fallback is taken. It never changes the result.
	Debug bool

	// Log receives debug output. Defaults to the package logger.
	Log *logrus.Entry
}

// Translate maps mac under class to a logical address. On failure it
// returns Invalid and a *ParseError, *ClassError or *UnwiredPortError.
func (t *Translator) Translate(mac string, class SwitchClass) (LogicalAddress, error) {
	m, err := ParseMAC(mac)
	if err != nil {
		return Invalid, err
	}
	c := m.Coordinates()

	w, ok := classWiring[class]
	if !ok {
		return Invalid, &ClassError{Class: class}
	}

	res := w.lookup(c.PhysicalPort)
	if res.viaFallback {
		t.debugf(c, "%s: no mountain port, checking river", class)
	}
	if !res.ok {
		t.debugf(c, "%s: physical port unwired", class)
		return Invalid, &UnwiredPortError{Class: class, Coordinates: c}
	}
	return Pack(c.Group, c.Switch, res.port), nil
}

func (t *Translator) debugf(c Coordinates, format string, args ...interface{}) {
	if !t.Debug {
		return
	}
	entry := t.Log
	if entry == nil {
		entry = logrus.NewEntry(util.Logger)
	}
	entry.WithFields(logrus.Fields{
		"port_id":   c.PhysicalPort,
		"switch_id": c.Switch,
		"group_id":  c.Group,
	}).Debugf(format, args...)
}

// Translate maps mac under class with a silent Translator.
func Translate(mac string, class SwitchClass) (LogicalAddress, error) {
	var t Translator
	return t.Translate(mac, class)
}
