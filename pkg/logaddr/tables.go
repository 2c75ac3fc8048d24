// Package logaddr translates algorithmic high-speed-network MAC addresses
// into dragonfly logical addresses and renders them as GGG.SS.PP locations.
//
// The edge switch ASIC exposes 64 physical port positions. Which of those
// positions carry a node link depends on how the switch is cabled, so each
// wiring variant has its own physical-to-logical port table. The tables
// below follow the ASIC port numbering of the river network architecture
// (09-ARS-1408) and the mountain chassis cabling.
package logaddr

// PortCount is the number of physical port positions on an edge switch.
const PortCount = 64

// Unwired marks a physical port that has no logical port in a wiring.
const Unwired = -1

// PortMapTable maps a physical port index to its logical port, or Unwired.
type PortMapTable [PortCount]int8

// Lookup returns the logical port wired to phys. ok is false for unwired
// positions and for indexes outside the table.
func (t *PortMapTable) Lookup(phys int) (port int, ok bool) {
	if phys < 0 || phys >= PortCount {
		return Unwired, false
	}
	port = int(t[phys])
	return port, port >= 0
}

// Wired returns the number of physical ports with a logical assignment.
func (t *PortMapTable) Wired() int {
	n := 0
	for _, v := range t {
		if v >= 0 {
			n++
		}
	}
	return n
}

// Non-blocking 1:1 edge wiring: every physical port is its own logical port.
var class0Wiring = PortMapTable{
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23,
	24, 25, 26, 27, 28, 29, 30, 31,
	32, 33, 34, 35, 36, 37, 38, 39,
	40, 41, 42, 43, 44, 45, 46, 47,
	48, 49, 50, 51, 52, 53, 54, 55,
	56, 57, 58, 59, 60, 61, 62, 63,
}

// Partial blocking wiring, 32 populated edge ports:
// 2,3,6,7,8,9,12,13,14,16,20,21,26,27,30,31,32,33,36,37,42,43,46,47,50,51,54,55,56,57,60,61
var class1Wiring = PortMapTable{
	-1, -1, 0, 1, -1, -1, 2, 3,
	4, 5, -1, -1, 6, 7, 8, -1,
	9, -1, -1, -1, 10, 11, -1, -1,
	-1, -1, 12, 13, -1, -1, 14, 15,
	16, 17, -1, -1, 18, 19, -1, -1,
	-1, -1, 20, 21, -1, -1, 22, 23,
	-1, -1, 24, 25, -1, -1, 26, 27,
	28, 29, -1, -1, 30, 31, -1, -1,
}

// River top-of-rack edge wiring for class 2 and above:
// 8,9,12,13,26,27,30,31,42,43,46,47,56,57,60,61
var class2PlusWiring = PortMapTable{
	-1, -1, -1, -1, -1, -1, -1, -1,
	0, 1, -1, -1, 2, 3, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, 4, 5, -1, -1, 6, 7,
	-1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, 8, 9, -1, -1, 10, 11,
	-1, -1, -1, -1, -1, -1, -1, -1,
	12, 13, -1, -1, 14, 15, -1, -1,
}

// Mountain chassis edge wiring: 0-3, 16-19, 32-35, 48-51.
var mountainWiring = PortMapTable{
	0, 1, 2, 3, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1,
	4, 5, 6, 7, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1,
	8, 9, 10, 11, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1,
	12, 13, 14, 15, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1,
}

// Class0Table returns a copy of the non-blocking identity wiring.
func Class0Table() PortMapTable { return class0Wiring }

// Class1Table returns a copy of the partial blocking wiring.
func Class1Table() PortMapTable { return class1Wiring }

// MountainTable returns a copy of the mountain chassis wiring.
func MountainTable() PortMapTable { return mountainWiring }

// Class2PlusTable returns a copy of the river wiring used as the class 2+
// alternate.
func Class2PlusTable() PortMapTable { return class2PlusWiring }

// NamedTable pairs a wiring table with the name used on the command line.
type NamedTable struct {
	Name  string
	Table PortMapTable
}

// Tables lists every wiring table in a stable order.
func Tables() []NamedTable {
	return []NamedTable{
		{Name: "class0", Table: class0Wiring},
		{Name: "class1", Table: class1Wiring},
		{Name: "mountain", Table: mountainWiring},
		{Name: "class2plus", Table: class2PlusWiring},
	}
}

// TableByName finds a wiring table by its Tables name.
func TableByName(name string) (PortMapTable, bool) {
	for _, nt := range Tables() {
		if nt.Name == name {
			return nt.Table, true
		}
	}
	return PortMapTable{}, false
}
