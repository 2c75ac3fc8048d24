// Package placement picks job nodes by dragonfly group, using the node
// locations reported by hsnaddr.
package placement

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/resolver"
)

// Key file columns, as printed by the diagnostic command:
// <host> NIC <i> macaddr <mac> logaddr <n> location <GGG.SS.PP>
const (
	keyFieldHost     = 0
	keyFieldLocation = 8
)

// ErrKeyFile is returned for key file lines that cannot be parsed.
var ErrKeyFile = errors.New("malformed key file")

// Node is a host and the dragonfly location of its first NIC.
type Node struct {
	Name     string
	Location logaddr.LogicalAddress
}

// Group returns the node's dragonfly group.
func (n Node) Group() int { return n.Location.Group() }

// Group is a dragonfly group and its nodes in first-seen order.
type Group struct {
	ID    int
	Nodes []string
}

// Topology is the set of known nodes in first-seen order. A node keeps the
// location of the first line or record that named it.
type Topology struct {
	nodes []Node
	seen  map[string]bool
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{seen: make(map[string]bool)}
}

// Add records a node. It returns false if the node was already known.
func (t *Topology) Add(name string, loc logaddr.LogicalAddress) bool {
	if t.seen[name] {
		return false
	}
	t.seen[name] = true
	t.nodes = append(t.nodes, Node{Name: name, Location: loc})
	return true
}

// Len returns the number of nodes.
func (t *Topology) Len() int { return len(t.nodes) }

// Nodes returns the nodes in first-seen order.
func (t *Topology) Nodes() []Node {
	return append([]Node(nil), t.nodes...)
}

// Exclude returns a copy of t without the nodes whose numeric suffix after
// machine is listed in numbers. Nodes without a numeric suffix are kept.
func (t *Topology) Exclude(machine string, numbers []int) *Topology {
	drop := make(map[int]bool, len(numbers))
	for _, v := range numbers {
		drop[v] = true
	}
	out := NewTopology()
	for _, n := range t.nodes {
		if v, err := strconv.Atoi(strings.TrimPrefix(n.Name, machine)); err == nil && drop[v] {
			continue
		}
		out.Add(n.Name, n.Location)
	}
	return out
}

// Groups returns every dragonfly group in the order its first node was seen.
func (t *Topology) Groups() []Group {
	var groups []Group
	index := make(map[int]int)
	for _, n := range t.nodes {
		i, ok := index[n.Group()]
		if !ok {
			i = len(groups)
			index[n.Group()] = i
			groups = append(groups, Group{ID: n.Group()})
		}
		groups[i].Nodes = append(groups[i].Nodes, n.Name)
	}
	return groups
}

// Largest returns the group with the most nodes and its size. On a tie the
// group that reached that size first, scanning nodes in order, wins. An
// empty topology returns (-1, 0).
func (t *Topology) Largest() (group, count int) {
	group = -1
	counts := make(map[int]int)
	for _, n := range t.nodes {
		counts[n.Group()]++
		if c := counts[n.Group()]; c > count {
			group, count = n.Group(), c
		}
	}
	return group, count
}

// ReadKeyFile parses diagnostic output, one NIC per line. Blank lines are
// skipped.
func ReadKeyFile(r io.Reader) (*Topology, error) {
	t := NewTopology()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) <= keyFieldLocation {
			return nil, fmt.Errorf("%w: line %d has %d fields, want at least %d",
				ErrKeyFile, lineNo, len(fields), keyFieldLocation+1)
		}
		loc, err := logaddr.ParseLocation(fields[keyFieldLocation])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrKeyFile, lineNo, err)
		}
		t.Add(fields[keyFieldHost], loc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return t, nil
}

// FromRecords builds a topology from resolved or registry records.
// Untranslated records are skipped.
func FromRecords(records []resolver.Record) *Topology {
	t := NewTopology()
	for _, rec := range records {
		if rec.OK() {
			t.Add(rec.Host, rec.Addr)
		}
	}
	return t
}
