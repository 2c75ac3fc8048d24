package placement

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// ErrNotEnoughNodes is returned when more nodes are requested than known.
var ErrNotEnoughNodes = errors.New("not enough nodes")

// Allocation is the outcome of Plan.
type Allocation struct {
	// Nodes are the chosen node names in selection order.
	Nodes []string

	// Distributed is true when nodes were spread across groups.
	Distributed bool

	LargestGroup int
	LargestCount int
	GroupCount   int
}

// Plan chooses n nodes. If n fits in the largest dragonfly group and force
// is false, the first n nodes of that group are taken. Otherwise nodes are
// dealt round-robin across groups in first-seen order, skipping groups that
// run out.
func Plan(t *Topology, n int, force bool) (*Allocation, error) {
	if n <= 0 {
		return nil, fmt.Errorf("node count must be positive, got %d", n)
	}
	if n > t.Len() {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrNotEnoughNodes, n, t.Len())
	}

	groups := t.Groups()
	a := &Allocation{GroupCount: len(groups)}
	a.LargestGroup, a.LargestCount = t.Largest()

	if n <= a.LargestCount && !force {
		for _, node := range t.nodes {
			if len(a.Nodes) == n {
				break
			}
			if node.Group() == a.LargestGroup {
				a.Nodes = append(a.Nodes, node.Name)
			}
		}
		return a, nil
	}

	a.Distributed = true
	for idx := 0; len(a.Nodes) < n; idx++ {
		for _, g := range groups {
			if len(a.Nodes) == n {
				break
			}
			if idx < len(g.Nodes) {
				util.WithField("group", g.ID).Debugf("adding node %s", g.Nodes[idx])
				a.Nodes = append(a.Nodes, g.Nodes[idx])
			}
		}
	}
	return a, nil
}

// NodeList renders nodes as a compact Slurm host list such as
// frontier[00012-00015,00020]. The machine prefix is stripped from each
// name and the zero padding of the numeric suffix is kept.
func NodeList(machine string, nodes []string) (string, error) {
	if len(nodes) == 0 {
		return "", fmt.Errorf("empty node list")
	}

	nums := make([]int, 0, len(nodes))
	width := 0
	for _, name := range nodes {
		suffix := strings.TrimPrefix(name, machine)
		v, err := strconv.Atoi(suffix)
		if err != nil || v < 0 {
			return "", fmt.Errorf("node %q has no numeric suffix after %q", name, machine)
		}
		if len(suffix) > width {
			width = len(suffix)
		}
		nums = append(nums, v)
	}

	compact := util.CompactRangeFunc(nums, func(v int) string {
		return fmt.Sprintf("%0*d", width, v)
	})
	return machine + "[" + compact + "]", nil
}

// RankReorder shuffles n nodes and lists each node's MPI rank range, for use
// as an MPICH_RANK_REORDER file: "8-15,0-7,16-23".
func RankReorder(n, tasksPerNode int, rng *rand.Rand) (string, error) {
	v := &util.ValidationBuilder{}
	v.Add(n > 0, "node count must be positive")
	v.Add(tasksPerNode > 0, "tasks per node must be positive")
	if err := v.Build(); err != nil {
		return "", err
	}

	order := rng.Perm(n)
	ranges := make([]string, len(order))
	for i, node := range order {
		ranges[i] = fmt.Sprintf("%d-%d", node*tasksPerNode, (node+1)*tasksPerNode-1)
	}
	return strings.Join(ranges, ","), nil
}
