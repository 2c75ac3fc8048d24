package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dragonfly-hpc/hsnaddr/pkg/placement"
	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

var (
	placeN            int
	placeKeyFile      string
	placeFromRegistry bool
	placeForce        bool
	placeRandomize    bool
	placeReorderFile  string
	placeTasksPerNode int
	placeMachine      string
	placeSeed         int64
	placeExclude      string
)

var placeCmd = &cobra.Command{
	Use:   "place -N <nodes>",
	Short: "Choose job nodes by dragonfly group",
	Long: `Choose nodes for a job from the hsnaddr diagnostic output of a node pool.

If the request fits in the largest dragonfly group the nodes are packed
there; otherwise (or with --force-distribute) they are dealt round-robin
across groups. The node list is printed in Slurm host list form.

Examples:
  hsnaddr place -N 16 --key dragonfly_topo.txt
  hsnaddr place -N 64 --registry --force-distribute --randomize
  hsnaddr place -N 8 --exclude 12-15,20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := loadTopology(cmd)
		if err != nil {
			return err
		}

		machine := placeMachine
		if machine == "" {
			machine = userSettings.GetMachineName()
		}

		if placeExclude != "" {
			numbers, err := util.ExpandRange(placeExclude)
			if err != nil {
				return fmt.Errorf("invalid --exclude: %w", err)
			}
			topo = topo.Exclude(machine, numbers)
		}

		alloc, err := placement.Plan(topo, placeN, placeForce)
		if err != nil {
			return err
		}

		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Found biggest group = %d, count = %d\n", alloc.LargestGroup, alloc.LargestCount)
		fmt.Fprintf(errOut, "Have %d dragonfly groups\n", alloc.GroupCount)
		if alloc.Distributed {
			fmt.Fprintf(errOut, "Distributing %d nodes across groups\n", placeN)
		}

		if placeRandomize {
			if err := writeRankReorder(errOut); err != nil {
				return err
			}
		}

		list, err := placement.NodeList(machine, alloc.Nodes)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), list)
		return nil
	},
}

func loadTopology(cmd *cobra.Command) (*placement.Topology, error) {
	if placeFromRegistry {
		ctx := cmd.Context()
		client, err := dialRegistry(ctx)
		if err != nil {
			return nil, err
		}
		defer client.Close()

		records, err := client.List(ctx)
		if err != nil {
			return nil, err
		}
		return placement.FromRecords(records), nil
	}

	path := placeKeyFile
	if path == "" {
		path = userSettings.GetKeyFile()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not find key file %s: %w", path, err)
	}
	defer f.Close()
	return placement.ReadKeyFile(f)
}

func writeRankReorder(errOut io.Writer) error {
	seed := placeSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	order, err := placement.RankReorder(placeN, placeTasksPerNode, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	fmt.Fprintf(errOut, "Creating rank reorder file in %s\n", placeReorderFile)
	if err := os.WriteFile(placeReorderFile, []byte(order+"\n"), 0644); err != nil {
		return fmt.Errorf("writing rank reorder file: %w", err)
	}
	return nil
}

func init() {
	placeCmd.Flags().IntVarP(&placeN, "nodes", "N", 0, "Number of nodes to place")
	placeCmd.Flags().StringVar(&placeKeyFile, "key", "", "Diagnostic output describing the node pool (default: key_file setting)")
	placeCmd.Flags().BoolVar(&placeFromRegistry, "registry", false, "Read node locations from the registry instead of a key file")
	placeCmd.Flags().BoolVar(&placeForce, "force-distribute", false, "Always distribute nodes across as many groups as possible")
	placeCmd.Flags().BoolVar(&placeRandomize, "randomize", false, "Shuffle ranks by writing an MPICH_RANK_REORDER file")
	placeCmd.Flags().StringVar(&placeReorderFile, "reorder-file", "rank_reorder.txt", "MPICH_RANK_REORDER file name")
	placeCmd.Flags().IntVar(&placeTasksPerNode, "ntasks-per-node", 8, "MPI ranks per node")
	placeCmd.Flags().StringVarP(&placeMachine, "machine-name", "m", "", "Node name prefix (default: machine_name setting)")
	placeCmd.Flags().StringVar(&placeExclude, "exclude", "", "Node numbers to leave out, e.g. 12-15,20")
	placeCmd.Flags().Int64Var(&placeSeed, "seed", 0, "Shuffle seed (default: time based)")
	placeCmd.MarkFlagRequired("nodes")
}
