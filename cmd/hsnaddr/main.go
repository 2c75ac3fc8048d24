// hsnaddr - HSN logical address tool for dragonfly interconnects
//
// Translates the hardware address of each high-speed network NIC into its
// dragonfly location (group, switch, port) and helps place jobs by group.
//
// Diagnostic mode (no subcommand):
//
//	hsnaddr [num_nics [class]]
//
// prints, for each NIC,
//
//	<host> NIC <i> macaddr <mac> logaddr <nnnnn> location <GGG.SS.PP>
//
// and exits 1 at the first NIC whose address cannot be translated.
//
// Examples:
//
//	hsnaddr 4                                   # four NICs, class 2
//	hsnaddr 4 3 --publish                       # class 3, publish to the registry
//	hsnaddr translate 00:40:a6:82:f3:0c --class 0
//	hsnaddr location 005.03.04
//	hsnaddr tables mountain
//	hsnaddr place -N 16 --key dragonfly_topo.txt --randomize
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/macprobe"
	"github.com/dragonfly-hpc/hsnaddr/pkg/registry"
	"github.com/dragonfly-hpc/hsnaddr/pkg/settings"
	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
	"github.com/dragonfly-hpc/hsnaddr/pkg/version"
)

var (
	// Global option flags
	verbose         bool
	debug           bool
	probeConfigPath string
	hostnameFlag    string
	metricsTextfile string
	logJSON         bool

	// Registry connection flags
	registryAddr string
	sshHost      string
	sshUser      string

	// Global state
	userSettings *settings.Settings
)

// errFailed signals a failure that has already been reported to the user.
var errFailed = errors.New("failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "hsnaddr [num_nics [class]]",
	Short:             "HSN MAC to dragonfly logical address tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `hsnaddr discovers the MAC address of each high-speed network NIC and
translates it into a dragonfly logical address and location (GGG.SS.PP).

With no subcommand it runs the node diagnostic: num_nics NICs (default 1)
under switch class 0-4 (default 2, or the default_class setting).`,
	Args: cobra.MaximumNArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Log level: quiet by default, info on -v, debug on --debug
		switch {
		case debug:
			util.SetLogLevel("debug")
		case verbose:
			util.SetLogLevel("info")
		default:
			util.SetLogLevel("warn")
		}
		if logJSON {
			util.SetJSONFormat()
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if probeConfigPath == "" {
			probeConfigPath = userSettings.ProbeConfig
		}
		return nil
	},
	RunE: runDiagnostic,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (probe fall-through)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug output (failing coordinates, river fallback)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	rootCmd.PersistentFlags().StringVar(&probeConfigPath, "config", "", "Probe configuration YAML")
	rootCmd.PersistentFlags().StringVar(&hostnameFlag, "hostname", "", "Hostname to report (default: system hostname)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus textfile metrics to this path")

	rootCmd.PersistentFlags().StringVar(&registryAddr, "registry-addr", "", "Registry Redis address (default: registry_addr setting)")
	rootCmd.PersistentFlags().StringVar(&sshHost, "ssh-host", "", "Reach the registry through an SSH tunnel to this host")
	rootCmd.PersistentFlags().StringVar(&sshUser, "ssh-user", "", "SSH user for the registry tunnel")

	rootCmd.Flags().BoolVar(&publishFlag, "publish", false, "Publish translated addresses to the registry")

	rootCmd.AddGroup(
		&cobra.Group{ID: "addr", Title: "Address Operations:"},
		&cobra.Group{ID: "registry", Title: "Registry & Placement:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{translateCmd, locationCmd, tablesCmd} {
		cmd.GroupID = "addr"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{publishCmd, listCmd, forgetCmd, placeCmd} {
		cmd.GroupID = "registry"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Fprintln(cmd.OutOrStdout(), "hsnaddr dev build (set version with -ldflags)")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "hsnaddr %s\n", version.Info())
		}
	},
}

// ============================================================================
// Helpers
// ============================================================================

// hostname returns --hostname or the system hostname.
func hostname() (string, error) {
	if hostnameFlag != "" {
		return hostnameFlag, nil
	}
	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("getting hostname: %w", err)
	}
	return h, nil
}

// probeConfig loads --config, or the defaults when none is set.
func probeConfig() (*macprobe.Config, error) {
	if probeConfigPath == "" {
		return macprobe.DefaultConfig(), nil
	}
	return macprobe.LoadConfig(probeConfigPath)
}

// switchClass parses an explicit class, falling back to the settings default.
func switchClass(explicit string) (logaddr.SwitchClass, error) {
	if explicit != "" {
		return logaddr.ParseSwitchClass(explicit)
	}
	return userSettings.GetClass()
}

// parseDiagArgs parses the diagnostic's positional [num_nics [class]].
func parseDiagArgs(args []string) (nics int, class logaddr.SwitchClass, err error) {
	nics = 1
	if len(args) > 0 {
		nics, err = strconv.Atoi(args[0])
		if err != nil || nics < 0 {
			return 0, 0, fmt.Errorf("num_nics must be a non-negative integer, got %q", args[0])
		}
	}
	var explicit string
	if len(args) > 1 {
		explicit = args[1]
	}
	class, err = switchClass(explicit)
	if err != nil {
		return 0, 0, err
	}
	return nics, class, nil
}

// dialRegistry connects using flags, then settings.
func dialRegistry(ctx context.Context) (*registry.Client, error) {
	opts := registry.Options{
		Addr:    registryAddr,
		SSHHost: sshHost,
		SSHUser: sshUser,
	}
	if opts.Addr == "" {
		opts.Addr = userSettings.GetRegistryAddr()
	}
	if opts.SSHHost == "" {
		opts.SSHHost = userSettings.RegistrySSHHost
	}
	if opts.SSHUser == "" {
		opts.SSHUser = userSettings.RegistrySSHUser
	}

	if opts.SSHHost != "" {
		if opts.SSHUser == "" {
			opts.SSHUser = os.Getenv("USER")
		}
		pass, err := registry.SSHPassword(opts.SSHUser, opts.SSHHost)
		if err != nil {
			return nil, err
		}
		opts.SSHPassword = pass
	}
	return registry.Dial(ctx, opts)
}
