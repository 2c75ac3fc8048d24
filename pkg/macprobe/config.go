package macprobe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// Config selects and parameterizes the discovery probes.
//
// Example:
//
//	interface_prefix: hsn
//	order: [ioctl, ifcfg, hosts, sysfs]
//	ifcfg_files:
//	  - /etc/sysconfig/network/ifcfg-hsn{nic}
//	hosts_file: /etc/hosts
//	sysfs_path: /sys/class/net/{ifname}/address
type Config struct {
	InterfacePrefix string   `yaml:"interface_prefix"`
	Order           []string `yaml:"order"`
	IfcfgFiles      []string `yaml:"ifcfg_files"`
	HostsFile       string   `yaml:"hosts_file"`
	SysfsPath       string   `yaml:"sysfs_path"`
}

// DefaultConfig tries ioctl, then ifcfg files, then the hosts file, then sysfs.
func DefaultConfig() *Config {
	return &Config{
		InterfacePrefix: DefaultInterfacePrefix,
		Order:           []string{ProbeIoctl, ProbeIfcfg, ProbeHosts, ProbeSysfs},
		IfcfgFiles:      append([]string(nil), DefaultIfcfgFiles...),
		HostsFile:       DefaultHostsFile,
		SysfsPath:       DefaultSysfsPath,
	}
}

// LoadConfig reads a YAML probe config. Fields left out keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading probe config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing probe config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating probe config: %w", err)
	}
	return cfg, nil
}

// Validate checks probe names and the settings each selected probe needs.
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(c.InterfacePrefix != "", "interface_prefix is required")
	v.Add(len(c.Order) > 0, "order must name at least one probe")

	seen := make(map[string]bool)
	for _, name := range c.Order {
		switch name {
		case ProbeIoctl:
		case ProbeIfcfg:
			v.Add(len(c.IfcfgFiles) > 0, "ifcfg probe selected but ifcfg_files is empty")
		case ProbeHosts:
			v.Add(c.HostsFile != "", "hosts probe selected but hosts_file is empty")
		case ProbeSysfs:
			v.Add(c.SysfsPath != "", "sysfs probe selected but sysfs_path is empty")
		default:
			v.AddErrorf("unknown probe %q (valid: ioctl, ifcfg, hosts, sysfs)", name)
		}
		if seen[name] {
			v.AddErrorf("probe %q listed twice", name)
		}
		seen[name] = true
	}
	return v.Build()
}

// Probes builds the probes named in Order. hostname is used by the hosts
// file probe.
func (c *Config) Probes(hostname string) ([]Probe, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	probes := make([]Probe, 0, len(c.Order))
	for _, name := range c.Order {
		switch name {
		case ProbeIoctl:
			probes = append(probes, &IoctlProbe{Prefix: c.InterfacePrefix})
		case ProbeIfcfg:
			probes = append(probes, &IfcfgProbe{Paths: c.IfcfgFiles, Prefix: c.InterfacePrefix})
		case ProbeHosts:
			probes = append(probes, &HostsProbe{Path: c.HostsFile, Hostname: hostname})
		case ProbeSysfs:
			probes = append(probes, &SysfsProbe{Path: c.SysfsPath, Prefix: c.InterfacePrefix})
		}
	}
	return probes, nil
}

// Chain builds a Chain over the configured probes.
func (c *Config) Chain(hostname string) (*Chain, error) {
	probes, err := c.Probes(hostname)
	if err != nil {
		return nil, err
	}
	return NewChain(probes...), nil
}
