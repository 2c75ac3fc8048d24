// Package macprobe discovers the hardware address of a high-speed network
// NIC. Direct OS queries are not always available on compute nodes, so the
// address is looked up through a prioritized chain of probes.
package macprobe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// Unknown is reported in place of a MAC address when no probe succeeded.
// It never parses as a MAC address.
const Unknown = "Unknown"

// Probe names
const (
	ProbeIoctl = "ioctl"
	ProbeIfcfg = "ifcfg"
	ProbeHosts = "hosts"
	ProbeSysfs = "sysfs"
)

var (
	// ErrNotFound means a probe, or the whole chain, found no address
	ErrNotFound = errors.New("hardware address not found")

	// ErrUnsupported means a probe cannot run on this platform
	ErrUnsupported = errors.New("probe not supported on this platform")
)

// Probe looks up the hardware address of the nic'th HSN interface.
type Probe interface {
	Name() string
	HardwareAddr(ctx context.Context, nic int) (string, error)
}

// Result is a discovered address and the probe that found it.
type Result struct {
	MAC    string
	Source string
}

// Chain runs probes in order until one returns an address.
type Chain struct {
	Probes []Probe

	// Log receives a line each time the chain falls through to the next
	// probe. Defaults to the package logger.
	Log *logrus.Entry

	// Observe, if set, is called with the outcome of every probe attempt.
	Observe func(probe string, err error)
}

// NewChain returns a chain over probes.
func NewChain(probes ...Probe) *Chain {
	return &Chain{Probes: probes}
}

// Discover returns the first address found. When every probe fails it
// returns Result{MAC: Unknown} and an error wrapping ErrNotFound together
// with each probe's failure.
func (c *Chain) Discover(ctx context.Context, nic int) (Result, error) {
	log := c.Log
	if log == nil {
		log = util.Logger.WithField("nic", nic)
	}

	var errs []error
	for i, p := range c.Probes {
		if err := ctx.Err(); err != nil {
			return Result{MAC: Unknown}, err
		}

		mac, err := p.HardwareAddr(ctx, nic)
		if err == nil && strings.TrimSpace(mac) == "" {
			err = ErrNotFound
		}
		if c.Observe != nil {
			c.Observe(p.Name(), err)
		}
		if err == nil {
			return Result{MAC: strings.TrimSpace(mac), Source: p.Name()}, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if i+1 < len(c.Probes) {
			log.WithField("probe", p.Name()).Infof("failed to get algorithmic MAC address (%v), trying %s", err, c.Probes[i+1].Name())
		}
	}

	return Result{MAC: Unknown}, fmt.Errorf("NIC %d: %w: %w", nic, ErrNotFound, errors.Join(errs...))
}

// expandPath substitutes {nic} and {ifname} in a configured path.
func expandPath(pattern, ifname string, nic int) string {
	r := strings.NewReplacer("{nic}", strconv.Itoa(nic), "{ifname}", ifname)
	return r.Replace(pattern)
}
