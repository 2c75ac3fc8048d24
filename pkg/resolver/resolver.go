// Package resolver discovers and translates the addresses of every HSN NIC
// on a node.
package resolver

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/iter"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/macprobe"
	"github.com/dragonfly-hpc/hsnaddr/pkg/metrics"
	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// Record is the outcome of resolving one NIC.
type Record struct {
	Host   string
	NIC    int
	MAC    string
	Source string
	Class  logaddr.SwitchClass
	Addr   logaddr.LogicalAddress

	// Err is the translation failure, if any. A MAC that could not be
	// discovered is reported as macprobe.Unknown and fails to parse.
	Err error

	// DiscoverErr is the probe chain failure, if any.
	DiscoverErr error
}

// OK reports whether the record carries a valid logical address.
func (r Record) OK() bool {
	return r.Err == nil && r.Addr.Valid()
}

// Line renders the diagnostic line for a resolved NIC.
func (r Record) Line() string {
	return fmt.Sprintf("%s NIC %d macaddr %s logaddr %05d location %s",
		r.Host, r.NIC, r.MAC, int(r.Addr), r.Addr)
}

// FailureLine renders the diagnostic line for a NIC that failed to translate.
func (r Record) FailureLine() string {
	return fmt.Sprintf("%s: NIC %d failed to parse MAC addr: %s", r.Host, r.NIC, r.MAC)
}

// Resolver runs the probe chain and translator for each NIC.
type Resolver struct {
	Hostname   string
	Chain      *macprobe.Chain
	Translator *logaddr.Translator
	Class      logaddr.SwitchClass
	Metrics    *metrics.Metrics

	// MaxConcurrency bounds the NICs resolved at once. Zero means
	// GOMAXPROCS.
	MaxConcurrency int
}

// New returns a Resolver. When m is non-nil, probe outcomes of chain are
// counted in m as well.
func New(hostname string, chain *macprobe.Chain, class logaddr.SwitchClass, m *metrics.Metrics) *Resolver {
	if m != nil && chain.Observe == nil {
		chain.Observe = m.ObserveProbe
	}
	return &Resolver{
		Hostname:   hostname,
		Chain:      chain,
		Translator: &logaddr.Translator{},
		Class:      class,
		Metrics:    m,
	}
}

// Resolve discovers and translates a single NIC.
func (r *Resolver) Resolve(ctx context.Context, nic int) Record {
	rec := Record{Host: r.Hostname, NIC: nic, Class: r.Class, Addr: logaddr.Invalid}

	res, err := r.Chain.Discover(ctx, nic)
	rec.MAC, rec.Source = res.MAC, res.Source
	if err != nil {
		rec.DiscoverErr = err
		util.WithNIC(r.Hostname, nic).Warnf("failed to get algorithmic MAC address: %v", err)
	}

	translator := r.Translator
	if translator == nil {
		translator = &logaddr.Translator{}
	}
	rec.Addr, rec.Err = translator.Translate(rec.MAC, r.Class)
	r.Metrics.ObserveTranslation(r.Class, rec.Err)
	return rec
}

// ResolveAll resolves NICs 0 through count-1 concurrently. Records are
// returned in NIC order.
func (r *Resolver) ResolveAll(ctx context.Context, count int) []Record {
	nics := make([]int, count)
	for i := range nics {
		nics[i] = i
	}

	mapper := iter.Mapper[int, Record]{MaxGoroutines: r.MaxConcurrency}
	return mapper.Map(nics, func(nic *int) Record {
		return r.Resolve(ctx, *nic)
	})
}

// FirstFailure returns the index of the first record that did not
// translate, or -1.
func FirstFailure(records []Record) int {
	for i, rec := range records {
		if !rec.OK() {
			return i
		}
	}
	return -1
}
