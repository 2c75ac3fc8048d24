package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/macprobe"
	"github.com/dragonfly-hpc/hsnaddr/pkg/metrics"
)

// staticProbe answers from a fixed NIC table. It is read-only and safe for
// concurrent use.
type staticProbe map[int]string

func (p staticProbe) Name() string { return "static" }

func (p staticProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	if mac, ok := p[nic]; ok {
		return mac, nil
	}
	return "", macprobe.ErrNotFound
}

func TestResolve(t *testing.T) {
	chain := macprobe.NewChain(staticProbe{0: "00:00:00:00:00:08"})
	r := New("frontier00012", chain, logaddr.Class2, nil)

	rec := r.Resolve(context.Background(), 0)
	require.True(t, rec.OK(), "unexpected error: %v", rec.Err)
	assert.Equal(t, "static", rec.Source)
	assert.Equal(t, logaddr.LogicalAddress(0), rec.Addr)
	assert.Equal(t, "frontier00012 NIC 0 macaddr 00:00:00:00:00:08 logaddr 00000 location 000.00.00", rec.Line())
}

func TestResolveUndiscoverable(t *testing.T) {
	chain := macprobe.NewChain(staticProbe{})
	r := New("frontier00012", chain, logaddr.Class2, nil)

	rec := r.Resolve(context.Background(), 1)
	assert.False(t, rec.OK())
	assert.Equal(t, macprobe.Unknown, rec.MAC)
	assert.ErrorIs(t, rec.DiscoverErr, macprobe.ErrNotFound)
	assert.ErrorIs(t, rec.Err, logaddr.ErrParse)
	assert.Equal(t, "frontier00012: NIC 1 failed to parse MAC addr: Unknown", rec.FailureLine())
}

func TestResolveAllKeepsOrder(t *testing.T) {
	probe := staticProbe{
		0: "ec:0d:9a:00:28:da",
		1: "00:40:a6:0f:ff:f3",
		2: "00:00:00:00:00:04",
		3: "00:00:00:00:00:30",
	}
	r := New("node7", macprobe.NewChain(probe), logaddr.Class3, nil)
	r.MaxConcurrency = 2

	recs := r.ResolveAll(context.Background(), 5)
	require.Len(t, recs, 5)
	for i, rec := range recs {
		assert.Equal(t, i, rec.NIC)
		assert.Equal(t, "node7", rec.Host)
	}

	assert.Equal(t, "005.03.04", recs[0].Addr.String())
	assert.Equal(t, "511.31.15", recs[1].Addr.String())
	assert.ErrorIs(t, recs[2].Err, logaddr.ErrUnwiredPort)
	assert.Equal(t, logaddr.LogicalAddress(12), recs[3].Addr)
	assert.ErrorIs(t, recs[4].Err, logaddr.ErrParse)

	assert.Equal(t, 2, FirstFailure(recs))
	assert.Equal(t, -1, FirstFailure(recs[:2]))
	assert.Equal(t, -1, FirstFailure(nil))
}

func TestResolveRecordsMetrics(t *testing.T) {
	m := metrics.New()
	chain := macprobe.NewChain(staticProbe{0: "00:00:00:00:00:0a"})
	r := New("node1", chain, logaddr.Class0, m)
	require.NotNil(t, chain.Observe)

	recs := r.ResolveAll(context.Background(), 2)
	require.Len(t, recs, 2)
	assert.Equal(t, logaddr.LogicalAddress(10), recs[0].Addr)

	path := filepath.Join(t.TempDir(), "hsnaddr.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `hsnaddr_translations_total{class="class0",result="ok"} 1`)
	assert.Contains(t, out, `hsnaddr_translations_total{class="class0",result="parse_error"} 1`)
	assert.Contains(t, out, `hsnaddr_probe_results_total{probe="static",result="not_found"} 1`)
}

func TestResolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New("node1", macprobe.NewChain(staticProbe{0: "00:00:00:00:00:08"}), logaddr.Class2, nil)
	rec := r.Resolve(ctx, 0)
	assert.True(t, errors.Is(rec.DiscoverErr, context.Canceled))
	assert.False(t, rec.OK())
}
