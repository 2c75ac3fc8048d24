package macprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	name  string
	mac   string
	err   error
	calls int
}

func (f *fakeProbe) Name() string { return f.name }

func (f *fakeProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	f.calls++
	return f.mac, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := &fakeProbe{name: "a", err: errors.New("no device")}
	second := &fakeProbe{name: "b", mac: "00:40:a6:82:f3:0c\n"}
	third := &fakeProbe{name: "c", mac: "00:00:00:00:00:01"}

	res, err := NewChain(first, second, third).Discover(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "00:40:a6:82:f3:0c", res.MAC)
	assert.Equal(t, "b", res.Source)
	assert.Equal(t, 0, third.calls, "probes after the winner must not run")
}

func TestChainAllFail(t *testing.T) {
	chain := NewChain(
		&fakeProbe{name: "a", err: errors.New("boom")},
		&fakeProbe{name: "b", mac: "   "},
	)

	res, err := chain.Discover(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Unknown, res.MAC)
	assert.Contains(t, err.Error(), "NIC 3")
	assert.Contains(t, err.Error(), "boom")
}

func TestChainObserve(t *testing.T) {
	var seen []string
	chain := NewChain(
		&fakeProbe{name: "a", err: errors.New("boom")},
		&fakeProbe{name: "b", mac: "00:00:00:00:00:01"},
	)
	chain.Observe = func(probe string, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "fail"
		}
		seen = append(seen, probe+"="+outcome)
	}

	_, err := chain.Discover(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a=fail", "b=ok"}, seen)
}

func TestChainCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProbe{name: "a", mac: "00:00:00:00:00:01"}
	res, err := NewChain(p).Discover(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Unknown, res.MAC)
	assert.Equal(t, 0, p.calls)
}

func TestIfcfgProbe(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ifcfg-hsn", "BOOTPROTO='static'\nSTARTMODE='auto'\n")
	writeFile(t, dir, "ifcfg-hsn1", "# HSN NIC 1\nBOOTPROTO='static'\nMACADDR=\"02:00:00:00:10:21\"\nLLADDR='02:00:00:00:10:99'\n")
	writeFile(t, dir, "ifcfg-enp94s0", "LLADDR='00:40:a6:00:00:01'\n")

	p := &IfcfgProbe{Paths: []string{
		filepath.Join(dir, "ifcfg-hsn"),
		filepath.Join(dir, "ifcfg-hsn{nic}"),
		filepath.Join(dir, "ifcfg-enp94s0"),
	}}

	t.Run("first key in nic file", func(t *testing.T) {
		mac, err := p.HardwareAddr(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "02:00:00:00:10:21", mac)
	})

	t.Run("missing nic file falls through", func(t *testing.T) {
		mac, err := p.HardwareAddr(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, "00:40:a6:00:00:01", mac)
	})

	t.Run("nothing found", func(t *testing.T) {
		empty := &IfcfgProbe{Paths: []string{filepath.Join(dir, "ifcfg-hsn"), filepath.Join(dir, "absent")}}
		_, err := empty.HardwareAddr(context.Background(), 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestIfcfgProbeIfnameSubstitution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ifcfg-eth2", "LLADDR=02:00:00:00:00:42\n")

	p := &IfcfgProbe{Prefix: "eth", Paths: []string{filepath.Join(dir, "ifcfg-{ifname}")}}
	mac, err := p.HardwareAddr(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "02:00:00:00:00:42", mac)
}

func TestHostsProbe(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hosts", `127.0.0.1 localhost
10.1.0.12 frontier00012 nid000012
# hsn addresses
10.100.0.12 frontier00012h0 02:00:00:00:30:08
10.100.0.13 frontier00013h0 02:00:00:00:30:09
`)

	p := &HostsProbe{Path: path, Hostname: "frontier00013"}
	mac, err := p.HardwareAddr(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "02:00:00:00:30:09", mac)

	missing := &HostsProbe{Path: path, Hostname: "frontier09999"}
	_, err = missing.HardwareAddr(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)

	noHost := &HostsProbe{Path: path}
	_, err = noHost.HardwareAddr(context.Background(), 0)
	assert.Error(t, err)
}

func TestHostsProbeRejectsLooseTokens(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hosts", "10.100.0.12 node1 2:0:0:0:30:8 02-00-00-00-30-08\n")

	_, err := (&HostsProbe{Path: path, Hostname: "node1"}).HardwareAddr(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSysfsProbe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hsn1"), 0755))
	writeFile(t, filepath.Join(dir, "hsn1"), "address", "02:00:00:00:30:0a\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hsn2"), 0755))
	writeFile(t, filepath.Join(dir, "hsn2"), "address", "\n")

	p := &SysfsProbe{Path: filepath.Join(dir, "{ifname}", "address")}

	mac, err := p.HardwareAddr(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "02:00:00:00:30:0a", mac)

	_, err = p.HardwareAddr(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.HardwareAddr(context.Background(), 3)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIoctlProbe(t *testing.T) {
	p := &IoctlProbe{}
	assert.Equal(t, "hsn0", p.InterfaceName(0))
	assert.Equal(t, "eth3", (&IoctlProbe{Prefix: "eth"}).InterfaceName(3))

	_, err := (&IoctlProbe{Prefix: "nohsn"}).HardwareAddr(context.Background(), 99)
	assert.Error(t, err)
}
