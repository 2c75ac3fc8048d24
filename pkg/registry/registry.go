// Package registry publishes resolved NIC addresses to Redis so that job
// placement can run without logging in to every node.
//
// Each NIC is one hash:
//
//	HSN_ADDR|<host>|<nic>  mac logaddr location class source
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/resolver"
	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// Table is the key prefix of every registry hash.
const Table = "HSN_ADDR"

const keySep = "|"

// ErrBadEntry is returned for registry hashes that cannot be decoded.
var ErrBadEntry = errors.New("malformed registry entry")

// Options configures a registry connection.
type Options struct {
	Addr string
	DB   int

	// SSHHost, when set, reaches Addr on that host through an SSH tunnel.
	SSHHost     string
	SSHUser     string
	SSHPassword string
}

// Client wraps a Redis client for the address registry.
type Client struct {
	client *redis.Client
	tunnel *SSHTunnel
}

// Dial connects to the registry and pings it.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	addr := opts.Addr
	c := &Client{}

	if opts.SSHHost != "" {
		tun, err := NewSSHTunnel(opts.SSHHost, opts.SSHUser, opts.SSHPassword, opts.Addr)
		if err != nil {
			return nil, fmt.Errorf("registry tunnel: %w", err)
		}
		c.tunnel = tun
		addr = tun.LocalAddr()
		util.WithField("ssh_host", opts.SSHHost).Debugf("registry tunnel listening on %s", addr)
	}

	c.client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   opts.DB,
	})
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("connecting to registry at %s: %w", addr, err)
	}
	return c, nil
}

// Close closes the connection and the tunnel, if any.
func (c *Client) Close() error {
	err := c.client.Close()
	if c.tunnel != nil {
		if terr := c.tunnel.Close(); err == nil {
			err = terr
		}
	}
	return err
}

// Key returns the registry key for one NIC.
func Key(host string, nic int) string {
	return strings.Join([]string{Table, host, strconv.Itoa(nic)}, keySep)
}

// ParseKey splits a registry key into host and NIC.
func ParseKey(key string) (host string, nic int, err error) {
	parts := strings.Split(key, keySep)
	if len(parts) != 3 || parts[0] != Table || parts[1] == "" {
		return "", 0, fmt.Errorf("%w: key %q", ErrBadEntry, key)
	}
	nic, err = strconv.Atoi(parts[2])
	if err != nil || nic < 0 {
		return "", 0, fmt.Errorf("%w: key %q has bad NIC index", ErrBadEntry, key)
	}
	return parts[1], nic, nil
}

// Fields encodes a record as hash fields.
func Fields(rec resolver.Record) map[string]string {
	return map[string]string{
		"mac":      rec.MAC,
		"logaddr":  strconv.Itoa(int(rec.Addr)),
		"location": rec.Addr.String(),
		"class":    rec.Class.String(),
		"source":   rec.Source,
	}
}

// Decode builds a record from a registry key and its hash fields.
func Decode(key string, vals map[string]string) (resolver.Record, error) {
	host, nic, err := ParseKey(key)
	if err != nil {
		return resolver.Record{}, err
	}

	rec := resolver.Record{Host: host, NIC: nic, MAC: vals["mac"], Source: vals["source"]}

	if s, ok := vals["logaddr"]; ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return resolver.Record{}, fmt.Errorf("%w: %s logaddr %q", ErrBadEntry, key, s)
		}
		rec.Addr = logaddr.LogicalAddress(n)
	} else {
		rec.Addr, err = logaddr.ParseLocation(vals["location"])
		if err != nil {
			return resolver.Record{}, fmt.Errorf("%w: %s: %v", ErrBadEntry, key, err)
		}
	}
	if !rec.Addr.Valid() {
		return resolver.Record{}, fmt.Errorf("%w: %s has invalid logaddr", ErrBadEntry, key)
	}

	rec.Class, err = logaddr.ParseSwitchClass(vals["class"])
	if err != nil {
		return resolver.Record{}, fmt.Errorf("%w: %s: %v", ErrBadEntry, key, err)
	}
	return rec, nil
}

// Publish writes every translated record in one pipeline. Records that
// failed to translate are skipped. Returns the number written.
func (c *Client) Publish(ctx context.Context, records []resolver.Record) (int, error) {
	pipe := c.client.Pipeline()
	n := 0
	for _, rec := range records {
		if !rec.OK() {
			util.WithNIC(rec.Host, rec.NIC).Debugf("not publishing untranslated NIC: %v", rec.Err)
			continue
		}
		fields := Fields(rec)
		args := make([]interface{}, 0, len(fields)*2)
		for k, v := range fields {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, Key(rec.Host, rec.NIC), args...)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("publishing %d records: %w", n, err)
	}
	util.WithFields(map[string]interface{}{"table": Table, "records": n}).Debugf("published")
	return n, nil
}

// Get reads one NIC's record. Returns nil (not error) if it is not registered.
func (c *Client) Get(ctx context.Context, host string, nic int) (*resolver.Record, error) {
	key := Key(host, nic)
	vals, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	rec, err := Decode(key, vals)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every registered record sorted by host, then NIC. Entries
// that cannot be decoded are logged and skipped.
func (c *Client) List(ctx context.Context) ([]resolver.Record, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, Table+keySep+"*", 256).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning registry: %w", err)
	}

	records := make([]resolver.Record, 0, len(keys))
	for _, key := range keys {
		vals, err := c.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		rec, err := Decode(key, vals)
		if err != nil {
			util.Warnf("skipping registry entry: %v", err)
			continue
		}
		records = append(records, rec)
	}

	SortRecords(records)
	return records, nil
}

// Delete removes every NIC registered for host. Returns the number removed.
func (c *Client) Delete(ctx context.Context, host string) (int64, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, Table+keySep+host+keySep+"*", 256).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scanning registry: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return c.client.Del(ctx, keys...).Result()
}

// SortRecords orders records by host, then NIC.
func SortRecords(records []resolver.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Host != records[j].Host {
			return records[i].Host < records[j].Host
		}
		return records[i].NIC < records[j].NIC
	})
}
