package registry

import (
	"errors"
	"testing"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/resolver"
)

func TestKey(t *testing.T) {
	if got := Key("frontier00012", 3); got != "HSN_ADDR|frontier00012|3" {
		t.Errorf("Key() = %q", got)
	}

	host, nic, err := ParseKey("HSN_ADDR|frontier00012|3")
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if host != "frontier00012" || nic != 3 {
		t.Errorf("ParseKey() = (%q, %d)", host, nic)
	}
}

func TestParseKeyErrors(t *testing.T) {
	keys := []string{
		"",
		"HSN_ADDR|node1",
		"HSN_ADDR||0",
		"PORT|node1|0",
		"HSN_ADDR|node1|x",
		"HSN_ADDR|node1|-2",
		"HSN_ADDR|node1|0|extra",
	}
	for _, key := range keys {
		if _, _, err := ParseKey(key); !errors.Is(err, ErrBadEntry) {
			t.Errorf("ParseKey(%q) error = %v, want ErrBadEntry", key, err)
		}
	}
}

func TestFieldsDecode(t *testing.T) {
	rec := resolver.Record{
		Host:   "frontier00012",
		NIC:    1,
		MAC:    "ec:0d:9a:00:28:da",
		Source: "ioctl",
		Class:  logaddr.Class3,
		Addr:   2612,
	}

	fields := Fields(rec)
	if fields["location"] != "005.03.04" {
		t.Errorf("location = %q", fields["location"])
	}
	if fields["logaddr"] != "2612" {
		t.Errorf("logaddr = %q", fields["logaddr"])
	}
	if fields["class"] != "class3" {
		t.Errorf("class = %q", fields["class"])
	}

	got, err := Decode(Key(rec.Host, rec.NIC), fields)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != rec {
		t.Errorf("Decode() = %+v, want %+v", got, rec)
	}
}

func TestDecodeLocationOnly(t *testing.T) {
	got, err := Decode("HSN_ADDR|node1|0", map[string]string{
		"location": "005.03.04",
		"class":    "2",
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Addr != 2612 || got.Class != logaddr.Class2 {
		t.Errorf("Decode() = %+v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		vals map[string]string
	}{
		{"bad logaddr", map[string]string{"logaddr": "abc", "class": "class2"}},
		{"negative logaddr", map[string]string{"logaddr": "-1", "class": "class2"}},
		{"bad location", map[string]string{"location": "5.3", "class": "class2"}},
		{"bad class", map[string]string{"logaddr": "0", "class": "class9"}},
		{"empty", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode("HSN_ADDR|node1|0", tt.vals); !errors.Is(err, ErrBadEntry) {
				t.Errorf("Decode() error = %v, want ErrBadEntry", err)
			}
		})
	}
}

func TestSortRecords(t *testing.T) {
	recs := []resolver.Record{
		{Host: "node2", NIC: 0},
		{Host: "node1", NIC: 3},
		{Host: "node1", NIC: 0},
		{Host: "node10", NIC: 1},
	}
	SortRecords(recs)

	want := []string{"node1/0", "node1/3", "node10/1", "node2/0"}
	for i, r := range recs {
		if got := r.Host + "/" + string(rune('0'+r.NIC)); got != want[i] {
			t.Errorf("recs[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestSSHPasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "s3cret")

	got, err := SSHPassword("admin", "mgmt1")
	if err != nil {
		t.Fatalf("SSHPassword() error = %v", err)
	}
	if got != "s3cret" {
		t.Errorf("SSHPassword() = %q", got)
	}
}
