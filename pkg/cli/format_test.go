package cli

import (
	"errors"
	"strings"
	"testing"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	prev := colorEnabled
	colorEnabled = enabled
	t.Cleanup(func() { colorEnabled = prev })
}

func TestColorFunctions(t *testing.T) {
	withColor(t, true)

	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("hello")
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("%s should start with %q", tt.name, tt.prefix)
			}
			if !strings.Contains(got, "hello") {
				t.Errorf("%s should contain the input string", tt.name)
			}
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s should end with reset code", tt.name)
			}
		})
	}
}

func TestNoColor(t *testing.T) {
	withColor(t, false)

	for _, fn := range []func(string) string{Green, Yellow, Red, Bold} {
		if got := fn("hello"); got != "hello" {
			t.Errorf("got %q with color disabled", got)
		}
	}
}

func TestStatus(t *testing.T) {
	withColor(t, false)

	if got := Status(nil); got != "ok" {
		t.Errorf("Status(nil) = %q", got)
	}
	if got := Status(errors.New("boom")); got != "FAIL" {
		t.Errorf("Status(err) = %q", got)
	}
}

func TestOrNotSet(t *testing.T) {
	withColor(t, false)

	if got := OrNotSet(""); got != "(not set)" {
		t.Errorf("OrNotSet(\"\") = %q", got)
	}
	if got := OrNotSet("3"); got != "3" {
		t.Errorf("OrNotSet(\"3\") = %q", got)
	}
}
