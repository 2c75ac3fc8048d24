package logaddr

import (
	"errors"
	"testing"
)

func TestParseSwitchClass(t *testing.T) {
	tests := []struct {
		in      string
		want    SwitchClass
		wantErr bool
	}{
		{in: "0", want: Class0},
		{in: "2", want: Class2},
		{in: "class1", want: Class1},
		{in: "Class4", want: Class4},
		{in: " 3 ", want: Class3},
		{in: "5", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "mountain", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSwitchClass(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSwitchClass(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnrecognizedClass) {
					t.Errorf("error should wrap ErrUnrecognizedClass: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseSwitchClass(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSwitchClassString(t *testing.T) {
	if got := Class2.String(); got != "class2" {
		t.Errorf("Class2.String() = %q", got)
	}
	if got := SwitchClass(7).String(); got != "class(7)" {
		t.Errorf("SwitchClass(7).String() = %q", got)
	}
}

func TestHasFallback(t *testing.T) {
	want := map[SwitchClass]bool{
		Class0: false,
		Class1: false,
		Class2: true,
		Class3: true,
		Class4: true,
	}
	for _, c := range AllClasses() {
		if got := c.HasFallback(); got != want[c] {
			t.Errorf("%s.HasFallback() = %v, want %v", c, got, want[c])
		}
	}
	if SwitchClass(5).HasFallback() {
		t.Error("undefined class should not report a fallback")
	}
}
