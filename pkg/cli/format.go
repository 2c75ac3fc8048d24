// Package cli provides shared formatting helpers for the hsnaddr CLI.
package cli

import "os"

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string {
	return wrap("\033[32m", s)
}

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string {
	return wrap("\033[33m", s)
}

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string {
	return wrap("\033[31m", s)
}

// Bold wraps s in ANSI bold. Returns s unchanged when NO_COLOR is set.
func Bold(s string) string {
	return wrap("\033[1m", s)
}

func wrap(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Status renders a green "ok" or a red "FAIL".
func Status(err error) string {
	if err != nil {
		return Red("FAIL")
	}
	return Green("ok")
}

// OrNotSet returns v, or "(not set)" when v is empty.
func OrNotSet(v string) string {
	if v == "" {
		return Yellow("(not set)")
	}
	return v
}
