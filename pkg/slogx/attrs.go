// Package slogx holds small slog attribute helpers shared across the
// platform.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr with the key "error" and the error's
// message as the value.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Provider returns a slog.Attr naming the data provider serving a call.
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// Model returns a slog.Attr naming the model a call is bound to.
func Model(name string) slog.Attr {
	return slog.String("model", name)
}

// Route returns a slog.Attr with the command path of a call.
func Route(path string) slog.Attr {
	return slog.String("route", path)
}

// Stringer creates a slog.Attr with the provided key and the string
// representation of the given fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}
