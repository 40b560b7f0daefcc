// Package stdx carries tiny helpers for code paths where an error is a
// programming mistake rather than a runtime condition.
package stdx

// Must0 panics if the provided error is not nil. Use it only for
// invariants established at startup.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 returns v when err is nil and panics otherwise.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Must2 returns both values when err is nil and panics otherwise.
func Must2[T any, V any](t T, v V, err error) (T, V) {
	if err != nil {
		panic(err)
	}
	return t, v
}
