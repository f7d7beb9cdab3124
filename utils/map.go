package utils

// LookupCopy returns a copy of the value at key in m. The second result is
// false when the key is absent or the stored pointer is nil. The caller
// receives a detached value, safe to use after any lock is released.
func LookupCopy[T any](m map[string]*T, key string) (T, bool) {
	v := m[key]
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}
