package helpers

// Ptr returns a pointer to a copy of v, or nil when v is a nil interface.
func Ptr[T any](v T) *T {
	if any(v) == nil {
		return nil
	}
	return &v
}
