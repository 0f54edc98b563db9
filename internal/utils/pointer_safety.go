package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty returns nil for a nil or empty string, otherwise the value.
func NonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return Ptr(*v)
}
