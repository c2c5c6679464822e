package broker

type providerNotFoundError struct{ name string }

func (e providerNotFoundError) Error() string { return "provider not found: " + e.name }

// ErrProviderNotFound returns the error used when a named provider is not
// configured or not enabled.
func ErrProviderNotFound(name string) error { return providerNotFoundError{name: name} }

// IsProviderNotFound reports whether err indicates an unknown provider name.
func IsProviderNotFound(err error) bool {
	_, ok := err.(providerNotFoundError)
	return ok
}

// tooBusyError signals that no admission slot was free in time.
type tooBusyError struct{ name string }

func (e tooBusyError) Error() string { return "too busy: " + e.name }

// IsTooBusy reports whether err indicates local backpressure.
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}
