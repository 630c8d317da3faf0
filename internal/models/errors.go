package models

import "fmt"

// RemoteFetchError covers listing and download failures against the file repository
type RemoteFetchError struct {
	Op     string
	FileID string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.FileID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.FileID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// DeliveryError wraps a mail submission failure. Error returns the
// service's text unmodified.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

// SelectionError is returned when a button token does not match the last listing
type SelectionError struct {
	Token string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection %q does not match any listed file", e.Token)
}
