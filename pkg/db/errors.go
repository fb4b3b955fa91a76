package db

import "fmt"

// StorageUnavailableError wraps a failure of the storage backend
type StorageUnavailableError struct {
	Op    string // "read" or "append"
	Table string
	Err   error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() comparison for StorageUnavailableError
func (e *StorageUnavailableError) Is(target error) bool {
	_, ok := target.(*StorageUnavailableError)
	return ok
}

// Unavailable wraps err as a StorageUnavailableError, leaving nil and already
// wrapped errors untouched
func Unavailable(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*StorageUnavailableError); ok {
		return err
	}
	return &StorageUnavailableError{Op: op, Table: table, Err: err}
}
