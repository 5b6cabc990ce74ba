package itemstore

import "fmt"

// CorruptStateError indicates the persisted store exists but cannot be
// read or parsed.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("item store %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// StorageError indicates the store could not be written. The previous
// file at Path, if any, is left untouched.
type StorageError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("item store %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
