package warehouse

import "fmt"

// ReferentialIntegrityError names a row whose foreign key has no parent.
type ReferentialIntegrityError struct {
	Table    string
	Column   string
	Key      string
	RefTable string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("referential integrity: %s.%s=%q not present in %s", e.Table, e.Column, e.Key, e.RefTable)
}

// LoadError is a batch-level failure; the batch was rolled back.
type LoadError struct {
	Table string
	Rows  int
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%d rows): %v", e.Table, e.Rows, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
