// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the error kinds surfaced by the yamabiko core,
// per the error handling design in the specification.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel kinds. Compare with errors.Is; all wrapped errors returned by
// this module unwrap to one of these.
var (
	ErrNotFound             = fmt.Errorf("yamabiko: key not found")
	ErrFormatMismatch       = fmt.Errorf("yamabiko: format mismatch")
	ErrSerializationFailed  = fmt.Errorf("yamabiko: serialization failed")
	ErrDeserializationFailed = fmt.Errorf("yamabiko: deserialization failed")
	ErrInvalidKey           = fmt.Errorf("yamabiko: invalid key")
	ErrTransactionNotFound  = fmt.Errorf("yamabiko: transaction not found")
	ErrTransactionConflict  = fmt.Errorf("yamabiko: transaction conflict")
	ErrIndexUnknown         = fmt.Errorf("yamabiko: index unknown")
	ErrIndexAlreadyExists   = fmt.Errorf("yamabiko: index already exists")
	ErrObjectStore          = fmt.Errorf("yamabiko: object store error")
	ErrPushFailed           = fmt.Errorf("yamabiko: push failed")
)

// Wrap attaches msg as context to cause and marks it as one of the
// sentinel kinds above, so callers can still errors.Is(err, kind).
func Wrap(kind error, cause error, msg string) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return &wrapped{kind: kind, cause: pkgerrors.Wrap(cause, msg)}
}

type wrapped struct {
	kind  error
	cause error
}

func (w *wrapped) Error() string { return w.cause.Error() }
func (w *wrapped) Unwrap() error { return w.kind }
func (w *wrapped) Cause() error  { return w.cause }

// PushFailedKind enumerates why a push to a remote did not succeed.
type PushFailedKind int

const (
	PushFailedAuth PushFailedKind = iota
	PushFailedNetwork
	PushFailedNonFastForward
)

func (k PushFailedKind) String() string {
	switch k {
	case PushFailedAuth:
		return "auth"
	case PushFailedNetwork:
		return "network"
	case PushFailedNonFastForward:
		return "non-fast-forward"
	default:
		return "unknown"
	}
}

// PushError carries the remote name and kind alongside the underlying cause.
type PushError struct {
	Remote string
	Kind   PushFailedKind
	Cause  error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("yamabiko: push to %q failed (%s): %v", e.Remote, e.Kind, e.Cause)
}

func (e *PushError) Unwrap() error { return ErrPushFailed }

// ObjectStoreError wraps a failure surfaced by the underlying git-compatible
// object database (I/O, corrupt object, ref update race).
type ObjectStoreError struct {
	Op    string
	Cause error
}

func (e *ObjectStoreError) Error() string {
	return fmt.Sprintf("yamabiko: object store error during %s: %v", e.Op, e.Cause)
}

func (e *ObjectStoreError) Unwrap() error { return ErrObjectStore }

// WrapObjectStore is a convenience constructor used throughout the adapter.
func WrapObjectStore(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ObjectStoreError{Op: op, Cause: pkgerrors.WithMessage(cause, op)}
}
