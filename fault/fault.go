// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// error instances
//
// Provides a single instance of errors to allow easy comparison
package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type ProofError GenericError

// common errors - keep in alphabetic order
var (
	ErrAddressNameRequired = InvalidError("address name is required")
	ErrCorruptedRecord     = ProcessError("stored record is corrupted")
	ErrDatabaseClosed      = ProcessError("database is closed")
	ErrDatabaseReadOnly    = InvalidError("database is read only")
	ErrForkConsumed        = InvalidError("fork was already converted to a patch")
	ErrIndexOutOfRange     = InvalidError("index is out of range")
	ErrInvalidDBVersion    = ProcessError("database version is incompatible")
	ErrInvalidKeyLength    = InvalidError("key length is invalid")
	ErrInvalidRange        = InvalidError("range is invalid")
	ErrPatchConsumed       = InvalidError("patch was already merged")
	ErrReadOnlyIndex       = InvalidError("index is read only")

	// proof verification failures - always recoverable, reject the proof
	ErrProofExtraHash      = ProofError("proof contains an unused hash")
	ErrProofMalformed      = ProofError("proof structure is malformed")
	ErrProofMissingSibling = ProofError("proof is missing a sibling hash")
	ErrProofRootMismatch   = ProofError("recomputed root hash does not match")
	ErrProofValueMismatch  = ProofError("proof value does not match its hash")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e ProofError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrProof(e error) bool    { _, ok := e.(ProofError); return ok }
