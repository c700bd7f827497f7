// SPDX-License-Identifier: GPL-3.0-or-later

package dns

import "errors"

// ErrMalformed is the single opaque outcome for every parse failure: out of
// bounds reads, oversized section counts, and invalid name compression all
// collapse to this. Callers decide whether to drop the event or count it as
// filtered; the parser never distinguishes the reason beyond what it logs.
var ErrMalformed = errors.New("dns: malformed message")

// ErrBorrowed is returned by mutators (AddResource/RemoveResource) on a
// Layer built with ParseBorrowed, which does not own its buffer.
var ErrBorrowed = errors.New("dns: layer does not own its buffer")

// ErrNotFound is returned by RemoveResource when the handle is not present.
var ErrNotFound = errors.New("dns: resource not found")
