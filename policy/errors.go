// SPDX-License-Identifier: GPL-3.0-or-later

package policy

import "errors"

// ErrNotFound is returned by lookups and removals for an unknown
// policy or tap name — the HTTP control surface maps this to 404.
var ErrNotFound = errors.New("policy: not found")

// ErrAlreadyExists is returned when adding a policy or tap whose name is
// already registered — the HTTP control surface maps this to 409.
var ErrAlreadyExists = errors.New("policy: already exists")
