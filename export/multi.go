// SPDX-License-Identifier: MIT

package export

import (
	"errors"

	"github.com/katalvlaran/rdiff/reaction"
)

// Multi fans every snapshot out to several observers, in order. Nil
// observers are skipped.
type Multi []reaction.Observer

// Observe calls every observer, even after one fails, and joins the errors.
func (m Multi) Observe(snap reaction.Snapshot) error {
	var errs []error
	for _, o := range m {
		if o == nil {
			continue
		}
		if err := o.Observe(snap); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
