// SPDX-License-Identifier: BUSL-1.1

package gas

import "fmt"

// NV27DevEnabled gates whether NV27 resolves to the Teep price list.
// It mirrors the reference implementation's `nv27-dev` build feature:
// a network version still under active development is only priced
// when a caller has opted in, so a stray V27 message on a production
// deployment fails loudly instead of silently picking up prices that
// haven't been finalized.
var NV27DevEnabled = false

// Select returns the priced event catalogue in force for the given
// network version. Unlike the teacher's GasCost, which falls back to a
// default and logs on a miss, an unrecognized or not-yet-enabled
// network version is a configuration error the caller must handle, so
// it is returned rather than silently substituted.
func Select(nv NetworkVersion) (*PriceList, error) {
	switch {
	case nv >= NV21 && nv <= NV24:
		return watermelonPrices, nil
	case nv == NV25 || nv == NV26:
		return teepPrices, nil
	case nv == NV27:
		if !NV27DevEnabled {
			return nil, fmt.Errorf("gas: network version %d requires nv27-dev to be enabled", nv)
		}
		return teepPrices, nil
	default:
		return nil, fmt.Errorf("gas: unsupported network version %d", nv)
	}
}
