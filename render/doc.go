// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package render draws the guest pages from a selection.View. Templates are
// embedded; product descriptions pass through a bluemonday UGC policy.
package render
