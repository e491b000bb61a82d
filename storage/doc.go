// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storage keeps a guest's selection in their durable namespace as a
// schema-versioned JSON record. Records from another schema version are
// deleted on sight and never merged.
package storage
