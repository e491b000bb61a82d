// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package admincli implements the celebration-admin command on top of
// admin.Console. Each command opens the database named by --db, resolves
// the configuration the way the server does and closes everything again.
//
//	celebration-admin endpoint set https://script.google.com/macros/s/<id>/exec
//	celebration-admin config show --format json
//	celebration-admin test-connection --post
//	celebration-admin cache clear --guest <uuid>
package admincli
