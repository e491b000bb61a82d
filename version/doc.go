// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package version purges guest state written by other application versions.

Check runs on every guest request and is a no-op once the guest's durable
namespace carries the running version. A guest that never stored anything
is not written to; Stamp records the version when the guest first stores
state (a successful login). When Check purges, the HTTP layer may
ask ShouldReload, which answers true at most once per browser session:

	cleared, err := m.Check(ctx, durable, session)
	if cleared && m.ShouldReload(ctx, session) {
		http.Redirect(w, r, r.URL.String(), http.StatusSeeOther)
	}
*/
package version
