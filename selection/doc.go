// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package selection drives a guest's gift choice for one browser session.

# Lifecycle

A Controller moves through these states:

	Uninitialized -> StatusChecking -> CatalogLoading -> Ready
	Ready -> Submitting -> Submitted | Ready

Start asks the endpoint whether the guest already applied, loads the
catalog and restores the initial selection. An application known to the
endpoint wins over the stored selection; anything the catalog does not
know is dropped. A catalog failure is permanent for the controller.

Select and SetCategory only work once the controller is Ready (or
Submitted). Confirm hands the payload to a Submitter and releases the
lock while the request is in flight; other calls see ErrBusy until it
returns.

# Rendering

View turns the state into the cards, footer and prompts a page needs.
The footer's action is "new" with no prior application, "change" when
the selection differs from it and "applied" (disabled) otherwise.

Registry keeps a controller per browser session and drops the ones left
idle longer than its idle duration.
*/
package selection
