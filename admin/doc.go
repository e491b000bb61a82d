// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admin implements the operator actions: showing the resolved
configuration, setting or clearing the endpoint override, probing the
endpoint, a combined diagnosis and resetting one guest's stored state.

The HTTP admin API (handlers.AdminHandler) and the celebration-admin
command both drive a Console, so the two stay in step.
*/
package admin
