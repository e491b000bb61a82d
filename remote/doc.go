// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package remote talks to the spreadsheet endpoint that records applications.

# Status

Client.CheckStatus issues GET ?action=status and never fails: an
unreachable endpoint, a non-2xx answer or a malformed body all read as
"no application".

# Submission

Pipeline.Submit walks an ordered list of strategies:

  - direct: JSON POST, requires {"success": true}
  - form:   form POST action=submit&data=<json>, answer not read
  - query:  GET ?action=submit&data=<compact json>, answer not read

The first success wins. Unconfirmed deliveries (form, query) are reported
as success with Result.Confirmed false. When every strategy fails, Submit
returns a *SubmissionError listing each reason.

The MockEndpoint value selects a single Mock strategy for development.
*/
package remote
