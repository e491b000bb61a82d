// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the
catalog, the remote endpoint and the admin API.

# Domain Types

Shared by the controller, the persisted store and the remote endpoint:

  - Selection: productId + variantId pair
  - SelectedItem: product snapshot with the chosen variant
  - Application: a submission as the endpoint reports it
  - ApplicationStatus: answer to ?action=status
  - SubmissionPayload: body delivered by the submission pipeline
  - SubmitEnvelope: the endpoint's { success, error } answer

SubmissionPayload.Compact drops the image and previous selection so the
payload fits in a query string.

# Request Types

  - SelectRequest: productId, variantId
  - CategoryRequest: category
  - SetEndpointRequest: url

# Response Types

  - StateResponse, CardState: session state for API clients
  - SubmitResponse: isChange, confirmed, strategy
  - ConfigResponse, ProbeResponse, DiagnoseResponse, ResetGuestResponse
  - ErrorResponse: error, message

# Constants

Footer actions:

	ActionNew     = "new"
	ActionChange  = "change"
	ActionApplied = "applied"

Category filter:

	CategoryAll = "all"
*/
package models
