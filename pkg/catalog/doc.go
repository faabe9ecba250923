// Package catalog connects the option validators to the snapshot store and
// exposes them over HTTP.
//
// Workflows:
//
//   - ValidateAttributes checks a customer's board against the latest offer.
//   - PublishOffered checks a new offer against the vendor's latest external
//     options and publishes it only when every option is supported.
//   - CurrentOptions returns the latest offer after revalidating it, so a
//     vendor change that invalidates the offer takes it off the shelf.
//   - RecordExternal stores a new set of vendor options.
//
// Routes (see Handlers):
//
//	POST /v1/boards/validate
//	GET  /v1/options
//	PUT  /v1/options
//	GET  /v1/vendors
//	GET  /v1/vendors/{vendor}/options
//	PUT  /v1/vendors/{vendor}/options
//
// Customer-facing reads never expose why an offer is unavailable; they
// answer 503 with MaintenanceMessage instead.
package catalog
