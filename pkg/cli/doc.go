// Package cli implements the pcbctl command-line interface.
//
// # Commands
//
// attributes - validate a customer's board attributes:
//
//	pcbctl attributes --attributes board.yaml [--options offered.yaml | --source URI]
//
// offer - check offered options against a vendor's external options, and
// optionally publish them:
//
//	pcbctl offer --offered offered.yaml [--external vendor.yaml | --source URI] [--vendor NAME] [--publish]
//
// options - print the latest offered or external snapshot:
//
//	pcbctl options [--source URI] [--kind offered|external] [--vendor NAME] [--verify]
//
// record - record new external options for a vendor:
//
//	pcbctl record --vendor NAME --options vendor.yaml --source URI
//
// vendors - list vendors with external options:
//
//	pcbctl vendors [--source URI]
//
// serve - run the API server (see package api).
//
// # Snapshot Sources
//
// --source accepts "embedded" (the built-in defaults, read-only), cm://NAMESPACE
// for ConfigMaps in a Kubernetes namespace, or the path of a snapshot file.
// The default comes from PCBSHOP_OPTIONS_SOURCE.
//
// # Output
//
// Results are written to --output (stdout by default) in --format yaml, json
// or table. The attributes and offer commands write a ValidationReport; with
// --fail-on-error they exit non-zero when the report is invalid.
package cli
