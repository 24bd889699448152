// Package report renders reconciliation results for humans and retains them
// for audit.
//
// Render produces the plain-text summary printed by the CLI; Archive uploads
// the JSON form to bucket storage under reports/<run-id>.json. Both operate
// on the value the engine returns, so rendering never reaches back into the
// staging store.
package report
