// Package runs exposes reconciliation runs over HTTP.
//
// A run compares a source dataset against a target dataset using the
// core/recon engine. Runs execute asynchronously: launching one returns
// immediately with a run id, and the registry keeps the run's state,
// progress and final report in memory for the life of the process.
//
// Only one run may be active at a time; launching while another run is in
// flight yields HTTP 409.
//
// # Components
//
//   - Service: the run registry; launches engines and tracks lifecycle state.
//   - Handler: exposes the HTTP endpoints.
//   - Loader: registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST   /runs            : Launch a run (202, or 409 if one is active).
//   - GET    /runs            : List all runs in launch order.
//   - GET    /runs/:id        : Get the state and progress of a run.
//   - GET    /runs/:id/report : Get the report of a finished run (404 until then).
//   - DELETE /runs/:id        : Cancel an in-flight run.
package runs
