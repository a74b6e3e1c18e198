// Package preflight provides readiness checks for the filesystem paths
// questionindex writes to.
//
// The run command calls RunAll before touching any store and aborts when a
// check fails; "questionindex check" prints the same results. The state
// directory is only checked when the history ledger is enabled.
package preflight
