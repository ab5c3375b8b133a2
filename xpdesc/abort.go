package xpdesc

import "github.com/grailbio/base/log"

// AbortFunc is the single choke point spec.md §7's "propagate to the
// rank's abort handler" wiring targets. The library itself never calls
// os.Exit (its only panics are argument checks such as ivec's dimension
// checks, plus the -tags amrx_debug assertions); a process
// driver replaces AbortFunc with whatever its deployment needs (an MPI
// abort, a supervisor signal, ...). The default logs and exits the
// process, matching the teacher's log.Fatalf convention.
var AbortFunc = func(err error) {
	log.Fatalf("amrx: fatal: %v", err)
}

// Abort reports err through AbortFunc. Callers at the outer layer (not
// the exchange/fluxreg/ebutil core, which only ever returns errors) use
// this once they have decided an error is unrecoverable.
func Abort(err error) {
	AbortFunc(err)
}
