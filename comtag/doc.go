// Package comtag builds and caches the communication schedules
// (CopyComTag lists) the exchange engine executes: FBPlan for
// fill-boundary (ghost-cell) exchanges and CPCPlan for general
// parallel-copy between two FabArrays. Plans are pure functions of
// their structural inputs and are cached by a bounded LRU keyed on
// those inputs, since every rank must agree on the same plan without
// communicating about it.
package comtag
