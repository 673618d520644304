// Package job defines the Job entity and its lifecycle states.
//
// A Job binds a user-supplied shell command to delivery state: the
// current State, the attempt counter, the retry budget and the
// scheduling gate (NextRunAt). Jobs are persisted by the store and
// mutated only through transactional store operations; values of this
// package are snapshots.
//
// JSON encoding of a Job renders timestamps as integer Unix seconds,
// matching the CLI's input and output formats.
package job
