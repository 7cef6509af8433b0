// Package jsonsink defines a push-style serialization target (Sink) and a
// streaming adapter over jsoniter, so that the containers in pkg/primcol can
// emit JSON without materializing an intermediate tree or reflecting over
// their internal layout.
package jsonsink

// Sink receives a well-formed sequence of structural and value events,
// mirroring the method set a streaming JSON encoder naturally exposes.
// Callers must balance Enter/Exit calls and call Name only directly before
// a value (or container) inside an object.
type Sink interface {
	EnterObject()
	ExitObject()
	EnterArray()
	ExitArray()
	Name(name string)
	ValueString(v string)
	ValueInt64(v int64)
	ValueUint64(v uint64)
	ValueFloat64(v float64)
	ValueBool(v bool)
	ValueNull()
	// Preallocate hints the number of elements about to be written to the
	// currently open array or object, for sinks that can use it to size a
	// buffer up front. Adapters for which this is meaningless are free to
	// no-op it.
	Preallocate(n int)
}
