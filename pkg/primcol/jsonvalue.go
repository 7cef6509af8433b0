package primcol

import (
	"fmt"

	"github.com/grafana/primcol/pkg/jsonsink"
)

// writeTypedValue dispatches v to the Sink method matching its dynamic
// type, per spec.md §6.2's "value(v) (overloaded per type)" — mirroring
// the type-switch-to-typed-field idiom the teacher uses when translating
// one tagged value representation into another (see
// cmd/tempo-query/tempo/otlp.go's toOtlpAnyValue). Types the Sink has no
// direct method for fall back to their default string formatting.
func writeTypedValue(sink jsonsink.Sink, v any) {
	switch x := v.(type) {
	case string:
		sink.ValueString(x)
	case bool:
		sink.ValueBool(x)
	case int:
		sink.ValueInt64(int64(x))
	case int8:
		sink.ValueInt64(int64(x))
	case int16:
		sink.ValueInt64(int64(x))
	case int32:
		sink.ValueInt64(int64(x))
	case int64:
		sink.ValueInt64(x)
	case uint:
		sink.ValueUint64(uint64(x))
	case uint8:
		sink.ValueUint64(uint64(x))
	case uint16:
		sink.ValueUint64(uint64(x))
	case uint32:
		sink.ValueUint64(uint64(x))
	case uint64:
		sink.ValueUint64(x)
	case float32:
		sink.ValueFloat64(float64(x))
	case float64:
		sink.ValueFloat64(x)
	default:
		sink.ValueString(fmt.Sprintf("%v", x))
	}
}

// isStringKeyed reports whether K's zero value is a string, which selects
// object-shaped map emission over array-of-{Key,Value} emission per
// spec.md §6.2.
func isStringKeyed[K comparable]() bool {
	var zero K
	_, ok := any(zero).(string)
	return ok
}
