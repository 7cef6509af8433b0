package jsonsink

import jsoniter "github.com/json-iterator/go"

// StreamSink adapts a jsoniter.Stream to Sink, inserting commas between
// array elements and object pairs itself since Stream's low-level Write*
// methods don't track nesting.
type StreamSink struct {
	w             *jsoniter.Stream
	started       []bool
	justWroteName bool
}

// NewStreamSink wraps an existing jsoniter stream. The caller owns the
// stream's lifecycle (Flush/Reset).
func NewStreamSink(w *jsoniter.Stream) *StreamSink {
	return &StreamSink{w: w}
}

func (s *StreamSink) writeValuePrefix() {
	if s.justWroteName {
		s.justWroteName = false
		return
	}
	if len(s.started) == 0 {
		return
	}
	top := len(s.started) - 1
	if s.started[top] {
		s.w.WriteMore()
	}
	s.started[top] = true
}

func (s *StreamSink) EnterObject() {
	s.writeValuePrefix()
	s.w.WriteObjectStart()
	s.started = append(s.started, false)
}

func (s *StreamSink) ExitObject() {
	s.w.WriteObjectEnd()
	s.started = s.started[:len(s.started)-1]
}

func (s *StreamSink) EnterArray() {
	s.writeValuePrefix()
	s.w.WriteArrayStart()
	s.started = append(s.started, false)
}

func (s *StreamSink) ExitArray() {
	s.w.WriteArrayEnd()
	s.started = s.started[:len(s.started)-1]
}

func (s *StreamSink) Name(name string) {
	s.writeValuePrefix()
	s.w.WriteObjectField(name)
	s.justWroteName = true
}

func (s *StreamSink) ValueString(v string)   { s.writeValuePrefix(); s.w.WriteString(v) }
func (s *StreamSink) ValueInt64(v int64)     { s.writeValuePrefix(); s.w.WriteInt64(v) }
func (s *StreamSink) ValueUint64(v uint64)   { s.writeValuePrefix(); s.w.WriteUint64(v) }
func (s *StreamSink) ValueFloat64(v float64) { s.writeValuePrefix(); s.w.WriteFloat64(v) }
func (s *StreamSink) ValueBool(v bool)       { s.writeValuePrefix(); s.w.WriteBool(v) }
func (s *StreamSink) ValueNull()             { s.writeValuePrefix(); s.w.WriteNil() }

// Preallocate is a no-op: jsoniter.Stream has no element-count reservation
// API to forward this hint to.
func (s *StreamSink) Preallocate(int) {}
