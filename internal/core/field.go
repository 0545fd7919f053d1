package core

import (
	"encoding/hex"
	"strconv"
	"time"
)

// Kind tells a sink how to interpret Field.Value.
type Kind uint8

const (
	KindNone   Kind = iota // group or marker, Value is nil
	KindUint               // uint64
	KindString             // string
	KindBytes              // []byte
	KindTime               // time.Time
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	default:
		return "none"
	}
}

// Field is one decoded item. Start and Length index into the buffer that was decoded;
// a field never references the buffer itself.
type Field struct {
	Name     string
	Kind     Kind
	Value    any
	Text     string // Display form
	Start    int
	Length   int
	Err      error // Field-local diagnostic, nil when the field decoded cleanly
	Children []Field
}

// End returns the offset just past the field.
func (f Field) End() int { return f.Start + f.Length }

// WithErr returns a copy of f carrying err.
func (f Field) WithErr(err error) Field {
	f.Err = err
	return f
}

// WithText returns a copy of f with a different display form.
func (f Field) WithText(text string) Field {
	f.Text = text
	return f
}

func NewUint(name string, start, length int, v uint64) Field {
	return Field{Name: name, Kind: KindUint, Value: v, Text: strconv.FormatUint(v, 10), Start: start, Length: length}
}

// NewEnum is a numeric field whose display form is a table lookup.
func NewEnum(name string, start, length int, v uint64, text string) Field {
	return Field{Name: name, Kind: KindUint, Value: v, Text: text, Start: start, Length: length}
}

func NewString(name string, start, length int, s string) Field {
	return Field{Name: name, Kind: KindString, Value: s, Text: s, Start: start, Length: length}
}

func NewBytes(name string, start, length int, b []byte) Field {
	c := append([]byte(nil), b...)
	return Field{Name: name, Kind: KindBytes, Value: c, Text: hex.EncodeToString(c), Start: start, Length: length}
}

func NewTime(name string, start, length int, t time.Time) Field {
	t = t.UTC()
	return Field{Name: name, Kind: KindTime, Value: t, Text: t.Format(time.RFC3339), Start: start, Length: length}
}

// NewGroup starts a field that owns children; its Length is set by Sink.EndGroup.
func NewGroup(name string, start int, text string) Field {
	return Field{Name: name, Kind: KindNone, Text: text, Start: start}
}

// GroupHandle identifies an open group inside a Sink.
type GroupHandle int

// Sink receives decoded fields in buffer order. Groups nest: fields emitted between
// BeginGroup and the matching EndGroup belong to that group.
type Sink interface {
	Emit(f Field)
	BeginGroup(f Field) GroupHandle
	EndGroup(h GroupHandle, end int)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Field)                   {}
func (discard) BeginGroup(Field) GroupHandle { return 0 }
func (discard) EndGroup(GroupHandle, int)    {}

// EmitField emits f to sink, replaying its children as a group.
func EmitField(sink Sink, f Field) {
	if len(f.Children) == 0 {
		sink.Emit(f)
		return
	}
	kids := f.Children
	f.Children = nil
	h := sink.BeginGroup(f)
	for _, k := range kids {
		EmitField(sink, k)
	}
	sink.EndGroup(h, f.End())
}

// Tree is a Sink that collects fields into an arena and rebuilds the nesting on demand.
// The zero value is ready to use.
type Tree struct {
	nodes   []Field
	parents []int
	open    int // index of the innermost open group, -1 at the root
	started bool
}

func (t *Tree) init() {
	if !t.started {
		t.open = -1
		t.started = true
	}
}

func (t *Tree) Emit(f Field) {
	t.init()
	f.Children = nil
	t.nodes = append(t.nodes, f)
	t.parents = append(t.parents, t.open)
}

func (t *Tree) BeginGroup(f Field) GroupHandle {
	t.Emit(f)
	t.open = len(t.nodes) - 1
	return GroupHandle(t.open)
}

func (t *Tree) EndGroup(h GroupHandle, end int) {
	t.init()
	i := int(h)
	if i < 0 || i >= len(t.nodes) {
		return
	}
	t.nodes[i].Length = end - t.nodes[i].Start
	t.open = t.parents[i]
}

// Len returns the number of fields collected, groups included.
func (t *Tree) Len() int { return len(t.nodes) }

// Fields returns the top-level fields with children attached.
func (t *Tree) Fields() []Field {
	kids := make([][]int, len(t.nodes))
	var roots []int
	for i, p := range t.parents {
		if p < 0 {
			roots = append(roots, i)
		} else {
			kids[p] = append(kids[p], i)
		}
	}
	var build func(i int) Field
	build = func(i int) Field {
		f := t.nodes[i]
		if len(kids[i]) > 0 {
			f.Children = make([]Field, 0, len(kids[i]))
			for _, k := range kids[i] {
				f.Children = append(f.Children, build(k))
			}
		}
		return f
	}
	out := make([]Field, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}

// Find returns the first field named name in emission order.
func (t *Tree) Find(name string) (Field, bool) {
	for _, f := range t.nodes {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// All returns every field named name in emission order, without children.
func (t *Tree) All(name string) []Field {
	var out []Field
	for _, f := range t.nodes {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// Diagnostics returns the fields that carry a field-local error.
func (t *Tree) Diagnostics() []Field {
	var out []Field
	for _, f := range t.nodes {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Reset empties the tree for reuse.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.parents = t.parents[:0]
	t.open = -1
	t.started = true
}
