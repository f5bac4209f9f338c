// Package eval implements the minimal expression evaluator spec §6/§9
// says the engine may embed directly rather than require the host to
// inject. It backs size expressions, field conditions, and choice-table
// predicates.
//
// Context is the per-invocation scope stack spec §5 and §9 require
// ("a per-invocation scope stack, not a process-global mutable map"):
// it is generalized from the teacher's runtime.EncodingContext
// (runtime/context.go) — same shape (Parents, ArrayIterations,
// Positions, TypeIndices, CompressionDict), renamed to the spec's own
// vocabulary (self/root/prefix) and shared between decode and encode
// instead of being encode-only.
package eval

// ArrayIteration tracks state of an array currently being walked by the
// message driver, used by corresponding<Type>/first<Type>/last<Type>
// selectors (spec.md C: supplemented, grounded on the teacher's
// ArrayIteration).
type ArrayIteration struct {
	Items     []any
	Index     int
	FieldName string
}

// Context is the per-invocation expression-evaluation scope. A fresh
// Context is created per decode/encode call and threaded down; it is
// never shared across concurrent invocations (spec §5).
type Context struct {
	// Parents holds ancestor field-maps for "../field" lookups. The
	// first element is the root object, the last is the immediate
	// parent of the field currently being processed.
	Parents []map[string]any

	// Self is the object whose fields are currently being decoded or
	// encoded (the innermost "self").
	Self map[string]any

	// Root is the outermost object of the whole decode/encode call.
	Root map[string]any

	// Prefix holds the most recently read choice-table prefix value. It
	// is in scope while that choice's conditions are resolved and, since
	// PushSelf copies it, inside the selected alternative's message too.
	Prefix *uint64

	// Vars holds user-registered named variables (host-injected), kept
	// separate from Self/Root/Prefix so user vars never shadow them.
	Vars map[string]any

	ArrayIterations map[string]*ArrayIteration
	Positions       map[string][]int
	TypeIndices     map[string]map[string]int

	// CompressionDict is a generalized back-reference cache: "have we
	// already written this exact wire value, and at what byte offset".
	// No built-in codec forces its use (spec.md C, supplemented from the
	// teacher's EncodingContext.CompressionDict); it is plumbing a
	// descriptor-level converter or a future pointer/back-reference kind
	// can opt into via Remember/RecallOffset.
	CompressionDict map[string]int
}

// NewContext creates a fresh, empty root context.
func NewContext(root map[string]any) *Context {
	return &Context{
		Root:            root,
		Self:            root,
		Vars:            map[string]any{},
		ArrayIterations: map[string]*ArrayIteration{},
		Positions:       map[string][]int{},
		TypeIndices:     map[string]map[string]int{},
		CompressionDict: map[string]int{},
	}
}

// PushSelf returns a child context for a nested object: the current
// Self becomes a parent, and self becomes the new, innermost Self.
// Shared maps (ArrayIterations, Positions, TypeIndices) are carried by
// reference so derived state persists across the whole invocation.
func (c *Context) PushSelf(self map[string]any) *Context {
	parents := make([]map[string]any, len(c.Parents)+1)
	copy(parents, c.Parents)
	parents[len(c.Parents)] = c.Self

	return &Context{
		Parents:         parents,
		Self:            self,
		Root:            c.Root,
		Prefix:          c.Prefix,
		Vars:            c.Vars,
		ArrayIterations: c.ArrayIterations,
		Positions:       c.Positions,
		TypeIndices:     c.TypeIndices,
		CompressionDict: c.CompressionDict,
	}
}

// RecallOffset returns the byte offset previously recorded under key, if
// any (back-reference compression lookup).
func (c *Context) RecallOffset(key string) (int, bool) {
	off, ok := c.CompressionDict[key]
	return off, ok
}

// Remember records the byte offset at which key's wire value was
// written, for a later RecallOffset to find.
func (c *Context) Remember(key string, offset int) {
	c.CompressionDict[key] = offset
}

// WithPrefix returns a copy of c with Prefix set, scoped to choice-table
// condition evaluation (spec §4.5).
func (c *Context) WithPrefix(prefix uint64) *Context {
	cp := *c
	cp.Prefix = &prefix
	return &cp
}

// ParentField returns the ancestor object levelsUp levels above Self
// (1 is the immediate parent), backing the "../field" reference form.
func (c *Context) ParentField(levelsUp int) (map[string]any, bool) {
	idx := len(c.Parents) - levelsUp
	if idx < 0 || idx >= len(c.Parents) {
		return nil, false
	}
	return c.Parents[idx], true
}

// FindField searches Self, then parents from innermost to outermost,
// for fieldName.
func (c *Context) FindField(fieldName string) (any, bool) {
	if c.Self != nil {
		if v, ok := c.Self[fieldName]; ok {
			return v, true
		}
	}
	for i := len(c.Parents) - 1; i >= 0; i-- {
		if v, ok := c.Parents[i][fieldName]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetArrayIteration records the in-progress array iteration for
// fieldName, used by corresponding<Type> style cross-array lookups.
func (c *Context) SetArrayIteration(fieldName string, items []any, index int) {
	c.ArrayIterations[fieldName] = &ArrayIteration{Items: items, Index: index, FieldName: fieldName}
}

// TrackPosition records the byte position at which an array/type
// combination's element was written or read (spec.md C: position_of).
// Called by arrayObjectCodec for every element it decodes/encodes,
// keyed by "<arrayField>_<typeName>".
func (c *Context) TrackPosition(key string, position int) {
	c.Positions[key] = append(c.Positions[key], position)
}

// RecordTypeOccurrence notes that the element at index in arrayField
// decoded/encoded as typeName, so a later corresponding<Type>(arrayField)
// can resolve to it (spec.md C). Called by arrayObjectCodec for every
// element it decodes/encodes.
func (c *Context) RecordTypeOccurrence(arrayField, typeName string, index int) {
	if c.TypeIndices[arrayField] == nil {
		c.TypeIndices[arrayField] = map[string]int{}
	}
	c.TypeIndices[arrayField][typeName] = index
}

// TypeIndex returns the array index of the most recent element of
// typeName seen in arrayField, if any.
func (c *Context) TypeIndex(arrayField, typeName string) (int, bool) {
	idx, ok := c.TypeIndices[arrayField][typeName]
	return idx, ok
}
