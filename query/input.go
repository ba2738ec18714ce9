package query

// Input is what a command handler receives: either text the user typed or
// a query that was already structured (e.g. recovered from a display).
// It is resolved to a Query once, at the boundary, before reaching code that
// only understands Query.
type Input interface {
	isInput()
}

// RawText is unparsed query text.
type RawText string

// Structured wraps an already-built Query.
type Structured struct {
	Query Query
}

func (RawText) isInput()    {}
func (Structured) isInput() {}
