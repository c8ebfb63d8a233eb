// Package jsonpath implements the JSONPath subset the filter component
// evaluates against a fetched response body: "$" (root), ".field" /
// "['field', ...]" (member access, single or union), "[n, ...]" (index,
// single or union), "[*]" (wildcard), "[a:b]" (slice) and ".." (recursive
// descent). It operates on the ordered decode tree produced by
// github.com/nspcc-dev/go-ordered-json so that repeated keys and key
// order are preserved through a filter round-trip.
package jsonpath

import (
	"bytes"

	json "github.com/nspcc-dev/go-ordered-json"
)

// maxNestingDepth bounds recursive descent so a pathological document or
// path cannot blow the stack.
const maxNestingDepth = 64

// maxResultBytes bounds the encoded size of an intermediate match while
// walking. It mirrors chain.MaxResultSize; the two are kept in sync by
// hand since jsonpath must not import the chain package.
const maxResultBytes = 0xffff

type nodeType int

const (
	nodeAny nodeType = iota
	nodeIndex
	nodeIndexRecursive
	nodeUnion
	nodeSlice
)

type node struct {
	typ   nodeType
	value interface{}
}

type pathTokenType int

const (
	pathInvalid pathTokenType = iota
	pathRoot
	pathDot
	pathLeftBracket
	pathRightBracket
	pathAsterisk
	pathComma
	pathColon
	pathString
	pathIdentifier
	pathNumber
)

// pathParser holds both the path-string scanning position and the
// scratch buffer used to size-check matches while applying the parsed
// path to a decoded document.
type pathParser struct {
	s     string
	i     int
	depth int

	buf *bytes.Buffer
	enc *json.Encoder
}

// Get evaluates path against value, returning the matched nodes and
// whether the path was syntactically valid and matched at least one of
// them. value should be the tree produced by a go-ordered-json decode
// (json.OrderedObject for objects, []interface{} for arrays).
func Get(path string, value interface{}) ([]interface{}, bool) {
	p := &pathParser{s: path, depth: maxNestingDepth, buf: new(bytes.Buffer)}
	p.enc = json.NewEncoder(p.buf)

	nodes, ok := p.parse()
	if !ok {
		return nil, false
	}
	res, ok := p.apply(nodes, value)
	if !ok || len(res) == 0 {
		return nil, false
	}
	return res, true
}
