package jsonpath

import "strconv"

// parse turns the path string into a flat node list apply walks in
// order. A path must start with the root token; everything after it is
// a sequence of dotted member accesses, ".." recursive descents, and
// bracketed selectors.
func (p *pathParser) parse() ([]node, bool) {
	if typ, _ := p.nextToken(); typ != pathRoot {
		return nil, false
	}

	var nodes []node
	for p.i < len(p.s) {
		typ, val := p.nextToken()
		switch typ {
		case pathDot:
			n, ok := p.parseDotted()
			if !ok {
				return nil, false
			}
			nodes = append(nodes, n)
		case pathLeftBracket:
			n, ok := p.parseBracket()
			if !ok {
				return nil, false
			}
			nodes = append(nodes, n)
		default:
			_ = val
			return nil, false
		}
	}
	return nodes, true
}

func (p *pathParser) parseDotted() (node, bool) {
	typ, val := p.nextToken()
	switch typ {
	case pathAsterisk:
		return node{typ: nodeAny}, true
	case pathDot:
		typ2, name := p.nextToken()
		if typ2 != pathIdentifier {
			return node{}, false
		}
		return node{typ: nodeIndexRecursive, value: name}, true
	case pathIdentifier:
		return node{typ: nodeIndex, value: val}, true
	default:
		return node{}, false
	}
}

func (p *pathParser) parseBracket() (node, bool) {
	typ, val := p.nextToken()
	switch typ {
	case pathAsterisk:
		if t, _ := p.nextToken(); t != pathRightBracket {
			return node{}, false
		}
		return node{typ: nodeAny}, true
	case pathString:
		names := []string{unquote(val)}
		for {
			t, v := p.nextToken()
			switch t {
			case pathRightBracket:
				return unionOrIndex(names), true
			case pathComma:
				t2, v2 := p.nextToken()
				if t2 != pathString {
					return node{}, false
				}
				names = append(names, unquote(v2))
			default:
				_ = v
				return node{}, false
			}
		}
	case pathNumber:
		first, convErr := strconv.Atoi(val)
		if convErr != nil {
			return node{}, false
		}
		return p.parseBracketAfterNumber(first)
	case pathColon:
		// slice with an omitted start, e.g. "[:2]".
		t, v := p.nextToken()
		switch t {
		case pathRightBracket:
			return node{typ: nodeSlice, value: [2]int{0, 0}}, true
		case pathNumber:
			end, convErr := strconv.Atoi(v)
			if convErr != nil {
				return node{}, false
			}
			if t2, _ := p.nextToken(); t2 != pathRightBracket {
				return node{}, false
			}
			return node{typ: nodeSlice, value: [2]int{0, end}}, true
		default:
			return node{}, false
		}
	default:
		return node{}, false
	}
}

func (p *pathParser) parseBracketAfterNumber(first int) (node, bool) {
	typ, val := p.nextToken()
	switch typ {
	case pathRightBracket:
		return node{typ: nodeIndex, value: first}, true
	case pathColon:
		t, v := p.nextToken()
		var second int
		switch t {
		case pathRightBracket:
			return node{typ: nodeSlice, value: [2]int{first, 0}}, true
		case pathNumber:
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				return node{}, false
			}
			second = n
			if t2, _ := p.nextToken(); t2 != pathRightBracket {
				return node{}, false
			}
			return node{typ: nodeSlice, value: [2]int{first, second}}, true
		default:
			return node{}, false
		}
	case pathComma:
		indices := []int{first}
		for {
			t, v := p.nextToken()
			if t != pathNumber {
				return node{}, false
			}
			n, ok := strconv.Atoi(v)
			if ok != nil {
				return node{}, false
			}
			indices = append(indices, n)
			t2, _ := p.nextToken()
			if t2 == pathRightBracket {
				return node{typ: nodeUnion, value: indices}, true
			}
			if t2 != pathComma {
				return node{}, false
			}
		}
	default:
		_ = val
		return node{}, false
	}
}

func unionOrIndex(names []string) node {
	if len(names) == 1 {
		return node{typ: nodeIndex, value: names[0]}
	}
	return node{typ: nodeUnion, value: names}
}

// unquote strips the surrounding single quotes parseString leaves on a
// pathString token's value.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
