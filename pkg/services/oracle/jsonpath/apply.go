package jsonpath

import (
	json "github.com/nspcc-dev/go-ordered-json"
)

// apply filters value according to nodes. Processing is DFS: at each
// step every surviving candidate value is fanned out through the next
// node, and the results are concatenated.
func (p *pathParser) apply(nodes []node, value interface{}) ([]interface{}, bool) {
	if len(nodes) == 0 {
		p.buf.Reset()
		if err := p.enc.Encode(value); err != nil {
			return nil, false
		}
		if p.buf.Len() > maxResultBytes {
			return nil, false
		}
		return []interface{}{value}, true
	}

	switch nodes[0].typ {
	case nodeAny:
		return p.descend(nodes[1:], value)
	case nodeIndex:
		switch v := nodes[0].value.(type) {
		case int:
			return p.descendByIndex(nodes[1:], value, v)
		case string:
			return p.descendByIdent(nodes[1:], value, v)
		default:
			return nil, false
		}
	case nodeIndexRecursive:
		name := nodes[0].value.(string)
		objs := []interface{}{value}

		var values []interface{}
		for len(objs) > 0 {
			for i := range objs {
				newObjs, _ := p.descendByIdentAux(nodes[1:], objs[i], false, name)
				values = append(values, newObjs...)
			}
			objs = p.flatten(objs)
		}
		return values, true
	case nodeUnion:
		switch v := nodes[0].value.(type) {
		case []int:
			return p.descendByIndex(nodes[1:], value, v...)
		case []string:
			return p.descendByIdent(nodes[1:], value, v...)
		default:
			return nil, false
		}
	case nodeSlice:
		rng := nodes[0].value.([2]int)
		return p.descendByRange(nodes[1:], value, rng[0], rng[1])
	}
	return nil, true
}

// flatten expands one level of arrays and ordered objects into their
// element values, used to walk recursive descent breadth-first.
func (p *pathParser) flatten(objs []interface{}) []interface{} {
	var values []interface{}
	for i := range objs {
		switch obj := objs[i].(type) {
		case []interface{}:
			values = append(values, obj...)
		case json.OrderedObject:
			for i := range obj {
				values = append(values, obj[i].Value)
			}
		}
	}
	return values
}

// descend fans out one level down: array elements, or an ordered
// object's values in key order.
func (p *pathParser) descend(fs []node, obj interface{}) ([]interface{}, bool) {
	if p.depth <= 0 {
		return nil, false
	}
	p.depth--
	defer func() { p.depth++ }()

	var values []interface{}
	switch obj := obj.(type) {
	case []interface{}:
		for i := range obj {
			res, ok := p.apply(fs, obj[i])
			if !ok {
				return nil, false
			}
			values = append(values, res...)
		}
	case json.OrderedObject:
		for i := range obj {
			res, ok := p.apply(fs, obj[i].Value)
			if !ok {
				return nil, false
			}
			values = append(values, res...)
		}
	}
	return values, true
}

// descendByIdent performs member access by name, in the order the
// names were given.
func (p *pathParser) descendByIdent(fs []node, obj interface{}, names ...string) ([]interface{}, bool) {
	return p.descendByIdentAux(fs, obj, true, names...)
}

func (p *pathParser) descendByIdentAux(fs []node, obj interface{}, checkDepth bool, names ...string) ([]interface{}, bool) {
	if checkDepth {
		if p.depth <= 0 {
			return nil, false
		}
		p.depth--
		defer func() { p.depth++ }()
	}

	jmap, ok := obj.(json.OrderedObject)
	if !ok {
		return nil, true
	}

	var values []interface{}
	for j := range names {
		for k := range jmap {
			if jmap[k].Key == names[j] {
				res, ok := p.apply(fs, jmap[k].Value)
				if !ok {
					return nil, false
				}
				values = append(values, res...)
				break
			}
		}
	}
	return values, true
}

// descendByIndex performs array access by index, negative indices
// counting from the end.
func (p *pathParser) descendByIndex(fs []node, obj interface{}, indices ...int) ([]interface{}, bool) {
	if p.depth <= 0 {
		return nil, false
	}
	p.depth--
	defer func() { p.depth++ }()

	arr, ok := obj.([]interface{})
	if !ok {
		return nil, true
	}

	var values []interface{}
	for _, j := range indices {
		if j < 0 {
			j += len(arr)
		}
		if 0 <= j && j < len(arr) {
			res, ok := p.apply(fs, arr[j])
			if !ok {
				return nil, false
			}
			values = append(values, res...)
		}
	}
	return values, true
}

// descendByRange returns a sub-slice of an array; it does not descend
// into objects.
func (p *pathParser) descendByRange(fs []node, obj interface{}, start, end int) ([]interface{}, bool) {
	if p.depth <= 0 {
		return nil, false
	}
	p.depth--
	defer func() { p.depth++ }()

	arr, ok := obj.([]interface{})
	if !ok {
		return nil, true
	}

	subStart := start
	if subStart < 0 {
		subStart += len(arr)
	}
	subEnd := end
	if subEnd <= 0 {
		subEnd += len(arr)
	}
	if subEnd > len(arr) {
		subEnd = len(arr)
	}
	if subEnd <= subStart {
		return nil, true
	}

	var values []interface{}
	for j := subStart; j < subEnd; j++ {
		res, ok := p.apply(fs, arr[j])
		if !ok {
			return nil, false
		}
		values = append(values, res...)
	}
	return values, true
}
