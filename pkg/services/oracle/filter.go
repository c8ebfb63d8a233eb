package oracle

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	json "github.com/nspcc-dev/go-ordered-json"

	"github.com/oraclegrid/node/pkg/services/oracle/jsonpath"
)

// The filter does not enforce chain.MaxResultSize on its output; the
// response builder does after this runs.

// filterBody implements the filter contract: an empty filter passes body
// through unchanged provided it is valid UTF-8; a non-empty filter parses
// body as JSON, evaluates it as a JSONPath selector against the document,
// and re-serializes the matches as a JSON array. Any JSON parse failure
// or a selector matching nothing is reported as an error.
func filterBody(filterPath string, body []byte) ([]byte, error) {
	if filterPath == "" {
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("oracle: response body is not valid UTF-8")
		}
		return body, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseOrderedObject()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("oracle: filter: invalid JSON body: %w", err)
	}

	matches, ok := jsonpath.Get(filterPath, doc)
	if !ok || len(matches) == 0 {
		return nil, fmt.Errorf("oracle: filter %q matched nothing", filterPath)
	}

	out, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("oracle: filter: encoding result: %w", err)
	}
	return out, nil
}
