package jsonpath

import (
	"bytes"
	"testing"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/stretchr/testify/require"
)

const testDoc = `{
	"Stores": [ "Lambton Quay", "Willis Street" ],
	"Manufacturers": [
		{
			"Name": "Acme Co",
			"Products": [
				{ "Name": "Anvil", "Price": 50 }
			]
		},
		{
			"Name": "Contoso",
			"Products": [
				{ "Name": "Elbow Grease", "Price": 99.95 },
				{ "Name": "Headlight Fluid", "Price": 4 }
			]
		}
	]
}`

func decode(t *testing.T, s string) interface{} {
	d := json.NewDecoder(bytes.NewReader([]byte(s)))
	d.UseOrderedObject()
	var v interface{}
	require.NoError(t, d.Decode(&v))
	return v
}

func TestGet(t *testing.T) {
	doc := decode(t, testDoc)

	testCases := []struct {
		path string
		want []interface{}
	}{
		{"$.Manufacturers[0].Name", []interface{}{"Acme Co"}},
		{"$..Manufacturers[0].Name", []interface{}{"Acme Co"}},
		{"$.Manufacturers[0].Products[0].Price", []interface{}{float64(50)}},
		{"$.Manufacturers[1].Products[0].Name", []interface{}{"Elbow Grease"}},
		{"$.Manufacturers[*].Name", []interface{}{"Acme Co", "Contoso"}},
		{"$.Stores[1]", []interface{}{"Willis Street"}},
		{"$.Stores[0,1]", []interface{}{"Lambton Quay", "Willis Street"}},
		{"$.Stores[:1]", []interface{}{"Lambton Quay"}},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := Get(tc.path, doc)
			require.True(t, ok)
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("no match", func(t *testing.T) {
		_, ok := Get("$.NoSuchField", doc)
		require.False(t, ok)
	})

	t.Run("invalid path", func(t *testing.T) {
		_, ok := Get("Manufacturers[0].Name", doc)
		require.False(t, ok)
	})
}
