package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const filterTestDoc = `{
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

func TestFilterBody(t *testing.T) {
	testCases := []struct {
		path, result string
	}{
		{"$.Manufacturers[0].Name", `["Acme Co"]`},
		{"$..Manufacturers[0].Name", `["Acme Co"]`},
		{"$.Manufacturers[0].Products[0].Price", `[50]`},
		{"$.Manufacturers[1].Products[0].Name", `["Elbow Grease"]`},
		{"$.Manufacturers[1].Products[0]", `[{"Name":"Elbow Grease","Price":99.95}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			actual, err := filterBody(tc.path, []byte(filterTestDoc))
			require.NoError(t, err)
			require.Equal(t, tc.result, string(actual))
		})
	}

	t.Run("no filter passes body through", func(t *testing.T) {
		actual, err := filterBody("", []byte("hello"))
		require.NoError(t, err)
		require.Equal(t, "hello", string(actual))
	})

	t.Run("no filter rejects non-UTF-8", func(t *testing.T) {
		_, err := filterBody("", []byte{0xff})
		require.Error(t, err)
	})

	t.Run("invalid JSON body errors", func(t *testing.T) {
		_, err := filterBody("$.Name", []byte("not json"))
		require.Error(t, err)
	})

	t.Run("no match errors", func(t *testing.T) {
		_, err := filterBody("$.NoSuchField", []byte(filterTestDoc))
		require.Error(t, err)
	})
}
