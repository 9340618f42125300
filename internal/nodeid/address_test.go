// internal/nodeid/address_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "build", New("build", "").String())
	assert.Equal(t, "clean:images", New("clean", "images").String())
}

func TestAddress_RoundTrip(t *testing.T) {
	testIDs := []string{
		"default",
		"build:scripts",
		"lint:styles",
	}

	for _, id := range testIDs {
		t.Run(id, func(t *testing.T) {
			addr, err := Parse(id)
			require.NoError(t, err)
			assert.Equal(t, id, addr.String())

			again, err := Parse(addr.String())
			require.NoError(t, err)
			assert.Equal(t, addr, again)
		})
	}
}
