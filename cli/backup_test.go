package cli

import (
	"testing"

	"github.com/gear6io/glacier/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRename(t *testing.T) {
	from, to := splitRename("shop.orders=store.receipts")
	assert.Equal(t, "shop.orders", from)
	assert.Equal(t, "store.receipts", to)

	from, to = splitRename("shop.orders")
	assert.Equal(t, "shop.orders", from)
	assert.Equal(t, "", to)
}

func TestParseQualifiedName(t *testing.T) {
	name, err := parseQualifiedName("shop.orders")
	require.NoError(t, err)
	assert.Equal(t, types.QualifiedName{Database: "shop", Table: "orders"}, name)

	_, err = parseQualifiedName("orders")
	require.Error(t, err)
	_, err = parseQualifiedName(".orders")
	require.Error(t, err)
	_, err = parseQualifiedName("shop.")
	require.Error(t, err)
}
