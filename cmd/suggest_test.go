package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModification(t *testing.T) {
	mods, err := parseModification("")
	require.NoError(t, err)
	assert.Nil(t, mods)

	mods, err = parseModification(`{"remove":["m1"],"update_quantity":[{"menu_item_id":"m2","quantity":3}]}`)
	require.NoError(t, err)
	require.NotNil(t, mods)
	assert.Equal(t, []string{"m1"}, mods.Remove)
	require.Len(t, mods.UpdateQuantity, 1)
	assert.Equal(t, 3, mods.UpdateQuantity[0].Quantity)

	_, err = parseModification("{")
	assert.Error(t, err)
}
