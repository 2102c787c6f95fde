package kvstore

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCBT04/Capstone/core"
)

func TestSeal_roundTrip(t *testing.T) {
	key := boxKey("s3cret")

	sealed, err := seal(key, []byte(`{"id":2,"username":"jdoe"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "jdoe")

	value, err := unseal(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"id":2,"username":"jdoe"}`, string(value))
}

func TestSeal_wrongKey(t *testing.T) {
	sealed, err := seal(boxKey("s3cret"), []byte("tok"))
	require.NoError(t, err)

	_, err = unseal(boxKey("other"), sealed)
	assert.Equal(t, errSealedValue, err)
}

func TestSeal_truncatedData(t *testing.T) {
	_, err := unseal(boxKey("s3cret"), []byte("short"))
	assert.Equal(t, errSealedValue, err)
}

func TestInMem(t *testing.T) {
	ctx := context.Background()
	kv := NewInMem()

	_, err := kv.GetItem(ctx, core.KeyToken)
	assert.Equal(t, core.ErrKeyNotFound, err)

	require.NoError(t, kv.SetItem(ctx, core.KeyToken, "tok"))
	value, err := kv.GetItem(ctx, core.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", value)

	require.NoError(t, kv.RemoveItem(ctx, core.KeyToken))
	_, err = kv.GetItem(ctx, core.KeyToken)
	assert.Equal(t, core.ErrKeyNotFound, err)

	// removing an absent key is not an error
	assert.NoError(t, kv.RemoveItem(ctx, "nope"))
}

func Test_storeErr(t *testing.T) {
	assert.NoError(t, storeErr(nil, "getting item"))

	err := storeErr(errors.New("boom"), "getting item")
	require.Error(t, err)
	assert.False(t, core.IsShutdown(err))
	assert.Contains(t, err.Error(), "getting item")

	err = storeErr(errors.Wrap(driver.ErrBadConn, "exec"), "setting item")
	assert.True(t, core.IsShutdown(err))
}
