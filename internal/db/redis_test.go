package db

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(RedisOpts{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer rdb.Close()
}

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := NewRedisClient(RedisOpts{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
