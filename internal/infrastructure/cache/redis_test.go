package cache

import (
	"io"
	"testing"

	"healgenie-portal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	log := logrus.New()
	log.SetOutput(io.Discard)

	client, err := NewRedisClient(config.RedisConfig{Host: mr.Host(), Port: mr.Port()}, log)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = NewRedisClient(config.RedisConfig{Host: mr.Host(), Port: mr.Port()}, log)
	assert.Error(t, err)
}
