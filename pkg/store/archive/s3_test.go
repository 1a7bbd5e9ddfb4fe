package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "ledgers/a1.csv", Key("a1"))
}

func TestNewS3ArchiveRequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Settings{})
	require.Error(t, err)
}
