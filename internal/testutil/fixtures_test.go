package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFixtureStore(t *testing.T) {
	s := OpenFixtureStore(t)

	n, err := s.CountContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(ContentFixtures())), n)
}
