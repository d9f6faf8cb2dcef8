package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSource(t *testing.T) {
	ctx := WithSource(context.Background(), "/data/big.csv")
	assert.Equal(t, "/data/big.csv", GetSource(ctx))
}

func TestWithLoadID(t *testing.T) {
	ctx := WithLoadID(context.Background(), 7)

	gen, ok := GetLoadID(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), gen)
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetSource(ctx))

	_, ok := GetLoadID(ctx)
	assert.False(t, ok)
}
