package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]int64{1, 2, 3}, 2))
	assert.False(t, Contains([]int64{1, 2, 3}, 4))
	assert.False(t, Contains(nil, "a"))
}

func TestWithout(t *testing.T) {
	src := []int64{1, 2, 3, 2}
	assert.Equal(t, []int64{1, 3}, Without(src, 2))
	assert.Equal(t, []int64{1, 2, 3, 2}, src)
	assert.Empty(t, Without([]int64{5}, 5))
	assert.Equal(t, []int64{4}, Without([]int64{1, 4, 2}, 1, 2))
	assert.Equal(t, []int64{1}, Without([]int64{1}))
}
