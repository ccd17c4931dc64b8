package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-token-service/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	require.Equal(t, []int{1, 2}, utils.Page(items, 0, 2))
	require.Equal(t, []int{4, 5}, utils.Page(items, 3, 10))
	require.Equal(t, []int{2, 3, 4, 5}, utils.Page(items, 1, 0))
	require.Nil(t, utils.Page(items, 5, 2))
	require.Nil(t, utils.Page([]int{}, 0, 2))
}
