package distribute

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExample(t *testing.T) {
	t.Parallel()

	got, err := Split(10, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 4, "B": 3, "C": 3}, got)
}

func TestSplitConservation(t *testing.T) {
	t.Parallel()

	categoryLists := [][]string{
		{"multiple_choice"},
		{"multiple_choice", "true_false"},
		{"multiple_choice", "true_false", "open_ended"},
	}

	for total := 1; total <= 50; total++ {
		for _, categories := range categoryLists {
			got, err := Split(total, categories)
			require.NoError(t, err)

			sum, min, max := 0, total+1, -1
			for _, n := range got {
				sum += n
				if n < min {
					min = n
				}
				if n > max {
					max = n
				}
			}

			assert.Equal(t, total, sum, "total=%d categories=%v", total, categories)
			assert.LessOrEqual(t, max-min, 1, "total=%d categories=%v", total, categories)
		}
	}
}

func TestSplitRemainderGoesToEarliest(t *testing.T) {
	t.Parallel()

	got, err := Split(7, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, got["a"])
	assert.Equal(t, 2, got["b"])
	assert.Equal(t, 2, got["c"])
}

func TestSplitZeroTotal(t *testing.T) {
	t.Parallel()

	got, err := Split(0, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 0}, got)
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	_, err := Split(5, nil)
	assert.Error(t, err)

	_, err = Split(5, []string{"a", "a"})
	assert.Error(t, err)

	_, err = Split(-1, []string{"a"})
	assert.Error(t, err)
}

func ExampleSplit() {
	d, _ := Split(10, []string{"multiple_choice", "true_false", "open_ended"})
	fmt.Println(d["multiple_choice"], d["true_false"], d["open_ended"])
	// Output: 4 3 3
}
