package practice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signs-study-service/internal/domain"
)

func cards(n int) []domain.Sign {
	out := make([]domain.Sign, n)
	for i := range out {
		out[i] = domain.Sign{ID: int64(i + 1), Title: fmt.Sprintf("Sign %d", i+1), Description: fmt.Sprintf("desc %d", i+1)}
	}
	return out
}

func TestGenerate_OptionInvariants(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 12} {
		input := cards(n)
		qs := Generate(input, DefaultDistractors, NewRand(int64(n)))
		require.Len(t, qs, n)

		wantLen := DefaultDistractors + 1
		if n < wantLen {
			wantLen = n
		}
		for i, q := range qs {
			title := input[i].Title
			require.Len(t, q.Options, wantLen, "n=%d question %d", n, i)
			require.Equal(t, title, q.Options[q.CorrectOption])
			require.Equal(t, input[i].ID, q.SignID)

			count := 0
			unique := map[string]bool{}
			for _, opt := range q.Options {
				if opt == title {
					count++
				}
				unique[opt] = true
			}
			require.Equal(t, 1, count)
			require.Len(t, unique, len(q.Options))
		}
	}
}

func TestGenerate_Empty(t *testing.T) {
	assert.Empty(t, Generate(nil, 3, NewRand(1)))
}

func TestGenerate_DuplicateTitlesNeverDoubleCorrect(t *testing.T) {
	input := []domain.Sign{{ID: 1, Title: "Stop"}, {ID: 2, Title: "Stop"}, {ID: 3, Title: "Yield"}}
	for _, q := range Generate(input, 3, NewRand(9)) {
		count := 0
		for _, opt := range q.Options {
			if opt == q.Options[q.CorrectOption] {
				count++
			}
		}
		assert.Equal(t, 1, count)
	}
}

func TestGenerate_ShufflesPositions(t *testing.T) {
	input := cards(8)
	positions := map[int]bool{}
	for seed := int64(0); seed < 40; seed++ {
		for _, q := range Generate(input, 3, NewRand(seed)) {
			positions[q.CorrectOption] = true
		}
	}
	assert.Len(t, positions, 4)
}
