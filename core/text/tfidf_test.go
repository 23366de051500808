package text

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTFIDF(t *testing.T) {
	t.Run("Scores a single matching token", func(t *testing.T) {
		tf := map[string]int{"graph": 2}
		df := map[string]int{"graph": 1}

		score := ScoreTFIDF([]string{"graph"}, tf, df, 3)

		expected := 2 * (math.Log(4.0/2.0) + 1)
		assert.InDelta(t, expected, score, 1e-9, "Expected tf * (ln((N+1)/(df+1)) + 1)")
	})

	t.Run("Tokens absent from the document contribute nothing", func(t *testing.T) {
		tf := map[string]int{"graph": 1}
		df := map[string]int{"graph": 1, "vector": 2}

		score := ScoreTFIDF([]string{"vector"}, tf, df, 3)

		assert.Zero(t, score, "Expected absent tokens to contribute zero")
	})

	t.Run("Empty query scores zero", func(t *testing.T) {
		tf := map[string]int{"graph": 1}
		df := map[string]int{"graph": 1}

		score := ScoreTFIDF(nil, tf, df, 3)

		assert.Zero(t, score, "Expected empty query to score zero")
	})

	t.Run("Repeated query tokens add up", func(t *testing.T) {
		tf := map[string]int{"graph": 1}
		df := map[string]int{"graph": 1}

		single := ScoreTFIDF([]string{"graph"}, tf, df, 2)
		double := ScoreTFIDF([]string{"graph", "graph"}, tf, df, 2)

		assert.InDelta(t, 2*single, double, 1e-9, "Expected repeated query tokens to double the score")
	})

	t.Run("Rarer tokens weigh more", func(t *testing.T) {
		tf := map[string]int{"rare": 1, "common": 1}
		df := map[string]int{"rare": 1, "common": 10}

		rare := ScoreTFIDF([]string{"rare"}, tf, df, 10)
		common := ScoreTFIDF([]string{"common"}, tf, df, 10)

		assert.Greater(t, rare, common, "Expected lower document frequency to score higher")
	})
}
