package scorematrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostIdentityIsZero(t *testing.T) {
	for q := byte(0); q < 4; q++ {
		assert.Equal(t, 0, Cost(q, q+1, 5))
	}
}

func TestCostMismatchIsPenalty(t *testing.T) {
	assert.Equal(t, 5, Cost(0, 2, 5)) // query A vs database C
}

func TestCostPaddingIsZero(t *testing.T) {
	for q := byte(0); q < 4; q++ {
		assert.Equal(t, 0, Cost(q, 0, 7))
	}
}

func TestBuild8MatchesCost(t *testing.T) {
	m := Build8(4)
	for q := byte(0); q < 4; q++ {
		for d := byte(0); d < 5; d++ {
			assert.Equal(t, byte(Cost(q, d, 4)), m.Row(q)[d])
		}
	}
}

func TestBuild16MatchesCost(t *testing.T) {
	m := Build16(4)
	for q := byte(0); q < 4; q++ {
		for d := byte(0); d < 5; d++ {
			assert.Equal(t, uint16(Cost(q, d, 4)), m.Row(q)[d])
		}
	}
}
