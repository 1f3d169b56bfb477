package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionHappyPath(t *testing.T) {
	chain := []State{
		StateStart,
		StateLoaded,
		StateClassified,
		StateLimitApplied,
		StatePlanned,
		StateReconciled,
		StatePersisted,
	}

	state := chain[0]
	for _, next := range chain[1:] {
		var err error
		state, err = Transition(state, next)
		require.NoError(t, err)
		assert.Equal(t, next, state)
	}
	assert.True(t, state.Terminal())
}

func TestTransitionRejectsSkippedStages(t *testing.T) {
	cases := []struct{ from, to State }{
		{StateStart, StateClassified},
		{StateLoaded, StateLimitApplied},
		{StateClassified, StatePersisted},
		{StateLimitApplied, StateReconciled},
		{StatePlanned, StatePersisted},
		{StateLoaded, StateStart},
	}

	for _, tc := range cases {
		state, err := Transition(tc.from, tc.to)
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, state, "failed transitions must not move the state")

		var terr *StateTransitionError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, tc.from, terr.From)
		assert.Equal(t, tc.to, terr.To)
	}
}

func TestEveryNonTerminalStateMayAbort(t *testing.T) {
	for _, from := range []State{
		StateStart,
		StateLoaded,
		StateClassified,
		StateLimitApplied,
		StatePlanned,
		StateReconciled,
	} {
		state, err := Transition(from, StateAborted)
		require.NoError(t, err, string(from))
		assert.Equal(t, StateAborted, state)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []State{
		StateStart,
		StateLoaded,
		StateClassified,
		StateLimitApplied,
		StatePlanned,
		StateReconciled,
		StatePersisted,
		StateAborted,
	}

	for _, terminal := range []State{StatePersisted, StateAborted} {
		assert.True(t, terminal.Terminal())
		for _, to := range all {
			assert.False(t, terminal.CanTransition(to), "%s -> %s", terminal, to)
		}
	}
	assert.False(t, StateReconciled.Terminal())
}
