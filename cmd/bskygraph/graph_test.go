package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFlagRegistered(t *testing.T) {
	require.NotNil(t, graphCmd.Flags().Lookup("actor"))
	// The default-command fallback parses the same flag set
	require.NotNil(t, rootCmd.Flags().Lookup("actor"))
}

func TestTargetActor(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		flag     string
		expected string
	}{
		{
			name:     "positional argument",
			args:     []string{"alice.bsky.social"},
			expected: "alice.bsky.social",
		},
		{
			name:     "actor flag fallback",
			args:     nil,
			flag:     "bob.bsky.social",
			expected: "bob.bsky.social",
		},
		{
			name:     "positional wins over flag",
			args:     []string{"alice.bsky.social"},
			flag:     "bob.bsky.social",
			expected: "alice.bsky.social",
		},
		{
			name:     "neither given",
			args:     nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := actorFlag
			actorFlag = tt.flag
			defer func() { actorFlag = prev }()

			assert.Equal(t, tt.expected, targetActor(tt.args))
		})
	}
}

func TestGraphCommandArgValidation(t *testing.T) {
	assert.NoError(t, graphCmd.Args(graphCmd, nil))
	assert.NoError(t, graphCmd.Args(graphCmd, []string{"alice.bsky.social"}))
	assert.Error(t, graphCmd.Args(graphCmd, []string{"alice.bsky.social", "stray"}))
}

func TestDefaultCommandRejectsExtraArgs(t *testing.T) {
	err := rootCmd.RunE(rootCmd, []string{"alice.bsky.social", "stray"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 1 arg")
}
