package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowSpec_Normalized(t *testing.T) {
	spec := FlowSpec{Description: "d", Steps: []string{"a"}}.Normalized()
	assert.Equal(t, 1, spec.ActorCount)
	assert.Equal(t, 30, spec.TimeoutSeconds)

	spec = FlowSpec{ActorCount: 5, TimeoutSeconds: 10}.Normalized()
	assert.Equal(t, 5, spec.ActorCount)
	assert.Equal(t, 10, spec.TimeoutSeconds)
}

func TestFlowSpec_Validate(t *testing.T) {
	valid := FlowSpec{
		Description: "Expense flow",
		Steps:       []string{"Send text 'hi'"},
	}.Normalized()
	assert.NoError(t, valid.Validate())

	t.Run("collects every problem", func(t *testing.T) {
		err := FlowSpec{
			Steps:      []string{"ok", "  "},
			ActorCount: -1,
		}.Validate()
		require.Error(t, err)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.True(t, cfgErr.Has("flow description is required"))
		assert.True(t, cfgErr.Has("flow step 2 is invalid"))
		assert.True(t, cfgErr.Has("user count must be a positive integer"))
	})

	t.Run("empty steps", func(t *testing.T) {
		err := FlowSpec{Description: "d", ActorCount: 1, TimeoutSeconds: 30}.Validate()
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.True(t, cfgErr.Has("flow steps are required"))
	})
}

func TestFlowSpec_MediaRequirements(t *testing.T) {
	spec := FlowSpec{
		Steps: []string{
			"Send text 'hello'",
			"Upload image 'receipt.jpg' with caption",
			"Send a voice recording 'note.mp3'",
			"Mention 'other.jpg' without any trigger word", // no keyword, no match
		},
	}

	reqs := spec.MediaRequirements()
	assert.Equal(t, []string{"receipt.jpg"}, reqs["images"])
	assert.Equal(t, []string{"note.mp3"}, reqs["audio"])
	assert.Len(t, reqs, 2)
}

func TestExecutionContext_Observe(t *testing.T) {
	var ctx ExecutionContext
	ctx.Observe("wamid.first")
	assert.Equal(t, "wamid.first", ctx.LastMessageID)

	// empty ids never reset the anchor
	ctx.Observe("")
	assert.Equal(t, "wamid.first", ctx.LastMessageID)

	ctx.Observe("wamid.second")
	assert.Equal(t, "wamid.second", ctx.LastMessageID)
}
