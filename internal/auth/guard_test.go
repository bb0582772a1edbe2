package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskbot/internal/command"
)

func TestGuard_Authorize(t *testing.T) {
	g := NewGuard("owner")
	privileged := []command.Command{
		command.List{}, command.Done{ID: 1}, command.Open{ID: 1}, command.Show{ID: 1}, command.Create{Title: "x"},
	}

	for _, cmd := range privileged {
		name := cmd.Name()
		assert.True(t, Privileged(name), name)
		assert.NoError(t, g.Authorize(name, "owner"), name)
		assert.ErrorIs(t, g.Authorize(name, "Owner"), ErrDenied, name)
		assert.ErrorIs(t, g.Authorize(name, ""), ErrDenied, name)
	}

	assert.False(t, Privileged(command.Start{}.Name()))
	assert.NoError(t, g.Authorize("start", "stranger"))
	assert.NoError(t, g.Authorize("start", ""))
}

func TestGuard_EmptyOperatorDeniesEveryone(t *testing.T) {
	g := NewGuard("")
	assert.ErrorIs(t, g.Authorize("list", ""), ErrDenied)
	assert.Equal(t, "", g.Operator())
}
