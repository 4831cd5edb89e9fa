package types

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMapDirection(t *testing.T) {
	rtl := DefaultKeyMap(true)
	assert.Equal(t, "next page", rtl.Left.Help().Desc)
	assert.Equal(t, "prev page", rtl.Right.Help().Desc)

	ltr := DefaultKeyMap(false)
	assert.Equal(t, "prev page", ltr.Left.Help().Desc)
	assert.Equal(t, "next page", ltr.Right.Help().Desc)
}

func TestKeyMapMatches(t *testing.T) {
	km := DefaultKeyMap(true)
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyLeft}, km.Left))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, km.Next))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")}, km.EnterCmdMode))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, km.Quit))
	assert.Len(t, km.FullHelp(), 3)
	assert.Equal(t, "COMMAND", Command.String())
	assert.Equal(t, "NORMAL", Normal.String())
}
