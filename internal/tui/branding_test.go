package tui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pdbscope/internal/config"
)

func TestShowBanner(t *testing.T) {
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	ShowBanner("1.0.0-test")

	w.Close()
	os.Stdout = old
	out := <-outC

	assert.Contains(t, out, "Protein Structure Browser")
	assert.Contains(t, out, "v1.0.0-test")
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "╝")
	assert.Contains(t, out, "◆")
}

func TestBanner_DevVersion(t *testing.T) {
	out := Banner("dev")
	assert.Contains(t, out, "Protein Structure Browser")
	assert.NotContains(t, out, "vdev")

	assert.Contains(t, Banner("v2.1.0"), "Protein Structure Browser v2.1.0")
}

func TestGetCompactBanner(t *testing.T) {
	out := GetCompactBanner("Test message")

	assert.Contains(t, out, "Test message")
	assert.Contains(t, out, strings.TrimSpace(LogoLines[0]))
}

func TestGetWelcomeMessage(t *testing.T) {
	out := GetWelcomeMessage("ctrl+")
	assert.Contains(t, out, "Type a molecule name below")
	assert.Contains(t, out, "ctrl+e: explore")

	assert.Contains(t, GetWelcomeMessage("alt+"), "alt+e: explore")
}

func TestLogoConstants(t *testing.T) {
	assert.Len(t, LogoLines, 5)
	assert.Len(t, BannerColors, 5)
	assert.True(t, strings.HasPrefix(CompactLogo, AppName))
}

func TestApplyColors(t *testing.T) {
	t.Cleanup(func() { ApplyColors(config.TestConfig().UI.Colors) })

	ApplyColors(config.UIColors{Primary: "#123456", Error: "#ABCDEF"})

	assert.Equal(t, lipgloss.Color("#123456"), PrimaryColor)
	assert.Equal(t, lipgloss.Color("#ABCDEF"), ErrorColor)
	assert.Equal(t, lipgloss.Color("#123456"), LogoStyle.GetForeground())
	assert.Equal(t, lipgloss.Color("#ABCDEF"), ErrorMessageStyle.GetForeground())

	// Empty entries keep what was there.
	before := SecondaryColor
	ApplyColors(config.UIColors{})
	assert.Equal(t, before, SecondaryColor)
}
