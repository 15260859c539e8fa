package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/safetymap/pkg/chart/layout"
)

// Terminal colours (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorCmd    = lipgloss.Color("75")  // light blue
	colorValue  = lipgloss.Color("255") // bright white
	colorLabel  = lipgloss.Color("245") // gray
	colorMuted  = lipgloss.Color("240") // dim gray
)

var (
	// StyleDim renders secondary text: details, stats and hints.
	StyleDim = lipgloss.NewStyle().Foreground(colorMuted)

	// StyleValue renders paths and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorValue)

	// StyleWarning renders warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleFail    = lipgloss.NewStyle().Foreground(colorFail)
	styleLabel   = lipgloss.NewStyle().Foreground(colorLabel)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorCmd)
	styleKey     = lipgloss.NewStyle().Foreground(colorLabel).Width(14)
)

const (
	markOK     = "✓"
	markFail   = "✗"
	markWarn   = "!"
	markInfo   = "›"
	markFile   = "→"
	markSep    = " · "
	markCached = "cached"
	markFresh  = "fresh"
)

// =============================================================================
// Messages
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render(markOK) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleFail.Render(markFail) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(markWarn + " " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleLabel.Render(markInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the last message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(markFile) + " " + StyleValue.Render(path))
}

// printKeyValue prints a label column followed by a value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Chart summaries
// =============================================================================

// printStats prints the chart size and whether it came from the cache.
func printStats(nodeCount, edgeCount, providerCount int, cached bool) {
	origin := styleLabel.Render(markFresh)
	if cached {
		origin = styleOK.Render(markCached)
	}
	line := fmt.Sprintf("%d nodes%s%d edges%s%d providers", nodeCount, markSep, edgeCount, markSep, providerCount)
	fmt.Println("  " + StyleDim.Render(line+markSep) + origin)
}

// printLayoutStats prints the engine, where the positions came from and,
// for a saved layout, how it matched the current chart.
func printLayoutStats(rl layout.Reconciled) {
	line := rl.LayoutName + " layout" + markSep + rl.Source
	if rl.Source == layout.SourceSaved {
		s := rl.Stats
		line += fmt.Sprintf("%s%d applied%s%d new", markSep, s.Applied, markSep, s.NewNodes)
		if s.Stale > 0 {
			line += fmt.Sprintf("%s%d stale", markSep, s.Stale)
		}
		if s.Invalid > 0 {
			line += fmt.Sprintf("%s%d invalid", markSep, s.Invalid)
		}
	}
	fmt.Println("  " + StyleDim.Render(line))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
