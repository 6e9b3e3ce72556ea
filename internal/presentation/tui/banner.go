package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the spindle ASCII art banner and version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	lines := []string{
		`            _           _ _       `,
		`  ___ _ __ (_)_ __   __| | | ___  `,
		` / __| '_ \| | '_ \ / _` + "`" + ` | |/ _ \ `,
		` \__ \ |_) | | | | | (_| | |  __/ `,
		` |___/ .__/|_|_| |_|\__,_|_|\___| `,
		`     |_|                          `,
	}
	// Indigo-to-rose gradient, one color per line.
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Println(termenv.String("  multi-agent storyworld simulator " + version).Faint())
	fmt.Println()
}
