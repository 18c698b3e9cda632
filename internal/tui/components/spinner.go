package components

import "github.com/mmcdole/marquee/internal/tui/styles"

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return styles.SpinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)])
}
