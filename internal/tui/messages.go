package tui

import (
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
)

// Message types for the TUI

// RailLoadedMsg carries the outcome of a rail trigger and the rail's state
// right after it
type RailLoadedMsg struct {
	Outcome rail.Outcome
	View    rail.View
}

// BestMovieLoadedMsg signals that the banner movie has been loaded
type BestMovieLoadedMsg struct {
	Feature domain.Feature
	Err     error
}

// GenresLoadedMsg signals that the genre list has been loaded. Genres may
// be partial when Err is set.
type GenresLoadedMsg struct {
	Genres []domain.Genre
	Err    error
}

// DetailLoadedMsg signals that a movie detail has been loaded
type DetailLoadedMsg struct {
	ID    string
	Movie *domain.MovieDetail
	Err   error
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
