package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/rail"
	"github.com/mmcdole/marquee/internal/service"
)

const (
	railTimeout   = 60 * time.Second // a fill may walk many pages
	detailTimeout = 30 * time.Second
)

// Command factories for async operations

// LoadRailCmd runs the initial fill of a rail
func LoadRailCmd(r *rail.Rail) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), railTimeout)
		defer cancel()

		out := r.Load(ctx)
		return RailLoadedMsg{Outcome: out, View: r.Snapshot()}
	}
}

// ShowMoreCmd extends a rail by one batch
func ShowMoreCmd(r *rail.Rail) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), railTimeout)
		defer cancel()

		out := r.ShowMore(ctx)
		return RailLoadedMsg{Outcome: out, View: r.Snapshot()}
	}
}

// SetGenreCmd rebinds a rail to a genre and reloads it from page 1
func SetGenreCmd(r *rail.Rail, genre string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), railTimeout)
		defer cancel()

		out := r.SetGenre(ctx, genre)
		return RailLoadedMsg{Outcome: out, View: r.Snapshot()}
	}
}

// LoadBestMovieCmd loads the banner movie
func LoadBestMovieCmd(svc *service.HomeService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), detailTimeout)
		defer cancel()

		feature, err := svc.BestMovie(ctx)
		return BestMovieLoadedMsg{Feature: feature, Err: err}
	}
}

// LoadGenresCmd loads the genre list for the picker
func LoadGenresCmd(svc *service.HomeService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), railTimeout)
		defer cancel()

		genres, err := svc.Genres(ctx)
		return GenresLoadedMsg{Genres: genres, Err: err}
	}
}

// LoadDetailCmd loads one movie for the detail modal
func LoadDetailCmd(svc *service.HomeService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), detailTimeout)
		defer cancel()

		movie, err := svc.MovieDetail(ctx, id)
		return DetailLoadedMsg{ID: id, Movie: movie, Err: err}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
