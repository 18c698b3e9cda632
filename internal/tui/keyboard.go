package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	if m.State == StateHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Up):
		if m.Focus > 0 {
			m.Focus--
			m.applyFocus()
		}
		return m, nil

	case key.Matches(msg, Keys.Down):
		if m.Focus < len(m.Rows) {
			m.Focus++
			m.applyFocus()
		}
		return m, nil

	case key.Matches(msg, Keys.Left):
		if row := m.focusedRow(); row != nil {
			row.MoveLeft()
		}
		return m, nil

	case key.Matches(msg, Keys.Right):
		if row := m.focusedRow(); row != nil {
			row.MoveRight()
		}
		return m, nil

	case key.Matches(msg, Keys.Home):
		if row := m.focusedRow(); row != nil {
			row.ResetCursor()
		}
		return m, nil

	case key.Matches(msg, Keys.End):
		if row := m.focusedRow(); row != nil {
			row.MoveEnd()
		}
		return m, nil

	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, Keys.More):
		return m.handleShowMore()

	case key.Matches(msg, Keys.Expand):
		if row := m.focusedRow(); row != nil {
			row.ToggleExpanded()
		}
		return m, nil

	case key.Matches(msg, Keys.Genre):
		return m.openGenrePicker()

	case key.Matches(msg, Keys.Refresh):
		return m.reloadFocused()

	case key.Matches(msg, Keys.RefreshAll):
		return m.reloadAll()
	}

	return m, nil
}

// routeToModal sends keys to the visible modal, if any
func (m Model) routeToModal(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	if m.DetailModal.IsVisible() {
		if msg.String() == "ctrl+c" {
			return true, m, tea.Quit
		}
		m.DetailModal.HandleKey(msg)
		return true, m, nil
	}

	if m.GenrePicker.IsVisible() {
		if msg.String() == "ctrl+c" {
			return true, m, tea.Quit
		}
		handled, selection, cmd := m.GenrePicker.HandleKey(msg)
		if selection != nil {
			selectCmd := m.selectGenre(*selection)
			return true, m, tea.Batch(cmd, selectCmd)
		}
		return handled, m, cmd
	}

	return false, m, nil
}

// handleEnter opens the detail modal for the focused movie
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.Focus == 0 {
		movie, ok := m.Banner.Movie()
		if !ok {
			return m, nil
		}
		m.DetailModal.Show(movie)
		return m, LoadDetailCmd(m.HomeSvc, movie.ID)
	}

	row := m.focusedRow()
	if row == nil {
		return m, nil
	}
	movie, ok := row.Selected()
	if !ok {
		return m, nil
	}
	m.DetailModal.Show(movie)
	return m, LoadDetailCmd(m.HomeSvc, movie.ID)
}

// handleShowMore extends the focused rail by one batch
func (m Model) handleShowMore() (tea.Model, tea.Cmd) {
	row := m.focusedRow()
	if row == nil {
		return m, nil
	}
	view := row.RailView()
	if view.Cursor.Exhausted {
		return m.setStatus(view.Title+": no more movies", false)
	}
	if !view.CanShowMore {
		return m, nil
	}

	r := m.HomeSvc.Rail(view.ID)
	if r == nil {
		return m, nil
	}
	row.SetLoading()
	return m, ShowMoreCmd(r)
}

// openGenrePicker shows the genre popup, fetching genres if needed
func (m Model) openGenrePicker() (tea.Model, tea.Cmd) {
	custom := m.HomeSvc.CustomRail()
	if custom == nil {
		return m, nil
	}

	cmd := m.GenrePicker.Show(m.Genres, custom.Query().Genre)
	if m.genresLoaded {
		return m, cmd
	}
	m.GenrePicker.SetLoading(true)
	return m, tea.Batch(cmd, LoadGenresCmd(m.HomeSvc))
}

// reloadFocused reloads the focused rail, or the banner
func (m Model) reloadFocused() (tea.Model, tea.Cmd) {
	if m.Focus == 0 {
		m.Banner.SetLoading()
		return m, LoadBestMovieCmd(m.HomeSvc)
	}

	row := m.focusedRow()
	r := m.HomeSvc.Rail(row.ID())
	if r == nil {
		return m, nil
	}
	row.SetLoading()
	row.ResetCursor()
	return m, LoadRailCmd(r)
}

// reloadAll drops cached data and reloads the whole homepage
func (m Model) reloadAll() (tea.Model, tea.Cmd) {
	m.HomeSvc.Refresh()
	m.genresLoaded = false

	cmds := []tea.Cmd{LoadBestMovieCmd(m.HomeSvc), LoadGenresCmd(m.HomeSvc)}
	m.Banner.SetLoading()
	for i := range m.Rows {
		r := m.HomeSvc.Rail(m.Rows[i].ID())
		if r == nil {
			continue
		}
		m.Rows[i].SetLoading()
		m.Rows[i].ResetCursor()
		cmds = append(cmds, LoadRailCmd(r))
	}

	model, status := m.setStatus("Reloading...", false)
	return model, tea.Batch(append(cmds, status)...)
}
