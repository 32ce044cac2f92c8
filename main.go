package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kvisten/murn/internal/config"
	"github.com/kvisten/murn/internal/errmsg"
	"github.com/kvisten/murn/internal/mpris"
	"github.com/kvisten/murn/internal/player"
	"github.com/kvisten/murn/internal/queue"
	"github.com/kvisten/murn/internal/state"
)

const (
	tickInterval  = 100 * time.Millisecond
	saveInterval  = 5 * time.Second
	statusTimeout = 4 * time.Second
	playerBarRows = 3 // top border + content + bottom border
)

type tickMsg time.Time

type mprisMsg mpris.Command

type model struct {
	cfg      *config.Config
	player   *player.Player
	queue    *queue.Queue
	stateMgr *state.Manager
	remote   *mpris.Adapter

	barStyle     lipgloss.Style
	currentStyle lipgloss.Style
	cursorStyle  lipgloss.Style

	cursor   int
	width    int
	height   int
	status   string // transient message shown in the bar
	statusAt time.Time
	savedAt  time.Time
}

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}

	stateMgr, err := state.Open()
	if err != nil {
		return model{}, err
	}

	session, err := stateMgr.Load()
	if err != nil {
		stateMgr.Close()
		return model{}, err
	}

	pl, err := player.New(cfg.DeviceRate)
	if err != nil {
		stateMgr.Close()
		return model{}, err
	}
	pl.SetVolume(session.Volume)
	pl.SetMuted(session.Muted)

	q := queue.Restore(session.QueuePath, session.TrackPath, session.Shuffle)
	if q.Path() == "" && len(cfg.Roots) > 0 {
		// First run: queue the first configured music root.
		_ = q.Load(cfg.Roots[0])
	}

	accent := lipgloss.Color(cfg.AccentColor)
	m := model{
		cfg:      cfg,
		player:   pl,
		queue:    q,
		stateMgr: stateMgr,
		barStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		currentStyle: lipgloss.NewStyle().Foreground(accent).Bold(true),
		cursorStyle:  lipgloss.NewStyle().Reverse(true),
		savedAt:      time.Now(),
	}

	if t := q.Track(); t != nil {
		if err := pl.Revive(t, session.Elapsed); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpPlaybackRestore, err))
		}
		m.cursor = q.Index()
	}

	return m, nil
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.player.Update()
		if m.player.Done() && m.queue.Track() != nil {
			if err := m.queue.TrackFinished(m.player); err != nil {
				m.setStatus(errmsg.Format(errmsg.OpTrackNext, err))
			} else {
				m.cursor = m.queue.Index()
			}
		}
		if m.status != "" && time.Since(m.statusAt) > statusTimeout {
			m.status = ""
		}
		if time.Since(m.savedAt) > saveInterval {
			m.saveState()
			m.savedAt = time.Now()
		}
		m.publishStatus()
		return m, tickCmd()

	case mprisMsg:
		m.applyRemote(mpris.Command(msg))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.saveState()
		if m.remote != nil {
			m.remote.Close()
		}
		m.player.Close()
		m.stateMgr.Close()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.queue.Tracks())-1 {
			m.cursor++
		}

	case "enter":
		if err := m.queue.SelectIndex(m.cursor, m.player); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpTrackSelect, err))
		}

	case " ":
		m.player.Toggle()

	case "m":
		m.player.ToggleMute()

	case "+", "=":
		m.player.VolumeUp(m.cfg.VolumeStep)

	case "-":
		m.player.VolumeDown(m.cfg.VolumeStep)

	case "right", "l":
		if err := m.queue.SeekForward(m.player, m.cfg.SeekStepDuration()); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpPlaybackSeek, err))
		} else if m.queue.Index() >= 0 {
			m.cursor = m.queue.Index()
		}

	case "left", "h":
		m.queue.SeekBackward(m.player, m.cfg.SeekStepDuration())

	case "n":
		if err := m.queue.Next(m.player); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpTrackNext, err))
		} else {
			m.cursor = m.queue.Index()
		}

	case "b":
		if err := m.queue.Last(m.player); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpTrackLast, err))
		} else if m.queue.Index() >= 0 {
			m.cursor = m.queue.Index()
		}

	case "s":
		m.queue.ToggleShuffle()

	case "r":
		m.queue.Restart(m.player)
	}

	return m, nil
}

// applyRemote executes a desktop media control command. These arrive as
// messages, so they run on the UI loop like a key press.
func (m *model) applyRemote(cmd mpris.Command) {
	switch cmd.Kind {
	case mpris.CmdToggle:
		m.player.Toggle()
	case mpris.CmdPlay:
		m.player.Pause(false)
	case mpris.CmdPause, mpris.CmdStop:
		m.player.Pause(true)
	case mpris.CmdNext:
		if err := m.queue.Next(m.player); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpTrackNext, err))
		} else {
			m.cursor = m.queue.Index()
		}
	case mpris.CmdPrevious:
		if err := m.queue.Last(m.player); err != nil {
			m.setStatus(errmsg.Format(errmsg.OpTrackLast, err))
		} else if m.queue.Index() >= 0 {
			m.cursor = m.queue.Index()
		}
	case mpris.CmdSeekBy:
		if cmd.Offset >= 0 {
			_ = m.queue.SeekForward(m.player, cmd.Offset)
		} else {
			m.queue.SeekBackward(m.player, -cmd.Offset)
		}
	case mpris.CmdSeekTo:
		m.player.Seek(cmd.Pos)
	case mpris.CmdSetShuffle:
		m.queue.SetShuffle(cmd.Shuffle)
	case mpris.CmdSetVolume:
		m.player.SetVolume(int(cmd.Volume*100 + 0.5))
	}
}

func (m *model) publishStatus() {
	if m.remote == nil {
		return
	}

	s := mpris.Status{
		Position:  m.player.Elapsed(),
		Duration:  m.player.Duration(),
		Playing:   !m.player.Paused() && !m.player.Done(),
		Shuffle:   m.queue.Shuffle(),
		Volume:    m.player.Volume(),
		HasTracks: len(m.queue.Tracks()) > 0,
	}

	t := m.queue.Track()
	if t == nil {
		s.Stopped = true
	} else {
		s.TrackPath = t.Path()
		s.Title = t.Title()
		s.Artist = t.Artist()
		s.Album = t.Album()
		s.TrackNumber = t.Number()
	}

	m.remote.Publish(s)
}

func (m *model) saveState() {
	session := state.Session{
		Volume:    m.player.Volume(),
		Muted:     m.player.Muted(),
		Shuffle:   m.queue.Shuffle(),
		QueuePath: m.queue.Path(),
		Elapsed:   m.player.Elapsed(),
	}
	if t := m.queue.Track(); t != nil {
		session.TrackPath = t.Path()
	}
	m.stateMgr.Save(session)
}

func (m *model) setStatus(msg string) {
	m.status = msg
	m.statusAt = time.Now()
}

func (m model) View() string {
	listHeight := m.height - playerBarRows
	if listHeight < 1 {
		listHeight = 1
	}

	var b strings.Builder
	b.WriteString(m.viewList(listHeight))
	b.WriteString(m.viewPlayerBar())
	return b.String()
}

func (m model) viewList(height int) string {
	tracks := m.queue.Tracks()
	if len(tracks) == 0 {
		return strings.Repeat("\n", height)
	}

	// Keep the cursor inside the visible window.
	top := 0
	if m.cursor >= height {
		top = m.cursor - height + 1
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		i := top + row
		if i < len(tracks) {
			line := tracks[i].String()
			if m.width > 2 {
				line = truncateLine(line, m.width-2)
			}
			switch {
			case i == m.cursor:
				line = m.cursorStyle.Render(line)
			case i == m.queue.Index():
				line = m.currentStyle.Render(line)
			}
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewPlayerBar() string {
	innerWidth := m.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}

	left := " ◼  nothing queued"
	if t := m.queue.Track(); t != nil {
		icon := "▶"
		if m.player.Paused() {
			icon = "⏸"
		}
		left = fmt.Sprintf(" %s  %s", icon, t.String())
	}
	if m.status != "" {
		left = " " + m.status
	}

	flags := ""
	if m.queue.Shuffle() {
		flags = "⤨  "
	}
	volume := fmt.Sprintf("%d%%", m.player.Volume())
	if m.player.Muted() {
		volume = "muted"
	}
	right := fmt.Sprintf("%s%s  %s / %s ",
		flags, volume,
		formatDuration(m.player.Elapsed()),
		formatDuration(m.player.Duration()))

	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	content := left + strings.Repeat(" ", padding) + right
	return m.barStyle.Width(innerWidth).Render(content)
}

// truncateLine cuts by display width, not rune count, so wide runes
// cannot overflow a list row.
func truncateLine(s string, width int) string {
	return runewidth.Truncate(s, width, "")
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	var program *tea.Program
	remote, err := mpris.New(func(c mpris.Command) {
		if program != nil {
			program.Send(mprisMsg(c))
		}
	})
	if err == nil {
		m.remote = remote
	}

	program = tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
