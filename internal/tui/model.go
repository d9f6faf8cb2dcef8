// Package tui implements the interactive table browser.
package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/tabula/internal/browse"
	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/eventbus"
	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/scroll"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/internal/tui/components"
)

// UIState represents the current input mode of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateSearching
	stateShowingHelp
)

// Rows taken by everything except the table body: title, column header,
// header separator, and status line.
const chromeRows = 4

// Options configures the TUI.
type Options struct {
	Path    string
	Config  *config.Config
	Session *browse.Session
	Bus     *eventbus.EventBus
	Watcher *browse.SourceWatcher // optional
	Logger  zerolog.Logger
}

// Model is the main Bubble Tea model for the table browser.
type Model struct {
	path    string
	session *browse.Session
	loader  *loader.Loader
	watcher *browse.SourceWatcher
	log     zerolog.Logger

	keys       KeyMap
	table      *TableView
	search     SearchBar
	spinner    spinner.Model
	helpDialog *components.HelpDialog

	toastController *ToastController
	toastView       *ToastView
	status          *statusFeed

	state  UIState
	width  int
	height int

	// top is the dataset index of the first visible row and cursor the
	// dataset index of the selected row.
	top       int
	cursor    int
	colOffset int
	scrollPos int

	quitting bool
}

// statusFeed collects status notifications published on the bus while a
// message is being handled. The model drains it at the end of Update.
type statusFeed struct {
	last    notify.Notification
	pending []notify.Notification
}

func (f *statusFeed) push(n notify.Notification) {
	f.last = n
	f.pending = append(f.pending, n)
}

func (f *statusFeed) drain() []notify.Notification {
	out := f.pending
	f.pending = nil
	return out
}

type (
	openSourceMsg  struct{}
	loaderEventMsg struct {
		gen uint64
		ev  loader.Event
	}
	loaderClosedMsg  struct{ gen uint64 }
	scrollRequestMsg struct{ req scroll.Request }
)

// New creates the model. The source is opened by the first command returned
// from Init.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SearchPromptStyle

	toastController := NewToastController()
	feed := &statusFeed{}
	if opts.Bus != nil {
		opts.Bus.SubscribeStatusChanged(func(p eventbus.StatusChangedPayload) {
			feed.push(p.Notification)
		})
	}

	return Model{
		path:            opts.Path,
		session:         opts.Session,
		watcher:         opts.Watcher,
		log:             logging.Sub(opts.Logger, "tui"),
		keys:            DefaultKeyMap(),
		table:           NewTableView(cfg.TUI.MaxColumnWidth, cfg.TUI.HiddenColumns),
		search:          NewSearchBar(),
		spinner:         s,
		toastController: toastController,
		toastView:       NewToastView(toastController),
		status:          feed,
	}
}

// Init opens the source and starts the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		func() tea.Msg { return openSourceMsg{} },
		listenScroll(m.session.ScrollRequests()),
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Start())
	}
	return tea.Batch(cmds...)
}

// listenLoader waits for the next event of l.
func listenLoader(l *loader.Loader) tea.Cmd {
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-l.Events()
		if !ok {
			return loaderClosedMsg{gen: l.Generation()}
		}
		return loaderEventMsg{gen: l.Generation(), ev: ev}
	}
}

// listenScroll waits for the next debounced scroll request.
func listenScroll(ch <-chan scroll.Request) tea.Cmd {
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			// mapper stopped
			return nil
		}
		return scrollRequestMsg{req: req}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	return m, tea.Batch(cmd, m.flushStatus())
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case openSourceMsg:
		return m.openSource(false)
	case loaderEventMsg:
		return m.handleLoaderEvent(msg)
	case loaderClosedMsg:
		return m, nil
	case scrollRequestMsg:
		return m.handleScrollRequest(msg)
	case browse.SourceChangedMsg:
		return m.handleSourceChanged(msg)

	case toastTickMsg:
		m.toastController.Tick(toastTickInterval)
		if m.toastController.HasToasts() {
			return m, scheduleToastTick()
		}
		return m, nil
	case spinner.TickMsg:
		if m.session.State() != browse.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.state == stateSearching {
		var cmd tea.Cmd
		m.search, cmd, _ = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// flushStatus turns status notifications published during the last message
// into toasts. Search results only update the status line while the query is
// being typed.
func (m *Model) flushStatus() tea.Cmd {
	pending := m.status.drain()
	if len(pending) == 0 {
		return nil
	}

	hadToasts := m.toastController.HasToasts()
	for _, n := range pending {
		if m.state == stateSearching {
			continue
		}
		m.toastController.Push(n)
	}

	if !hadToasts && m.toastController.HasToasts() {
		return scheduleToastTick()
	}
	return nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.session.Cancel()
	return m, tea.Quit
}
