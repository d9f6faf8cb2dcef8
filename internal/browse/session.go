// Package browse owns one browsing session: the store and loader of the
// current source, the scroll mapper, and the search engine. It applies loader
// events to the store and publishes everything the presentation layer needs
// on the event bus.
package browse

import (
	"context"
	"time"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/eventbus"
	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/core/scroll"
	"github.com/colonyops/tabula/internal/core/search"
	"github.com/colonyops/tabula/internal/core/store"
	"github.com/colonyops/tabula/internal/core/table"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of the current load.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a session.
type Options struct {
	Loader   loader.Options
	Window   int
	Debounce time.Duration
	Lookback int
}

// OptionsFromConfig builds session options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Loader: loader.Options{
			BatchSize:  cfg.Loader.BatchSize,
			Delimiter:  cfg.DelimiterRune(),
			LazyQuotes: cfg.Loader.LazyQuotes,
			TrimSpace:  cfg.Loader.TrimSpace,
			NullValues: cfg.Loader.NullValues,
		},
		Window:   cfg.Window.Rows,
		Debounce: cfg.Scroll.Debounce,
		Lookback: cfg.Search.Lookback,
	}
}

// Session is the single point of truth for the current window. It is not
// safe for concurrent use: Handle, Scroll, ApplyScroll, and Search must all
// be called from one goroutine, normally the Bubble Tea Update loop.
type Session struct {
	ctx  context.Context
	opts Options
	bus  *eventbus.EventBus
	base zerolog.Logger
	log  zerolog.Logger

	mapper *scroll.Mapper
	engine *search.Engine

	gen     uint64
	path    string
	store   *store.Store
	loader  *loader.Loader
	state   State
	started time.Time
	percent int
	err     error

	result search.Result
}

// New creates a session. ctx bounds every load the session starts.
func New(ctx context.Context, opts Options, bus *eventbus.EventBus, logger zerolog.Logger) *Session {
	if opts.Window <= 0 {
		opts.Window = store.DefaultCapacity
	}

	return &Session{
		ctx:    ctx,
		opts:   opts,
		bus:    bus,
		base:   logger,
		log:    logging.Sub(logger, "session"),
		mapper: scroll.NewMapper(opts.Debounce, opts.Window),
		engine: search.New(opts.Lookback),
		store:  store.New(opts.Window),
	}
}

// Open replaces the current dataset with a fresh load of path. Any load still
// running is stopped and joined first, so at most one loader is ever active.
// The returned loader's events must be passed to Handle.
func (s *Session) Open(path string) *loader.Loader {
	s.stopLoader()
	s.mapper.Cancel()

	s.gen++
	s.path = path
	s.store = store.New(s.opts.Window)
	s.state = StateLoading
	s.started = time.Now()
	s.percent = 0
	s.err = nil
	s.result = search.Result{Column: search.AllColumns}
	s.syncMapper()

	ctx := logging.WithLoadID(logging.WithSource(s.ctx, path), s.gen)
	s.log.Info().Ctx(ctx).Msg("opening source")

	s.bus.PublishLoadStarted(eventbus.LoadStartedPayload{Path: path, Gen: s.gen})
	s.bus.PublishWindowChanged(eventbus.WindowChangedPayload{Window: s.store.Current()})

	s.loader = loader.Start(ctx, path, s.gen, s.opts.Loader, logging.Sub(s.base, "loader"))
	return s.loader
}

// Load opens path and applies every event on the calling goroutine until the
// load ends. It returns the load failure, if any.
func (s *Session) Load(path string) error {
	l := s.Open(path)
	for ev := range l.Events() {
		s.Handle(ev)
	}
	return s.err
}

// Reload opens the current path again. It returns nil when nothing is open.
func (s *Session) Reload() *loader.Loader {
	if s.path == "" {
		return nil
	}
	return s.Open(s.path)
}

// Handle applies one loader event. Events from a replaced load and batches
// that arrive after Cancel are dropped; the return value reports whether ev
// was applied.
func (s *Session) Handle(ev loader.Event) bool {
	if s.loader == nil || ev.Generation() != s.gen {
		s.log.Debug().Uint64("gen", ev.Generation()).Uint64("current", s.gen).Msg("dropping stale load event")
		return false
	}

	switch ev := ev.(type) {
	case loader.TotalEvent:
		win, moved := s.store.SetTotalRowCount(ev.Rows)
		s.syncMapper()
		s.publishProgress()
		if moved {
			s.publishWindow(win)
		}

	case loader.BatchEvent:
		if s.loader.Stopped() {
			return false
		}

		schemaSet, changed := s.store.AppendBatch(ev.Batch)
		s.syncMapper()

		if schemaSet {
			s.bus.PublishSchemaReady(eventbus.SchemaReadyPayload{Gen: s.gen, Columns: s.store.Schema()})
		}
		if changed {
			s.publishWindow(s.store.Current())
		}

	case loader.ProgressEvent:
		s.percent = max(s.percent, ev.Percent)
		s.publishProgress()

	case loader.DoneEvent:
		if ev.Cancelled {
			s.state = StateCancelled
		} else {
			s.state = StateLoaded
			if win, moved := s.store.SetTotalRowCount(ev.Loaded); moved {
				s.publishWindow(win)
			}
			s.syncMapper()
		}

		s.bus.PublishLoadCompleted(eventbus.LoadCompletedPayload{
			Path:      s.path,
			Gen:       s.gen,
			Loaded:    s.store.Len(),
			Cancelled: ev.Cancelled,
			Elapsed:   time.Since(s.started),
		})

	case loader.FailedEvent:
		s.state = StateFailed
		s.err = ev.Err
		s.bus.PublishLoadFailed(eventbus.LoadFailedPayload{
			Path:   s.path,
			Gen:    s.gen,
			Err:    ev.Err,
			Loaded: s.store.Len(),
		})

	default:
		return false
	}

	return true
}

// Cancel requests that the running load stop at its next batch boundary.
// Batches that arrive afterwards are dropped.
func (s *Session) Cancel() {
	if s.loader != nil && s.state == StateLoading {
		s.loader.Stop()
	}
}

// Close stops the running load, joins it, and stops the scroll mapper.
func (s *Session) Close() {
	s.stopLoader()
	s.mapper.Stop()
}

func (s *Session) stopLoader() {
	if s.loader == nil {
		return
	}
	s.loader.Stop()
	s.loader.Wait()
}

// Scroll feeds a raw scroll position to the debouncing mapper. Positions run
// from 0 to ScrollRange and correspond one-to-one with window offsets.
func (s *Session) Scroll(position int) {
	s.mapper.Update(position)
}

// ScrollRequests returns the channel of debounced offset requests.
func (s *Session) ScrollRequests() <-chan scroll.Request {
	return s.mapper.Requests()
}

// ApplyScroll moves the window for a debounced request. Superseded requests
// are ignored.
func (s *Session) ApplyScroll(req scroll.Request) (store.Window, bool) {
	if !s.mapper.IsCurrent(req) {
		return s.store.Current(), false
	}
	return s.SetOffset(req.Offset)
}

// ScrollRange returns the maximum scroll position.
func (s *Session) ScrollRange() int {
	return max(s.store.Total()-s.store.Capacity(), 0)
}

// SetOffset moves the window directly and publishes the change.
func (s *Session) SetOffset(offset int) (store.Window, bool) {
	win, changed := s.store.SetOffset(offset)
	if changed {
		s.publishWindow(win)
	}
	return win, changed
}

// Search runs query over every row loaded so far. An empty query clears the
// previous result and leaves the window alone.
func (s *Session) Search(query string, column int) search.Result {
	before := s.store.Offset()

	s.result = s.engine.Search(s.store, query, column)
	if query == "" {
		return s.result
	}

	s.log.Debug().
		Str("query", query).
		Int("column", column).
		Int("matches", s.result.Count()).
		Int("scanned", s.result.Scanned).
		Msg("search")

	s.bus.PublishSearchCompleted(eventbus.SearchCompletedPayload{Result: s.result})
	if s.result.Moved {
		s.mapper.Cancel()
		if s.result.Window.Offset != before {
			s.publishWindow(s.result.Window)
		}
	}
	return s.result
}

// NextMatch moves the window to the next match of the last search.
func (s *Session) NextMatch() (int, bool) {
	row, ok := s.result.Next()
	if !ok {
		return 0, false
	}
	s.jump()
	return row, true
}

// PrevMatch moves the window to the previous match of the last search.
func (s *Session) PrevMatch() (int, bool) {
	row, ok := s.result.Prev()
	if !ok {
		return 0, false
	}
	s.jump()
	return row, true
}

func (s *Session) jump() {
	before := s.store.Offset()
	win, ok := s.engine.Jump(s.store, &s.result)
	if !ok {
		return
	}
	s.mapper.Cancel()
	if win.Offset != before {
		s.publishWindow(win)
	}
}

// ColumnIndex resolves a column name against the current schema. An empty
// name selects every column.
func (s *Session) ColumnIndex(name string) (int, bool) {
	if name == "" {
		return search.AllColumns, true
	}
	idx := s.store.Schema().Index(name)
	return idx, idx >= 0
}

// Window returns the current window.
func (s *Session) Window() store.Window { return s.store.Current() }

// Store returns the store of the current load.
func (s *Session) Store() *store.Store { return s.store }

// Schema returns the current schema, nil before the first batch.
func (s *Session) Schema() table.Schema { return s.store.Schema() }

// Result returns the last search result.
func (s *Session) Result() search.Result { return s.result }

// State returns the lifecycle state of the current load.
func (s *Session) State() State { return s.state }

// Err returns the failure of the current load, if any.
func (s *Session) Err() error { return s.err }

// Path returns the path of the current source.
func (s *Session) Path() string { return s.path }

// Generation returns the generation of the current load.
func (s *Session) Generation() uint64 { return s.gen }

// Progress returns the latest progress percentage, rows loaded, and the row
// total used for clamping.
func (s *Session) Progress() (percent, loaded, total int) {
	return s.percent, s.store.Len(), s.store.Total()
}

// Elapsed returns the time since the current load started.
func (s *Session) Elapsed() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

func (s *Session) syncMapper() {
	s.mapper.SetTotal(s.store.Total())
	s.mapper.SetRange(s.ScrollRange())
}

func (s *Session) publishProgress() {
	s.bus.PublishLoadProgress(eventbus.LoadProgressPayload{
		Gen:     s.gen,
		Percent: s.percent,
		Loaded:  s.store.Len(),
		Total:   s.store.Total(),
	})
}

func (s *Session) publishWindow(win store.Window) {
	s.bus.PublishWindowChanged(eventbus.WindowChangedPayload{Window: win})
}
