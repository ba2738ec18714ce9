// Package inat is the iNaturalist query plugin. It answers "query"
// commands by parsing the user's text, and reaction follow-ups by merging
// the user's reply into the query recovered from the message they reacted to.
package inat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dronefly-project/dronefly/am"
	"github.com/dronefly-project/dronefly/embed"
	"github.com/dronefly-project/dronefly/errors"
	"github.com/dronefly-project/dronefly/logger"
	"github.com/dronefly-project/dronefly/parser"
	"github.com/dronefly-project/dronefly/plugin"
	"github.com/dronefly-project/dronefly/query"
	"github.com/dronefly-project/dronefly/version"
)

// Sentinel errors returned to the host.
var (
	ErrPaused      = errors.New("plugin is paused")
	ErrRateLimited = errors.New("too many refinements, try again shortly")
	ErrBusy        = errors.New("a refinement of this message is already in progress")
)

// Request identifies where a command or interaction came from.
type Request struct {
	GuildID   string
	ChannelID string
	UserID    string
	MessageID string
}

// Result is a parsed query with the text the host shows for it.
type Result struct {
	Query     query.Query
	Canonical string // canonical query text, reparses to Query
	Dates     string // e.g. "observed since Jun 1, 2021", "" if no dates
	RequestID string
	Elapsed   time.Duration
}

// Plugin implements plugin.PausablePlugin for iNaturalist queries.
type Plugin struct {
	parser atomic.Pointer[parser.Parser]
	paused atomic.Bool

	mu       sync.Mutex
	cfg      *am.Config
	log      *zap.SugaredLogger
	watcher  *am.ConfigWatcher
	limiters map[string]*rate.Limiter
	locks    *plugin.KeyedLocks
	state    plugin.PluginState
}

var _ plugin.PausablePlugin = (*Plugin)(nil)

// New creates an uninitialized plugin with the default macros.
func New() *Plugin {
	p := &Plugin{
		cfg:      am.Default(),
		log:      logger.ComponentLogger("plugin.inat"),
		limiters: make(map[string]*rate.Limiter),
		locks:    plugin.NewKeyedLocks(),
		state:    plugin.StateLoading,
	}
	p.parser.Store(parser.New())
	return p
}

// Metadata describes the plugin to the host.
func (p *Plugin) Metadata() plugin.Metadata {
	p.mu.Lock()
	name := p.cfg.Plugin.Name
	p.mu.Unlock()
	return plugin.Metadata{
		Name:        name,
		Version:     version.Get().Version,
		HostVersion: version.HostConstraint,
		Description: "iNaturalist observation and taxon queries",
		Author:      "dronefly",
		License:     "AGPL-3.0",
	}
}

// Initialize applies the configuration and, when enabled, starts watching
// the config file so macro changes take effect without a restart.
func (p *Plugin) Initialize(ctx context.Context, services plugin.ServiceRegistry) error {
	cfg := services.Config()
	if err := cfg.Validate(); err != nil {
		p.setState(plugin.StateFailed)
		return errors.Wrap(err, "inat plugin config")
	}

	p.mu.Lock()
	p.cfg = cfg
	p.log = services.Logger(cfg.Plugin.Name)
	p.mu.Unlock()
	p.applyMacros(cfg)

	if path := services.ConfigPath(); cfg.Plugin.WatchConfig && path != "" {
		watcher, err := am.NewConfigWatcher(path)
		if err != nil {
			// Not fatal: the plugin runs with the config it has
			p.log.Warnw("config watch unavailable", logger.FieldFile, path, logger.FieldError, err)
		} else {
			watcher.OnReload(p.Reload)
			watcher.Start()
			p.mu.Lock()
			p.watcher = watcher
			p.mu.Unlock()
		}
	}

	p.setState(plugin.StateRunning)
	p.log.Infow("inat plugin initialized", "macros", len(p.Macros()))
	return nil
}

// Reload swaps in a new macro table and rate limits from cfg. In-flight
// parses finish with the parser they started with.
func (p *Plugin) Reload(cfg *am.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.cfg = cfg
	p.limiters = make(map[string]*rate.Limiter)
	p.mu.Unlock()
	p.applyMacros(cfg)
	p.log.Infow("inat plugin reloaded", "macros", len(p.Macros()))
	return nil
}

func (p *Plugin) applyMacros(cfg *am.Config) {
	p.parser.Store(parser.New(parser.WithMacros(cfg.Parser.Macros)))
}

// Macros returns the macro table currently in use.
func (p *Plugin) Macros() parser.MacroTable {
	return p.parser.Load().Macros()
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	watcher := p.watcher
	p.watcher = nil
	p.state = plugin.StateStopped
	p.mu.Unlock()

	if watcher != nil {
		return watcher.Stop()
	}
	return nil
}

// Health reports whether the plugin is taking requests.
func (p *Plugin) Health(ctx context.Context) plugin.HealthStatus {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()

	return plugin.HealthStatus{
		Healthy: state == plugin.StateRunning || state == plugin.StatePaused,
		Paused:  state == plugin.StatePaused,
		Message: string(state),
		Details: map[string]interface{}{
			"macros":        len(p.Macros()),
			"pending_locks": p.locks.Len(),
		},
	}
}

// Pause makes the plugin refuse new requests.
func (p *Plugin) Pause(ctx context.Context) error {
	p.paused.Store(true)
	p.setState(plugin.StatePaused)
	return nil
}

// Resume lifts a pause.
func (p *Plugin) Resume(ctx context.Context) error {
	p.paused.Store(false)
	p.setState(plugin.StateRunning)
	return nil
}

func (p *Plugin) setState(state plugin.PluginState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// requestContext attaches a fresh request id and the request's origin to ctx.
func requestContext(ctx context.Context, req Request) (context.Context, string) {
	id := uuid.NewString()
	ctx = logger.WithRequestID(ctx, id)
	ctx = logger.WithChannel(ctx, req.GuildID, req.ChannelID)
	return logger.WithComponent(ctx, "plugin.inat"), id
}

// Query parses a command's text, or passes a structured query through.
func (p *Plugin) Query(ctx context.Context, req Request, in query.Input) (Result, error) {
	if p.paused.Load() {
		return Result{}, ErrPaused
	}
	ctx, requestID := requestContext(ctx, req)
	log := logger.LoggerFromContext(ctx)

	start := time.Now()
	q, err := p.parser.Load().Resolve(in)
	if err != nil {
		log.Infow("query rejected", logger.FieldUserID, req.UserID, logger.FieldError, err)
		return Result{RequestID: requestID}, err
	}

	res := newResult(q, requestID, time.Since(start))
	log.Debugw("query parsed",
		logger.FieldUserID, req.UserID,
		logger.FieldCanonical, res.Canonical,
		logger.FieldDurationMS, res.Elapsed.Milliseconds())
	return res, nil
}

// Refine handles a follow-up on a rendered message: text is parsed as a
// fresh query and laid over the state recovered from msg. Follow-ups on one
// message are handled one at a time, and each user is rate limited.
func (p *Plugin) Refine(ctx context.Context, req Request, msg embed.Message, text string) (Result, error) {
	if p.paused.Load() {
		return Result{}, ErrPaused
	}
	ctx, requestID := requestContext(ctx, req)
	log := logger.LoggerFromContext(ctx)

	if !p.limiter(req.UserID).Allow() {
		log.Infow("refine rate limited", logger.FieldUserID, req.UserID)
		return Result{RequestID: requestID}, ErrRateLimited
	}

	unlock, ok := p.locks.TryLock(req.MessageID + ":" + req.UserID)
	if !ok {
		return Result{RequestID: requestID}, ErrBusy
	}
	defer unlock()

	start := time.Now()
	fresh, err := p.parser.Load().Parse(strings.TrimSpace(text))
	if err != nil {
		log.Infow("refinement rejected",
			logger.FieldUserID, req.UserID,
			logger.FieldMessageID, req.MessageID,
			logger.FieldError, err)
		return Result{RequestID: requestID}, err
	}

	merged := embed.FromMessage(msg).Merge(fresh)
	res := newResult(merged, requestID, time.Since(start))
	log.Debugw("query refined",
		logger.FieldMessageID, req.MessageID,
		logger.FieldQuery, text,
		logger.FieldCanonical, res.Canonical,
		logger.FieldDurationMS, res.Elapsed.Milliseconds())
	return res, nil
}

// ObservationsURL returns the partner-site search link for resolved ids.
func (p *Plugin) ObservationsURL(resp query.Response) string {
	p.mu.Lock()
	base := p.cfg.GetWWWBaseURL()
	p.mu.Unlock()
	return resp.ObsURL(base)
}

// limiter returns the user's refinement limiter, or an unlimited one when
// plugin.refines_per_minute is 0.
func (p *Plugin) limiter(userID string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.limiters[userID]; ok {
		return l
	}
	perMinute := p.cfg.Plugin.RefinesPerMinute
	var l *rate.Limiter
	if perMinute <= 0 {
		l = rate.NewLimiter(rate.Inf, 0)
	} else {
		burst := p.cfg.Plugin.RefineBurst
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Limit(perMinute/60.0), burst)
	}
	p.limiters[userID] = l
	return l
}

func newResult(q query.Query, requestID string, took time.Duration) Result {
	return Result{
		Query:     q,
		Canonical: q.String(),
		Dates:     q.DateDescription(),
		RequestID: requestID,
		Elapsed:   took,
	}
}
