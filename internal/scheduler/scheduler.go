// Package scheduler runs the auto-refresh and digest jobs and answers bot commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"DipWatch/internal/analysis"
	"DipWatch/internal/markethours"
	"DipWatch/internal/model"
	"DipWatch/internal/notifier"
	"DipWatch/internal/recorder"
	"DipWatch/internal/session"
	"DipWatch/internal/strategy"
	"DipWatch/internal/watch"
)

// Sender delivers a message to one chat.
type Sender interface {
	SendWithRetry(ctx context.Context, chatID, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron         *cron.Cron
	Analyzer     *analysis.Analyzer
	Watches      *watch.Manager
	Sessions     *session.Store
	Notifier     Sender
	Recorder     recorder.Recorder
	Ctx          context.Context
	OnlyWhenOpen bool
	TableRows    int
	Now          func() time.Time

	refreshMu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an *analysis.Analyzer, wm *watch.Manager, sessions *session.Store, tn Sender, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analyzer:  an,
		Watches:   wm,
		Sessions:  sessions,
		Notifier:  tn,
		Recorder:  rec,
		Ctx:       ctx,
		TableRows: 10,
		Now:       time.Now,
	}
}

// RegisterAll registers the refresh, digest and session sweep tasks.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.RefreshNow); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, s.DigestNow); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	// Session sweep: every 10 minutes
	if _, err := s.Cron.AddFunc("0 */10 * * * *", func() {
		if n := s.Sessions.Sweep(); n > 0 {
			log.Printf("[INFO] swept %d idle sessions", n)
		}
	}); err != nil {
		return fmt.Errorf("register session sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNow re-runs the pass for every watched symbol, one after another.
// A tick that fires while the previous one is still running is dropped.
func (s *Scheduler) RefreshNow() {
	if !s.refreshMu.TryLock() {
		log.Println("[WARN] previous refresh still running, skipping tick")
		return
	}
	defer s.refreshMu.Unlock()

	symbols, chats := s.Watches.Symbols()
	now := s.now()
	for _, sym := range symbols {
		if s.Ctx.Err() != nil {
			return
		}
		if s.OnlyWhenOpen && !markethours.ForSymbol(sym).IsOpen(now) {
			s.Analyzer.Metrics.RefreshSkips.Inc()
			continue
		}
		res, err := s.Analyzer.RunSymbol(s.Ctx, "refresh", sym, sym)
		if err != nil {
			log.Printf("[WARN] refresh %s: %v", sym, err)
			continue
		}
		for _, chatID := range chats[sym] {
			s.observe(chatID, res)
		}
	}
}

// observe stores the latest zone for a chat's watch and sends any alerts it triggers.
func (s *Scheduler) observe(chatID string, res *model.Analysis) {
	if !res.Summary.LatestRSI.Valid {
		return
	}
	prev, ok := s.Watches.Observe(chatID, res.Symbol, string(res.Summary.Zone), res.Summary.LatestRSI.Float64)
	if !ok {
		return
	}
	alerts := strategy.Evaluate(strategy.Previous{Zone: model.RSIZone(prev.LastZone), RSI: prev.LastRSI}, res)
	for _, alert := range alerts {
		s.trySend(chatID, notifier.FormatAlert(alert))
		if err := s.Recorder.RecordAlert(&recorder.AlertEvent{
			ChatID:   chatID,
			Symbol:   alert.Symbol,
			Kind:     string(alert.Kind),
			FromZone: string(alert.FromZone),
			ToZone:   string(alert.ToZone),
			RSI:      alert.RSI,
			Price:    alert.Price,
		}); err != nil {
			log.Printf("[ERROR] record alert: %v", err)
		}
	}
}

// DigestNow sends every chat a summary of its watched symbols.
func (s *Scheduler) DigestNow() {
	log.Println("[INFO] running daily digest")
	cache := make(map[string]notifier.DigestItem)
	for _, chatID := range s.Watches.Chats() {
		entries := s.Watches.List(chatID)
		items := make([]notifier.DigestItem, 0, len(entries))
		for _, e := range entries {
			it, ok := cache[e.Symbol]
			if !ok {
				res, err := s.Analyzer.RunSymbol(s.Ctx, "digest", e.Input, e.Symbol)
				it = notifier.DigestItem{Symbol: e.Symbol, Analysis: res, Err: err}
				cache[e.Symbol] = it
			}
			items = append(items, it)
		}
		s.trySend(chatID, notifier.FormatDigest(items, s.now()))
	}
}

// HandleCommand processes one chat message and returns the reply.
func (s *Scheduler) HandleCommand(chatID, text string) string {
	text = strings.TrimSpace(text)
	cmd, arg := text, ""
	if strings.HasPrefix(text, "/") {
		if i := strings.IndexAny(text, " \t"); i > 0 {
			cmd, arg = text[:i], strings.TrimSpace(text[i+1:])
		}
		// "/watch@MyBot saab" in group chats
		if i := strings.Index(cmd, "@"); i > 0 {
			cmd = cmd[:i]
		}
	}

	switch cmd {
	case "/start", "/help":
		return notifier.FormatHelp()
	case "/watch":
		return s.watch(chatID, arg)
	case "/unwatch":
		return s.unwatch(chatID, arg)
	case "/watches":
		return notifier.FormatWatches(s.Watches.List(chatID))
	}
	if strings.HasPrefix(cmd, "/") {
		return notifier.FormatHelp()
	}
	return s.analyze(chatID, text)
}

func (s *Scheduler) analyze(chatID, input string) string {
	res, err := s.Analyzer.Run(s.Ctx, "telegram", input)
	if err != nil {
		return notifier.FormatFailure(err)
	}
	if s.Sessions != nil {
		s.Sessions.Touch(session.ChatID(chatID), input, res.Symbol)
	}
	return notifier.FormatAnalysis(res, s.TableRows)
}

func (s *Scheduler) watch(chatID, input string) string {
	sym, err := s.Analyzer.Resolve(s.Ctx, input)
	if err != nil {
		return notifier.FormatFailure(err)
	}
	switch err := s.Watches.Add(chatID, input, sym); {
	case errors.Is(err, watch.ErrAlreadyWatched):
		return fmt.Sprintf("Already watching %s.", sym)
	case errors.Is(err, watch.ErrLimitReached):
		return fmt.Sprintf("You can watch at most %d symbols.", watch.MaxPerChat)
	case err != nil:
		log.Printf("[ERROR] add watch: %v", err)
		return "Something went wrong, please try again."
	}
	return fmt.Sprintf("👀 Watching %s. You will get a message when its RSI zone changes.", sym)
}

func (s *Scheduler) unwatch(chatID, input string) string {
	sym, err := s.Analyzer.Resolve(s.Ctx, input)
	if err != nil {
		// fall back to the literal symbol so delisted tickers can still be removed
		sym = strings.ToUpper(strings.TrimSpace(input))
	}
	if err := s.Watches.Remove(chatID, sym); err != nil {
		return fmt.Sprintf("Not watching %s.", sym)
	}
	return fmt.Sprintf("Stopped watching %s.", sym)
}

func (s *Scheduler) trySend(chatID, text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, chatID, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
