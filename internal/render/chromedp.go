package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/hashicorp/go-hclog"

	"github.com/brandtint/brandtint/internal/security"
)

// DefaultNavigationTimeout bounds page navigation and in-page evaluation.
const DefaultNavigationTimeout = 30 * time.Second

// SessionOptions configures a Chrome rendering session.
type SessionOptions struct {
	// NavigationTimeout bounds Navigate and each evaluation; zero means
	// DefaultNavigationTimeout.
	NavigationTimeout time.Duration

	// Logger receives session lifecycle events. Nil means no logging.
	Logger hclog.Logger
}

// ChromeSession renders pages in a sandboxed headless Chrome supervised via
// the DevTools protocol. The browser's resolver is pinned so the validated
// hostname can only reach the pinned address, and every document navigation
// is re-validated before it proceeds.
type ChromeSession struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      hclog.Logger

	mu        sync.Mutex
	validate  func(url string) error
	closeOnce sync.Once
}

var _ Session = (*ChromeSession)(nil)

// NewChromeSession starts a headless browser session for the resolved
// target. The session inherits cancellation from the parent context and
// must be closed by the caller on every path.
func NewChromeSession(parent context.Context, target security.ResolvedTarget, opts SessionOptions) (*ChromeSession, error) {
	timeout := opts.NavigationTimeout
	if timeout == 0 {
		timeout = DefaultNavigationTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Pin the validated hostname to the resolved address so a second
		// DNS answer cannot redirect the session (anti-rebinding).
		chromedp.Flag("host-resolver-rules",
			fmt.Sprintf("MAP %s %s", target.Hostname, target.IP)),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("js-flags", "--jitless"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		timeout:     timeout,
		logger:      logger,
	}

	// Pause every document request so page-triggered redirects can be
	// re-validated before they proceed.
	chromedp.ListenTarget(ctx, s.onFetchEvent)

	pattern := &fetch.RequestPattern{ResourceType: network.ResourceTypeDocument}
	if err := chromedp.Run(ctx, fetch.Enable().WithPatterns([]*fetch.RequestPattern{pattern})); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start rendering session: %w", err)
	}

	return s, nil
}

// OnNavigate registers the navigation re-validation callback.
func (s *ChromeSession) OnNavigate(validate func(url string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validate = validate
}

// onFetchEvent resumes or aborts paused document requests.
func (s *ChromeSession) onFetchEvent(ev interface{}) {
	paused, ok := ev.(*fetch.EventRequestPaused)
	if !ok {
		return
	}

	s.mu.Lock()
	validate := s.validate
	s.mu.Unlock()

	// Continue/fail calls must not run on the event goroutine.
	go func() {
		c := chromedp.FromContext(s.ctx)
		ectx := cdp.WithExecutor(s.ctx, c.Target)

		if validate != nil {
			if err := validate(paused.Request.URL); err != nil {
				s.logger.Warn("navigation aborted",
					"url", paused.Request.URL, "reason", err)
				_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
				return
			}
		}
		_ = fetch.ContinueRequest(paused.RequestID).Do(ectx)
	}()
}

// Navigate loads the URL, bounded by the session's navigation timeout.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.boundedContext(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// StyleVariables evaluates the fixed style-variable extraction script.
func (s *ChromeSession) StyleVariables(ctx context.Context) ([]string, error) {
	runCtx, cancel := s.boundedContext(ctx)
	defer cancel()

	var values []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(styleVariablesScript, &values)); err != nil {
		return nil, fmt.Errorf("style variable extraction failed: %w", err)
	}
	return values, nil
}

// RoleColours evaluates the fixed role-colour extraction script.
func (s *ChromeSession) RoleColours(ctx context.Context) (RoleColourSets, error) {
	runCtx, cancel := s.boundedContext(ctx)
	defer cancel()

	var roles RoleColourSets
	if err := chromedp.Run(runCtx, chromedp.Evaluate(roleColoursScript, &roles)); err != nil {
		return RoleColourSets{}, fmt.Errorf("role colour extraction failed: %w", err)
	}
	return roles, nil
}

// Screenshot captures the rendered viewport as PNG bytes.
func (s *ChromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel := s.boundedContext(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}

// boundedContext derives a run context that honours both the caller's
// context and the session's timeout.
func (s *ChromeSession) boundedContext(caller context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancelTimeout := context.WithTimeout(s.ctx, s.timeout)

	// Propagate caller cancellation into the session-derived context.
	stop := context.AfterFunc(caller, cancelTimeout)
	return runCtx, func() {
		stop()
		cancelTimeout()
	}
}

// Close tears down the browser session. Safe to call more than once; runs
// on both success and failure paths.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancelCtx()
		s.cancelAlloc()
	})
	return nil
}
