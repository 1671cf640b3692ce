package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/brandtint/brandtint/internal/colour"
	"github.com/brandtint/brandtint/internal/fuse"
	imageutil "github.com/brandtint/brandtint/internal/image"
	"github.com/brandtint/brandtint/internal/ratelimit"
	"github.com/brandtint/brandtint/internal/render"
	"github.com/brandtint/brandtint/internal/security"
	"github.com/brandtint/brandtint/internal/theme"
)

// rateLimitKind keys extraction requests in the rate limiter.
const rateLimitKind = "extract"

// minVisualColours is the smallest non-neutral visual palette worth fusing;
// below it, fusion proceeds on structural and declared evidence alone.
const minVisualColours = 2

// SessionFactory opens a rendering session for a validated target.
type SessionFactory func(ctx context.Context, target security.ResolvedTarget, opts render.SessionOptions) (render.Session, error)

// Options configures a Pipeline. All collaborators are constructor-injected
// so tests can run deterministically and in parallel.
type Options struct {
	Logger            hclog.Logger
	Limiter           *ratelimit.Limiter
	Resolver          *security.Resolver
	Sessions          SessionFactory
	NavigationTimeout time.Duration
}

// Pipeline derives a brand-consistent UI theme from an image or a website.
type Pipeline struct {
	logger     hclog.Logger
	limiter    *ratelimit.Limiter
	resolver   *security.Resolver
	sessions   SessionFactory
	navTimeout time.Duration
	kmeans     *colour.KMeansExtractor
	hueBins    *colour.HueBinExtractor
	fuser      *fuse.Fuser
}

// Result is the outcome of a successful extraction.
type Result struct {
	ID          string              `json:"id"`
	Origin      string              `json:"origin"`
	Palette     []string            `json:"palette"`
	Scored      []fuse.ScoredColour `json:"scored,omitempty"`
	Theme       theme.ThemeColours  `json:"theme"`
	ExtractedAt time.Time           `json:"extractedAt"`
}

// New creates a Pipeline. Missing collaborators get production defaults;
// a nil session factory uses headless Chrome.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = security.NewResolver()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = func(ctx context.Context, target security.ResolvedTarget, sessionOpts render.SessionOptions) (render.Session, error) {
			return render.NewChromeSession(ctx, target, sessionOpts)
		}
	}
	navTimeout := opts.NavigationTimeout
	if navTimeout == 0 {
		navTimeout = render.DefaultNavigationTimeout
	}

	return &Pipeline{
		logger:     logger,
		limiter:    opts.Limiter,
		resolver:   resolver,
		sessions:   sessions,
		navTimeout: navTimeout,
		kmeans:     colour.NewKMeansExtractor(),
		hueBins:    colour.NewHueBinExtractor(),
		fuser:      fuse.New(),
	}
}

// FromImage derives a theme from an encoded raster image.
func (p *Pipeline) FromImage(ctx context.Context, data []byte, userKey, ipKey string) (*Result, error) {
	if err := p.checkRate(userKey, ipKey); err != nil {
		return nil, err
	}

	pixels, err := imageutil.DecodePixels(data)
	if err != nil {
		return nil, invalidInput("image could not be decoded", err)
	}

	palette, err := p.kmeans.ExtractSaturated(pixels, colour.SaturatedPaletteSize)
	if err != nil {
		return nil, extractionFailed("clustering produced no usable signal", err)
	}

	// Images carry no structural evidence; fusing with empty maps still
	// applies the anchor filter and the palette cap.
	scored := p.fuser.Fuse(palette.Colours, nil, nil)
	if len(scored) == 0 {
		return nil, extractionFailed("no usable theme anchors in image", nil)
	}

	return p.result("image", scored), nil
}

// FromURL derives a theme from a live website. The URL is validated and its
// host pinned before a rendering session opens; the screenshot, declared
// style variables, and role-tagged element colours are then gathered
// concurrently, fused, and synthesized into a theme.
func (p *Pipeline) FromURL(ctx context.Context, rawURL, userKey, ipKey string) (*Result, error) {
	if err := p.checkRate(userKey, ipKey); err != nil {
		return nil, err
	}

	target, err := p.resolver.ResolveAndPin(ctx, rawURL)
	if err != nil {
		var blocked *security.BlockedError
		if errors.As(err, &blocked) {
			return nil, securityBlocked(blocked.Reason, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, timeoutErr("DNS resolution timed out", err)
		}
		return nil, invalidInput("URL failed validation", err)
	}

	session, err := p.sessions(ctx, target, render.SessionOptions{
		NavigationTimeout: p.navTimeout,
		Logger:            p.logger.Named("render"),
	})
	if err != nil {
		return nil, extractionFailed("rendering session could not start", err)
	}
	defer session.Close()

	// Page-triggered redirects are re-validated against the same boundary,
	// including resolving the new hostname and vetting every DNS answer;
	// a redirect host must not reach an address the original could not.
	session.OnNavigate(func(url string) error {
		_, err := p.resolver.ResolveAndPin(ctx, url)
		return err
	})

	if err := session.Navigate(ctx, target.URL.String()); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, timeoutErr("page navigation timed out", err)
		}
		return nil, extractionFailed("page navigation failed", err)
	}

	signals := render.CollectSignals(ctx, session, p.logger)

	pixelColours := p.visualPalette(signals.Screenshot)
	domColours := signals.Roles.DOMColourMap()
	styleVars := render.ParseStyleVariables(signals.StyleVariables)

	if len(pixelColours) == 0 && len(domColours) == 0 && len(styleVars) == 0 {
		return nil, extractionFailed("page yielded no colour evidence", nil)
	}

	scored := p.fuser.Fuse(pixelColours, domColours, styleVars)
	if len(scored) == 0 {
		return nil, extractionFailed("no usable theme anchors on page", nil)
	}

	return p.result("website", scored), nil
}

// visualPalette extracts hue-binned colours from the screenshot. A missing
// or undecodable screenshot, or one with too few non-neutral colours,
// degrades to no visual evidence so fusion can proceed on structural and
// declared signals alone.
func (p *Pipeline) visualPalette(screenshot []byte) []colour.WeightedColour {
	if len(screenshot) == 0 {
		return nil
	}

	pixels, err := imageutil.DecodePixels(screenshot)
	if err != nil {
		p.logger.Debug("screenshot decode failed", "error", err)
		return nil
	}

	palette, err := p.hueBins.Extract(pixels)
	if err != nil {
		p.logger.Debug("hue-partitioned extraction failed", "error", err)
		return nil
	}

	nonNeutral := 0
	for _, c := range palette.Colours {
		if !colour.IsNeutral(c.RGB) {
			nonNeutral++
		}
	}
	if nonNeutral < minVisualColours {
		p.logger.Debug("too few non-neutral visual colours, using structural evidence only",
			"non_neutral", nonNeutral)
		return nil
	}

	return palette.Colours
}

// checkRate consults the injected limiter, if any.
func (p *Pipeline) checkRate(userKey, ipKey string) error {
	if p.limiter == nil {
		return nil
	}
	decision := p.limiter.Check(rateLimitKind, userKey, ipKey)
	if !decision.Allowed {
		return rateLimited(decision.RetryAfter)
	}
	return nil
}

// result assembles the caller-facing result from a fused palette.
func (p *Pipeline) result(origin string, scored []fuse.ScoredColour) *Result {
	palette := make([]string, len(scored))
	rgbs := make([]colour.RGB, len(scored))
	for i, s := range scored {
		palette[i] = s.Hex
		rgbs[i] = s.RGB
	}

	return &Result{
		ID:          uuid.NewString(),
		Origin:      origin,
		Palette:     palette,
		Scored:      scored,
		Theme:       theme.Synthesize(rgbs),
		ExtractedAt: time.Now().UTC(),
	}
}
