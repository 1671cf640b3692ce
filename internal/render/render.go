// Package render defines the contract the extraction pipeline requires from
// a page renderer, and supervises evidence gathering against a session.
package render

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/brandtint/brandtint/internal/colour"
	"github.com/brandtint/brandtint/internal/fuse"
)

// RoleColourSets holds the raw computed colour strings observed for each
// structural element role, in document order, bounded per role.
type RoleColourSets struct {
	Logo         []string `json:"logo"`
	CallToAction []string `json:"callToAction"`
	Accent       []string `json:"accent"`
	Heading      []string `json:"heading"`
	Navigation   []string `json:"navigation"`
}

// Session is the capability set the pipeline requires from a page renderer.
// Implementations must guarantee teardown on Close regardless of how the
// session ended.
type Session interface {
	// Navigate loads the target URL, bounded by the session's navigation
	// timeout.
	Navigate(ctx context.Context, url string) error

	// OnNavigate registers a callback invoked for every subsequent
	// navigation (e.g. a page-triggered redirect). Returning an error
	// aborts that navigation.
	OnNavigate(func(url string) error)

	// StyleVariables evaluates a fixed read-only script returning the
	// colour values declared as CSS custom properties. Cross-origin
	// stylesheets that block access are skipped, not failed.
	StyleVariables(ctx context.Context) ([]string, error)

	// RoleColours evaluates a fixed read-only script returning computed
	// colours for role-tagged elements.
	RoleColours(ctx context.Context) (RoleColourSets, error)

	// Screenshot captures the rendered viewport as raster image bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close tears the session down. Safe to call more than once.
	Close() error
}

// Signals is the jointly-awaited evidence gathered from one page session.
type Signals struct {
	Screenshot     []byte
	StyleVariables []string
	Roles          RoleColourSets
}

// CollectSignals runs the three evidence-gathering operations concurrently
// against one session and awaits them jointly. There is no ordering
// guarantee between them; a failure in any one degrades to an empty result
// for that signal rather than aborting the whole request.
func CollectSignals(ctx context.Context, s Session, logger hclog.Logger) Signals {
	var (
		wg      sync.WaitGroup
		signals Signals
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		shot, err := s.Screenshot(ctx)
		if err != nil {
			logger.Debug("screenshot capture failed", "error", err)
			return
		}
		signals.Screenshot = shot
	}()
	go func() {
		defer wg.Done()
		vars, err := s.StyleVariables(ctx)
		if err != nil {
			logger.Debug("style variable read failed", "error", err)
			return
		}
		signals.StyleVariables = vars
	}()
	go func() {
		defer wg.Done()
		roles, err := s.RoleColours(ctx)
		if err != nil {
			logger.Debug("role colour read failed", "error", err)
			return
		}
		signals.Roles = roles
	}()
	wg.Wait()

	return signals
}

// DOMColourMap parses the raw role colour strings into a fusion colour map,
// skipping values that match no recognised colour-literal format.
func (r RoleColourSets) DOMColourMap() fuse.DOMColourMap {
	m := make(fuse.DOMColourMap)
	for origin, values := range map[fuse.Origin][]string{
		fuse.OriginLogo:       r.Logo,
		fuse.OriginCTA:        r.CallToAction,
		fuse.OriginAccent:     r.Accent,
		fuse.OriginHeading:    r.Heading,
		fuse.OriginNavigation: r.Navigation,
	} {
		for _, v := range values {
			rgb, _, err := colour.ParseCSSColour(v)
			if err != nil {
				continue
			}
			m[origin] = append(m[origin], rgb)
			if len(m[origin]) >= fuse.MaxColoursPerRole {
				break
			}
		}
	}
	return m
}

// ParseStyleVariables parses declared style-variable values into colours,
// dropping everything that is not a recognised colour literal.
func ParseStyleVariables(values []string) []colour.RGB {
	var out []colour.RGB
	for _, v := range values {
		rgb, _, err := colour.ParseCSSColour(v)
		if err != nil {
			continue
		}
		out = append(out, rgb)
	}
	return out
}
