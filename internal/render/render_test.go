package render

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/brandtint/brandtint/internal/colour"
	"github.com/brandtint/brandtint/internal/fuse"
)

// fakeSession is a scriptable Session for supervisor tests.
type fakeSession struct {
	screenshot    []byte
	screenshotErr error
	styleVars     []string
	styleVarsErr  error
	roles         RoleColourSets
	rolesErr      error
	closed        bool
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakeSession) OnNavigate(func(url string) error)              {}
func (f *fakeSession) StyleVariables(ctx context.Context) ([]string, error) {
	return f.styleVars, f.styleVarsErr
}
func (f *fakeSession) RoleColours(ctx context.Context) (RoleColourSets, error) {
	return f.roles, f.rolesErr
}
func (f *fakeSession) Screenshot(ctx context.Context) ([]byte, error) {
	return f.screenshot, f.screenshotErr
}
func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func TestCollectSignalsGathersAll(t *testing.T) {
	s := &fakeSession{
		screenshot: []byte("png-bytes"),
		styleVars:  []string{"#e11d48"},
		roles:      RoleColourSets{Logo: []string{"rgb(37, 99, 235)"}},
	}

	signals := CollectSignals(context.Background(), s, hclog.NewNullLogger())

	if string(signals.Screenshot) != "png-bytes" {
		t.Errorf("screenshot not collected: %q", signals.Screenshot)
	}
	if len(signals.StyleVariables) != 1 || signals.StyleVariables[0] != "#e11d48" {
		t.Errorf("style variables not collected: %v", signals.StyleVariables)
	}
	if len(signals.Roles.Logo) != 1 {
		t.Errorf("role colours not collected: %v", signals.Roles)
	}
}

func TestCollectSignalsDegradesPerSignal(t *testing.T) {
	// A failing screenshot must not cost the other two signals.
	s := &fakeSession{
		screenshotErr: errors.New("capture failed"),
		styleVars:     []string{"#e11d48"},
		roles:         RoleColourSets{CallToAction: []string{"#2563eb"}},
	}

	signals := CollectSignals(context.Background(), s, hclog.NewNullLogger())

	if signals.Screenshot != nil {
		t.Errorf("screenshot = %v, want nil after failure", signals.Screenshot)
	}
	if len(signals.StyleVariables) != 1 {
		t.Errorf("style variables lost: %v", signals.StyleVariables)
	}
	if len(signals.Roles.CallToAction) != 1 {
		t.Errorf("role colours lost: %v", signals.Roles)
	}
}

func TestCollectSignalsAllFailing(t *testing.T) {
	s := &fakeSession{
		screenshotErr: errors.New("boom"),
		styleVarsErr:  errors.New("boom"),
		rolesErr:      errors.New("boom"),
	}

	signals := CollectSignals(context.Background(), s, hclog.NewNullLogger())

	if signals.Screenshot != nil || signals.StyleVariables != nil || len(signals.Roles.Logo) != 0 {
		t.Errorf("signals not empty after total failure: %+v", signals)
	}
}

func TestRoleColourSetsDOMColourMap(t *testing.T) {
	r := RoleColourSets{
		Logo:         []string{"#2563eb", "not-a-colour"},
		CallToAction: []string{"rgb(225, 29, 72)"},
		Heading:      []string{"oklch(62.8% 0.258 29.2)"},
	}

	m := r.DOMColourMap()

	if len(m[fuse.OriginLogo]) != 1 {
		t.Errorf("logo colours = %v, want the one parsable value", m[fuse.OriginLogo])
	}
	if m[fuse.OriginLogo][0] != (colour.RGB{R: 0x25, G: 0x63, B: 0xeb}) {
		t.Errorf("logo colour = %v, want #2563eb", m[fuse.OriginLogo][0])
	}
	if len(m[fuse.OriginCTA]) != 1 {
		t.Errorf("call-to-action colours = %v, want one", m[fuse.OriginCTA])
	}
	if len(m[fuse.OriginHeading]) != 1 {
		t.Errorf("heading colours = %v, want one", m[fuse.OriginHeading])
	}
	if len(m[fuse.OriginNavigation]) != 0 {
		t.Errorf("navigation colours = %v, want none", m[fuse.OriginNavigation])
	}
}

func TestRoleColourSetsDOMColourMapBounded(t *testing.T) {
	many := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		many = append(many, colour.RGB{R: uint8(i * 20), G: 100, B: 200}.Hex())
	}

	m := RoleColourSets{Navigation: many}.DOMColourMap()
	if len(m[fuse.OriginNavigation]) != fuse.MaxColoursPerRole {
		t.Errorf("navigation colours = %d, want bounded to %d",
			len(m[fuse.OriginNavigation]), fuse.MaxColoursPerRole)
	}
}

func TestParseStyleVariables(t *testing.T) {
	values := []string{
		"#e11d48",
		"16px",
		"rgb(37, 99, 235)",
		"var(--other)",
		"hsl(120, 100%, 25%)",
		"",
	}

	got := ParseStyleVariables(values)
	if len(got) != 3 {
		t.Fatalf("parsed %d colours, want 3: %v", len(got), got)
	}
	if got[0] != (colour.RGB{R: 0xe1, G: 0x1d, B: 0x48}) {
		t.Errorf("first colour = %v, want #e11d48", got[0])
	}
}
