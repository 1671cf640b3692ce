// Package cli provides the command-line interface for brandtint.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/brandtint/brandtint/internal/colour"
	"github.com/brandtint/brandtint/internal/pipeline"
	"github.com/brandtint/brandtint/internal/security"
	"github.com/brandtint/brandtint/internal/util/imagecache"
)

var (
	// Extract command flags
	extractFormat      string
	extractOutput      string
	extractShowPreview bool
	extractAsImage     bool
	extractRefresh     bool
	extractTimeout     time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image|url>",
	Short: "Extract a brand theme from an image or a website",
	Long: `Extract a brand colour palette and UI theme from an image file or a website.

URLs are rendered in a sandboxed headless browser and mined for colour
evidence (logo, buttons, headings, stylesheet variables, rendered pixels).
Image files and image URLs are analysed directly for their dominant
saturated colours.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract a brand theme from a website
  brandtint extract https://example.com

  # Extract from a local image with terminal previews
  brandtint extract --preview logo.png

  # Fetch a remote image (rather than rendering the page)
  brandtint extract --image https://example.com/logo.png

  # Emit the full result as JSON
  brandtint extract --format json https://example.com

  # Emit just the theme roles and save to a file
  brandtint extract --format theme --output theme.txt https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	registerExtractFlags(extractCmd.Flags())
}

// registerExtractFlags defines the extract command's flags.
func registerExtractFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&extractFormat, "format", "f", "hex", "output format (hex, theme, json)")
	fs.StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	fs.BoolVar(&extractShowPreview, "preview", false, "show colour previews (auto-enabled on a terminal)")
	fs.BoolVar(&extractAsImage, "image", false, "treat a URL argument as an image to fetch, not a page to render")
	fs.BoolVar(&extractRefresh, "refresh", false, "re-download a remote image even when cached")
	fs.DurationVar(&extractTimeout, "timeout", 0, "navigation timeout for website extraction (default 30s)")
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	target := args[0]
	logger := newLogger(cmd)

	p := pipeline.New(pipeline.Options{
		Logger:            logger,
		NavigationTimeout: extractTimeout,
	})

	var (
		result *pipeline.Result
		err    error
	)
	switch {
	case !isURL(target):
		logger.Debug("extracting from local image", "path", target)
		var data []byte
		data, err = os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		result, err = p.FromImage(cmd.Context(), data, "cli", "local")
	case extractAsImage || hasImageExtension(target):
		logger.Debug("fetching remote image", "url", target)
		if _, err := security.ValidatePageURL(target); err != nil {
			return fmt.Errorf("refusing to fetch %s: %w", target, err)
		}
		var data []byte
		data, err = imagecache.Fetch(cmd.Context(), target, imagecache.Options{Refresh: extractRefresh})
		if err != nil {
			return fmt.Errorf("failed to fetch image: %w", err)
		}
		result, err = p.FromImage(cmd.Context(), data, "cli", "local")
	default:
		logger.Debug("extracting from website", "url", target)
		result, err = p.FromURL(cmd.Context(), target, "cli", "local")
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	// Preview is implied when writing colour output to a terminal.
	preview := extractShowPreview
	if !cmd.Flags().Changed("preview") && extractOutput == "" {
		preview = term.IsTerminal(int(os.Stdout.Fd()))
	}

	output, err := formatResult(result, extractFormat, preview)
	if err != nil {
		return err
	}

	// Write output to file or stdout
	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Debug("wrote output", "path", extractOutput)
	} else {
		fmt.Print(output)
	}

	return nil
}

// formatResult formats the extraction result according to the requested format.
func formatResult(result *pipeline.Result, format string, showPreview bool) (string, error) {
	switch format {
	case "hex":
		return formatHexPalette(result, showPreview), nil
	case "theme":
		return formatTheme(result, showPreview), nil
	case "json":
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, theme, json)", format)
	}
}

// formatHexPalette formats the ranked brand palette as hex colour codes.
// With previews enabled each hex code is overlaid on its own swatch.
func formatHexPalette(result *pipeline.Result, showPreview bool) string {
	var sb strings.Builder
	for _, sc := range result.Scored {
		if showPreview {
			sb.WriteString(colour.ColourPreviewWithText(sc.RGB, " "+sc.Hex, len(sc.Hex)+2))
			fmt.Fprintf(&sb, "  (%s, score %.2f)", sc.Origin, sc.Score)
		} else {
			sb.WriteString(sc.Hex)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatTheme formats the synthesized UI theme as role/colour pairs.
func formatTheme(result *pipeline.Result, showPreview bool) string {
	t := result.Theme
	rows := []struct {
		role string
		c    colour.RGB
	}{
		{"background", t.Background},
		{"foreground", t.Foreground},
		{"primary", t.Primary},
		{"primary-foreground", t.PrimaryForeground},
		{"muted", t.Muted},
		{"muted-foreground", t.MutedForeground},
		{"border", t.Border},
		{"input", t.Input},
		{"card", t.Card},
		{"card-foreground", t.CardForeground},
		{"accent", t.Accent},
	}

	var sb strings.Builder
	for _, row := range rows {
		if showPreview {
			sb.WriteString(colour.ColourPreview(row.c, 8))
			sb.WriteString("  ")
		}
		fmt.Fprintf(&sb, "%-20s %s\n", row.role, row.c.Hex())
	}
	return sb.String()
}

// isURL reports whether the argument should be treated as a remote target.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// hasImageExtension reports whether a URL path ends in a raster image
// extension we can decode.
func hasImageExtension(rawURL string) bool {
	path := rawURL
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
