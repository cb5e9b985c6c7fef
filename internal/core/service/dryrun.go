package service

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/markdown"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

const DefaultPreviewLength = 400

type PreviewOptions struct {
	// Length is the maximum number of runes of content shown per platform,
	// zero hiding the content.
	Length int
	// Warnings includes the transform warnings of each variant.
	Warnings bool
}

type PreviewOptionFunc func(opts *PreviewOptions)

func WithPreviewLength(length int) PreviewOptionFunc {
	return func(opts *PreviewOptions) {
		opts.Length = length
	}
}

func WithPreviewWarnings(enabled bool) PreviewOptionFunc {
	return func(opts *PreviewOptions) {
		opts.Warnings = enabled
	}
}

func NewPreviewOptions(funcs ...PreviewOptionFunc) *PreviewOptions {
	opts := &PreviewOptions{
		Length:   DefaultPreviewLength,
		Warnings: true,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// RenderPreview writes what each platform of the report would receive. It
// only reads the variants attached to the report.
func RenderPreview(w io.Writer, report *model.PublishReport, funcs ...PreviewOptionFunc) error {
	opts := NewPreviewOptions(funcs...)

	pw := &previewWriter{w: w}

	mode := "publish"
	if report.DryRun {
		mode = "dry-run"
	}

	pw.printf("%s of '%s' (%s): %s\n", mode, report.Title, report.Slug, report.Status())

	for _, outcome := range report.Outcomes {
		pw.printf("\n== %s: %s", outcome.Platform, outcome.Kind)

		switch {
		case outcome.Reason != "":
			pw.printf(" (%s)\n", outcome.Reason)
		case outcome.Error != "":
			pw.printf(" [%s]\n   error: %s\n", outcome.State, outcome.Error)
		default:
			pw.printf("\n")
		}

		if outcome.Reference != nil && outcome.Reference.URL != "" {
			pw.printf("   url: %s\n", outcome.Reference.URL)
		}

		if outcome.Variant == nil {
			continue
		}

		renderVariant(pw, outcome.Variant, opts)
	}

	if pw.err != nil {
		return errors.WithStack(pw.err)
	}

	return nil
}

func renderVariant(pw *previewWriter, variant *model.Variant, opts *PreviewOptions) {
	pw.printf("   size: %s, checksum: %s\n", humanize.Bytes(uint64(len(variant.Content))), shortChecksum(variant.Checksum))

	header := markdown.ReadHeader(variant.Content)
	if len(header) > 0 {
		keys := make([]string, 0, len(header))
		for k := range header {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		pw.printf("   header:\n")
		for _, k := range keys {
			pw.printf("     %s: %v\n", k, header[k])
		}
	} else {
		pw.printf("   title: %s\n", variant.Metadata.Title)
		if len(variant.Metadata.Tags) > 0 {
			pw.printf("   tags: %s\n", strings.Join(variant.Metadata.Tags, ", "))
		}
	}

	if opts.Warnings && len(variant.Warnings) > 0 {
		pw.printf("   warnings:\n")
		for _, warning := range variant.Warnings {
			pw.printf("     - %s\n", warning)
		}
	}

	if opts.Length <= 0 {
		return
	}

	preview, truncated := truncateRunes(variant.Content, opts.Length)

	pw.printf("   --- content ---\n")
	for _, line := range strings.Split(strings.TrimRight(preview, "\n"), "\n") {
		pw.printf("   | %s\n", line)
	}
	if truncated {
		pw.printf("   | [%s more]\n", humanize.Bytes(uint64(len(variant.Content)-len(preview))))
	}
}

func truncateRunes(s string, max int) (string, bool) {
	count := 0
	for i := range s {
		if count == max {
			return s[:i], true
		}
		count++
	}
	return s, false
}

func shortChecksum(checksum string) string {
	if len(checksum) > 12 {
		return checksum[:12]
	}
	return checksum
}

type previewWriter struct {
	w   io.Writer
	err error
}

func (pw *previewWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}
