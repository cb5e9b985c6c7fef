package publish

import (
	"slices"
	"strings"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramPlatforms       = "platforms"
	paramDryRun          = "dry-run"
	paramReport          = "report"
	paramMetricsTextfile = "metrics-textfile"
	paramCollaborator    = "collaborator"
	paramPreviewLength   = "preview-length"
	paramNoHistory       = "no-history"
)

var (
	flagPlatforms = altsrc.NewStringSliceFlag(&cli.StringSliceFlag{
		Name:    paramPlatforms,
		Aliases: []string{"p"},
		Value:   cli.NewStringSlice(),
		Usage:   "Restrict the run to the given platforms (comma separated), other platforms are reported as skipped",
	})
	flagDryRun = &cli.BoolFlag{
		Name:    paramDryRun,
		Aliases: []string{"n"},
		Usage:   "Build the variants and preview them without publishing anything",
	}
	flagReport = &cli.StringFlag{
		Name:    paramReport,
		Aliases: []string{"o"},
		Usage:   "Write the report to the given file, formatted according to its extension (.json, .yaml or .yml)",
	}
	flagMetricsTextfile = altsrc.NewStringFlag(&cli.StringFlag{
		Name:  paramMetricsTextfile,
		Usage: "Write the run metrics to the given file in the Prometheus text format",
	})
	flagCollaborator = altsrc.NewStringSliceFlag(&cli.StringSliceFlag{
		Name:  paramCollaborator,
		Value: cli.NewStringSlice(),
		Usage: "Override the collaborator of a platform, as 'platform=uri'",
	})
	flagPreviewLength = altsrc.NewIntFlag(&cli.IntFlag{
		Name:  paramPreviewLength,
		Value: 400,
		Usage: "Maximum number of characters of content previewed per platform in dry-run mode, 0 to hide the content",
	})
	flagNoHistory = &cli.BoolFlag{
		Name:  paramNoHistory,
		Usage: "Do not record the report in the publish history",
	}
)

func withPublishFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		flagPlatforms,
		flagDryRun,
		flagReport,
		flagMetricsTextfile,
		flagCollaborator,
		flagPreviewLength,
		flagNoHistory,
	}, flags...)
}

// getPlatforms returns the selected platforms. Unknown platforms are
// rejected.
func getPlatforms(ctx *cli.Context, cat *catalog.Catalog) ([]model.PlatformID, error) {
	known := cat.PlatformIDs()

	platforms := make([]model.PlatformID, 0)
	for _, raw := range ctx.StringSlice(paramPlatforms) {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			id := model.PlatformID(name)
			if !slices.Contains(known, id) {
				return nil, errors.Errorf("unknown platform '%s', expected one of %v", name, known)
			}

			if !slices.Contains(platforms, id) {
				platforms = append(platforms, id)
			}
		}
	}

	return platforms, nil
}

func getCollaboratorOverrides(ctx *cli.Context, cat *catalog.Catalog) (map[model.PlatformID]string, error) {
	overrides := make(map[model.PlatformID]string)

	for _, raw := range ctx.StringSlice(paramCollaborator) {
		name, uri, found := strings.Cut(raw, "=")
		if !found || name == "" {
			return nil, errors.Errorf("invalid collaborator override '%s', expected 'platform=uri'", raw)
		}

		id := model.PlatformID(strings.TrimSpace(name))
		if _, exists := cat.Platform(id); !exists {
			return nil, errors.Errorf("unknown platform '%s' in collaborator override", name)
		}

		overrides[id] = strings.TrimSpace(uri)
	}

	return overrides, nil
}

func getReportFormat(path string) (model.ReportFormat, error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return model.FormatJSON, nil
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return model.FormatYAML, nil
	default:
		return "", errors.Errorf("could not infer report format from '%s', expected a .json, .yaml or .yml file", path)
	}
}
