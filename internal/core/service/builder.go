package service

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/markdown"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultLayout = `{{ if .Header }}{{ .Header }}

{{ end }}{{ .Body }}`

const bodyPlaceholder = "\x00crosspost:body\x00"

var blankLines = regexp.MustCompile(`\n{3,}`)

// Build derives the variant of a document for one platform.
//
// Rules are applied in a fixed order: region filtering, markup downgrade,
// then metadata constraints. Build does not depend on anything but its
// arguments, identical inputs always produce identical variants.
func Build(doc *model.Document, rules *model.PlatformRuleSet, cat *catalog.Catalog) (*model.Variant, error) {
	warnings := make([]model.Warning, 0)

	body, bodyWarnings, err := buildBody(doc, rules)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	warnings = append(warnings, bodyWarnings...)

	metadata, metadataWarnings := resolveMetadata(doc.Metadata(), rules, cat)
	warnings = append(warnings, metadataWarnings...)

	if err := checkRequired(rules, metadata); err != nil {
		return nil, errors.WithStack(err)
	}

	for _, c := range rules.Constraints {
		constraintWarnings, err := applyConstraint(rules.ID, c, &metadata)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		warnings = append(warnings, constraintWarnings...)
	}

	header, err := renderHeader(rules.Header, metadata)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	content, layoutWarnings, err := renderLayout(rules, layoutData{
		Platform:    rules.ID,
		Header:      header,
		Body:        body,
		Title:       metadata.Title,
		Description: metadata.Description,
		Tags:        metadata.Tags,
		TagsLine:    strings.Join(metadata.Tags, " / "),
		URL:         metadata.CanonicalURL,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	warnings = append(warnings, layoutWarnings...)

	return &model.Variant{
		Platform: rules.ID,
		Content:  content,
		Metadata: metadata,
		Warnings: warnings,
		Checksum: model.Checksum(content),
	}, nil
}

func buildBody(doc *model.Document, rules *model.PlatformRuleSet) (string, []model.Warning, error) {
	keep, err := compileRegionPatterns(rules.KeepRegions)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}

	drop, err := compileRegionPatterns(rules.DropRegions)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}

	filter := &regionFilter{keep: keep, drop: drop}

	removals, err := compilePatterns(rules.Remove)
	if err != nil {
		return "", nil, errors.Wrap(err, "could not compile removal patterns")
	}

	lineRemovals, err := compilePatterns(rules.RemoveLines)
	if err != nil {
		return "", nil, errors.Wrap(err, "could not compile line removal patterns")
	}

	warnings := make([]model.Warning, 0)
	parts := make([]string, 0, doc.Len())

	dropped := make(map[string]int)
	droppedOrder := make([]string, 0)

	for _, block := range doc.Blocks() {
		if block.Kind == model.BlockMarker {
			continue
		}

		if decision, region := filter.decide(block.Regions); decision == dropRegion {
			if _, seen := dropped[region]; !seen {
				droppedOrder = append(droppedOrder, region)
			}
			dropped[region]++
			continue
		}

		content, removed, blockWarnings := markdown.Downgrade(block, rules)
		warnings = append(warnings, blockWarnings...)

		if removed {
			continue
		}

		if len(lineRemovals) > 0 {
			var count int
			content, count = removeLines(lineRemovals, content)
			if count > 0 {
				warnings = append(warnings, model.Warning{
					Subject: "line",
					Action:  model.ActionRemoved,
					Detail:  fmt.Sprintf("%d line(s) matching a line removal pattern", count),
					Block:   block.Index,
				})
			}
			if strings.TrimSpace(content) == "" {
				continue
			}
		}

		if matchesAny(removals, strings.TrimSpace(content)) {
			warnings = append(warnings, model.Warning{
				Subject: "boilerplate",
				Action:  model.ActionRemoved,
				Detail:  "block matching a removal pattern",
				Block:   block.Index,
			})
			continue
		}

		parts = append(parts, content)
	}

	regionWarnings := make([]model.Warning, 0, len(droppedOrder))
	for _, region := range droppedOrder {
		regionWarnings = append(regionWarnings, model.Warning{
			Subject: region,
			Action:  model.ActionDropped,
			Detail:  fmt.Sprintf("%d block(s) of region %s dropped", dropped[region], region),
			Block:   -1,
		})
	}

	return strings.Join(parts, "\n\n"), append(regionWarnings, warnings...), nil
}

func compilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "could not compile pattern '%s'", expr)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// removeLines drops the lines of content matching one of the patterns and
// returns the number of removed lines.
func removeLines(patterns []*regexp.Regexp, content string) (string, int) {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if matchesAny(patterns, l) {
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == len(lines) {
		return content, 0
	}
	return strings.Trim(strings.Join(kept, "\n"), "\n"), len(lines) - len(kept)
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func resolveMetadata(metadata model.Metadata, rules *model.PlatformRuleSet, cat *catalog.Catalog) (model.VariantMetadata, []model.Warning) {
	warnings := make([]model.Warning, 0)
	settings := metadata.Platform(rules.ID)

	resolved := model.VariantMetadata{
		Title:        metadata.Title,
		Slug:         metadata.Slug,
		Description:  metadata.Description,
		Tags:         metadata.Tags,
		Topics:       settings.Topics,
		Category:     metadata.Category,
		Author:       metadata.Author,
		Emoji:        settings.Emoji,
		Type:         settings.Type,
		Price:        settings.Price,
		Private:      settings.Private,
		Status:       settings.Status,
		ID:           settings.ID,
		CanonicalURL: metadata.CanonicalURL,
		CreatedAt:    metadata.CreatedAt,
		UpdatedAt:    metadata.UpdatedAt,
	}

	if len(resolved.Topics) == 0 {
		resolved.Topics = append([]string(nil), metadata.Tags...)
	}

	if resolved.Emoji == "" {
		resolved.Emoji = rules.Defaults.Emoji
	}

	if resolved.Type == "" {
		resolved.Type = rules.Defaults.Type
	}

	if resolved.Status == "" {
		resolved.Status = rules.Defaults.Status
	}

	if resolved.Status == "" {
		resolved.Status = model.StatusDraft
	}

	if cat != nil {
		category, known := cat.ResolveCategory(metadata.Category)
		switch {
		case !known && metadata.Category != "":
			warnings = append(warnings, model.Warning{
				Subject: model.FieldCategory,
				Action:  model.ActionResolved,
				Detail:  fmt.Sprintf("unknown category '%s' replaced by '%s'", metadata.Category, category),
				Block:   -1,
			})
		case category != metadata.Category:
			warnings = append(warnings, model.Warning{
				Subject: model.FieldCategory,
				Action:  model.ActionResolved,
				Detail:  fmt.Sprintf("category '%s' resolved to '%s'", metadata.Category, category),
				Block:   -1,
			})
		}
		resolved.Category = category

		if resolved.CanonicalURL == "" && cat.BlogBaseURL != "" {
			resolved.CanonicalURL = cat.ArticleURL(resolved.Slug)
		}
	}

	return resolved, warnings
}

func checkRequired(rules *model.PlatformRuleSet, metadata model.VariantMetadata) error {
	for _, field := range rules.RequiredMetadata {
		var missing bool

		switch field {
		case model.FieldTitle:
			missing = metadata.Title == ""
		case model.FieldSlug:
			missing = metadata.Slug == ""
		case model.FieldDescription:
			missing = metadata.Description == ""
		case model.FieldTags:
			missing = len(metadata.Tags) == 0
		case model.FieldTopics:
			missing = len(metadata.Topics) == 0
		case model.FieldCategory:
			missing = metadata.Category == ""
		case model.FieldAuthor:
			missing = metadata.Author == ""
		case model.FieldEmoji:
			missing = metadata.Emoji == ""
		case model.FieldPrice:
			missing = metadata.Price == 0
		case model.FieldCreatedAt:
			missing = metadata.CreatedAt.IsZero()
		case model.FieldUpdatedAt:
			missing = metadata.UpdatedAt.IsZero()
		case model.FieldCanonicalURL:
			missing = metadata.CanonicalURL == ""
		default:
			return errors.Errorf("platform '%s': unknown required metadata field '%s'", rules.ID, field)
		}

		if missing {
			return &model.VariantConstraintError{
				Platform: rules.ID,
				Field:    field,
				Bound:    "required",
			}
		}
	}

	return nil
}

type astroHeader struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	PubDate     string   `yaml:"pubDate"`
	UpdatedDate string   `yaml:"updatedDate,omitempty"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags,flow"`
	Author      string   `yaml:"author"`
}

type zennHeader struct {
	Title     string   `yaml:"title"`
	Emoji     string   `yaml:"emoji"`
	Type      string   `yaml:"type"`
	Topics    []string `yaml:"topics,flow"`
	Published bool     `yaml:"published"`
}

const dateLayout = "2006-01-02"

func renderHeader(format model.HeaderFormat, metadata model.VariantMetadata) (string, error) {
	var header any

	switch format {
	case model.HeaderNone:
		return "", nil

	case model.HeaderAstro:
		astro := astroHeader{
			Title:       metadata.Title,
			Description: metadata.Description,
			Category:    metadata.Category,
			Tags:        nonNil(metadata.Tags),
			Author:      metadata.Author,
		}
		if !metadata.CreatedAt.IsZero() {
			astro.PubDate = metadata.CreatedAt.Format(dateLayout)
		}
		if !metadata.UpdatedAt.IsZero() {
			astro.UpdatedDate = metadata.UpdatedAt.Format(dateLayout)
		}
		header = astro

	case model.HeaderZenn:
		header = zennHeader{
			Title:     metadata.Title,
			Emoji:     metadata.Emoji,
			Type:      metadata.Type,
			Topics:    nonNil(metadata.Topics),
			Published: metadata.Status == model.StatusPublished,
		}

	default:
		return "", errors.Errorf("unknown header format '%s'", format)
	}

	var buff bytes.Buffer

	buff.WriteString("---\n")

	encoder := yaml.NewEncoder(&buff)
	encoder.SetIndent(2)

	if err := encoder.Encode(header); err != nil {
		return "", errors.WithStack(err)
	}

	if err := encoder.Close(); err != nil {
		return "", errors.WithStack(err)
	}

	buff.WriteString("---")

	return buff.String(), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type layoutData struct {
	Platform    model.PlatformID
	Header      string
	Body        string
	Title       string
	Description string
	Tags        []string
	TagsLine    string
	URL         string
	Metadata    model.VariantMetadata
}

func renderLayout(rules *model.PlatformRuleSet, data layoutData) (string, []model.Warning, error) {
	layout := rules.Layout
	if layout == "" {
		layout = defaultLayout
	}

	tmpl, err := template.New(string(rules.ID)).Option("missingkey=error").Parse(layout)
	if err != nil {
		return "", nil, errors.Wrapf(err, "could not parse layout of platform '%s'", rules.ID)
	}

	body := data.Body
	data.Body = bodyPlaceholder

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, data); err != nil {
		return "", nil, errors.Wrapf(err, "could not render layout of platform '%s'", rules.ID)
	}

	warnings := make([]model.Warning, 0)

	// Only the layout is collapsed, the body is kept as built.
	content := blankLines.ReplaceAllString(buff.String(), "\n\n")
	if strings.Contains(content, bodyPlaceholder) {
		content = strings.Replace(content, bodyPlaceholder, body, 1)
	} else if strings.TrimSpace(body) != "" {
		warnings = append(warnings, model.Warning{
			Subject: "body",
			Action:  model.ActionDropped,
			Detail:  "body not included by the layout",
			Block:   -1,
		})
	}
	content = strings.TrimRight(strings.TrimLeft(content, "\n"), " \t\n") + "\n"

	return content, warnings, nil
}
