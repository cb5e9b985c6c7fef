package markdown

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/bornholm/crosspost/internal/core/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/pkg/errors"
)

type frontMatterEnvelope struct {
	Title        string                                 `yaml:"title"`
	Slug         string                                 `yaml:"slug"`
	Description  string                                 `yaml:"description"`
	Tags         []string                               `yaml:"tags"`
	Category     string                                 `yaml:"category"`
	Author       string                                 `yaml:"author"`
	CreatedAt    flexibleTime                           `yaml:"created_at"`
	UpdatedAt    flexibleTime                           `yaml:"updated_at"`
	CanonicalURL string                                 `yaml:"canonical_url"`
	Platforms    map[model.PlatformID]*platformEnvelope `yaml:"platforms"`
	Series       *model.Series                          `yaml:"series"`
	Announcement *model.Announcement                    `yaml:"announcement"`
	Extra        map[string]any                         `yaml:",inline"`
}

type platformEnvelope struct {
	Enabled      *bool               `yaml:"enabled"`
	Status       model.PublishStatus `yaml:"status"`
	Price        int                 `yaml:"price"`
	Emoji        string              `yaml:"emoji"`
	Topics       []string            `yaml:"topics"`
	Type         string              `yaml:"type"`
	Private      bool                `yaml:"private"`
	ID           string              `yaml:"id"`
	PublishedURL string              `yaml:"published_url"`
	Extra        map[string]any      `yaml:",inline"`
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type flexibleTime struct {
	time.Time
}

func (t *flexibleTime) UnmarshalYAML(unmarshal func(any) error) error {
	if err := unmarshal(&t.Time); err == nil {
		return nil
	}

	var raw string
	if err := unmarshal(&raw); err != nil {
		return errors.WithStack(err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return errors.Errorf("could not parse date '%s'", raw)
}

var platformIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

func (e *frontMatterEnvelope) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("crosspost.front_matter.title_required", "title is required")
			}
			return nil
		})),
		validation.Field(&e.Tags, validation.Each(validation.Required)),
		validation.Field(&e.Platforms, validation.By(func(value any) error {
			for id, settings := range value.(map[model.PlatformID]*platformEnvelope) {
				if !platformIDPattern.MatchString(string(id)) {
					return validation.NewError("crosspost.front_matter.platform_invalid", "invalid platform identifier '"+string(id)+"'")
				}
				if settings == nil {
					continue
				}
				if err := validation.Validate(settings.Status, validation.In(model.StatusDraft, model.StatusScheduled, model.StatusPublished)); err != nil {
					return validation.NewError("crosspost.front_matter.status_invalid", "platform '"+string(id)+"': "+err.Error())
				}
				if settings.Price < 0 {
					return validation.NewError("crosspost.front_matter.price_invalid", "platform '"+string(id)+"': price must not be negative")
				}
			}
			return nil
		})),
	)
}

type metadataDefaults struct {
	Author   string
	Category string
}

// parseFrontMatter splits the source into its metadata and its body.
func parseFrontMatter(data []byte, defaults metadataDefaults) (model.Metadata, []byte, error) {
	var envelope frontMatterEnvelope

	body, err := frontmatter.MustParse(bytes.NewReader(data), &envelope)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return model.Metadata{}, nil, model.NewMalformedDocumentError(-1, err, "front matter is missing")
		}

		return model.Metadata{}, nil, model.NewMalformedDocumentError(-1, err, "front matter could not be parsed")
	}

	if err := envelope.Validate(); err != nil {
		return model.Metadata{}, nil, model.NewMalformedDocumentError(-1, err, "invalid front matter")
	}

	metadata := model.Metadata{
		Title:        strings.TrimSpace(envelope.Title),
		Slug:         strings.TrimSpace(envelope.Slug),
		Description:  strings.TrimSpace(envelope.Description),
		Tags:         envelope.Tags,
		Category:     strings.TrimSpace(envelope.Category),
		Author:       strings.TrimSpace(envelope.Author),
		CreatedAt:    envelope.CreatedAt.Time,
		UpdatedAt:    envelope.UpdatedAt.Time,
		CanonicalURL: strings.TrimSpace(envelope.CanonicalURL),
		Series:       envelope.Series,
		Announcement: envelope.Announcement,
		Extra:        envelope.Extra,
	}

	if len(envelope.Platforms) > 0 {
		metadata.Platforms = make(map[model.PlatformID]model.PlatformSettings, len(envelope.Platforms))
		for id, p := range envelope.Platforms {
			if p == nil {
				metadata.Platforms[id] = model.PlatformSettings{}
				continue
			}
			metadata.Platforms[id] = model.PlatformSettings{
				Enabled:      p.Enabled,
				Status:       p.Status,
				Price:        p.Price,
				Emoji:        p.Emoji,
				Topics:       p.Topics,
				Type:         p.Type,
				Private:      p.Private,
				ID:           p.ID,
				PublishedURL: p.PublishedURL,
				Extra:        p.Extra,
			}
		}
	}

	if metadata.Author == "" {
		metadata.Author = defaults.Author
	}

	if metadata.Category == "" {
		metadata.Category = defaults.Category
	}

	if metadata.Slug == "" {
		generated, err := Slugify(metadata.Title)
		if err != nil {
			return model.Metadata{}, nil, model.NewMalformedDocumentError(-1, err, "could not generate slug from title")
		}
		metadata.Slug = generated
	}

	if metadata.UpdatedAt.IsZero() {
		metadata.UpdatedAt = metadata.CreatedAt
	}

	return metadata, body, nil
}

// Slugify derives an URL safe identifier from the given text.
func Slugify(s string) (string, error) {
	normalized, err := slug.Normalize(s)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if normalized == "" {
		return "", errors.Errorf("'%s' does not contain any usable character", s)
	}

	return normalized, nil
}
