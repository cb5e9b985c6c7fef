package model

import (
	"maps"
	"slices"
	"time"
)

type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusScheduled PublishStatus = "scheduled"
	StatusPublished PublishStatus = "published"
)

// Metadata holds the recognized front matter keys of a document. Keys the
// parser does not know about are kept untouched in Extra.
type Metadata struct {
	Title        string                          `yaml:"title" json:"title"`
	Slug         string                          `yaml:"slug" json:"slug"`
	Description  string                          `yaml:"description,omitempty" json:"description,omitempty"`
	Tags         []string                        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Category     string                          `yaml:"category,omitempty" json:"category,omitempty"`
	Author       string                          `yaml:"author,omitempty" json:"author,omitempty"`
	CreatedAt    time.Time                       `yaml:"created_at,omitempty" json:"createdAt,omitzero"`
	UpdatedAt    time.Time                       `yaml:"updated_at,omitempty" json:"updatedAt,omitzero"`
	CanonicalURL string                          `yaml:"canonical_url,omitempty" json:"canonicalUrl,omitempty"`
	Platforms    map[PlatformID]PlatformSettings `yaml:"platforms,omitempty" json:"platforms,omitempty"`
	Series       *Series                         `yaml:"series,omitempty" json:"series,omitempty"`
	Announcement *Announcement                   `yaml:"announcement,omitempty" json:"announcement,omitempty"`
	Extra        map[string]any                  `yaml:"-" json:"extra,omitempty"`
}

// Platform returns the settings declared for the given platform, or the zero
// settings if the front matter does not mention it.
func (m Metadata) Platform(id PlatformID) PlatformSettings {
	if m.Platforms == nil {
		return PlatformSettings{}
	}
	return m.Platforms[id].Clone()
}

func (m Metadata) Clone() Metadata {
	m.Tags = slices.Clone(m.Tags)
	m.Extra = maps.Clone(m.Extra)

	if m.Platforms != nil {
		platforms := make(map[PlatformID]PlatformSettings, len(m.Platforms))
		for id, s := range m.Platforms {
			platforms[id] = s.Clone()
		}
		m.Platforms = platforms
	}

	if m.Series != nil {
		series := *m.Series
		m.Series = &series
	}

	if m.Announcement != nil {
		announcement := *m.Announcement
		announcement.Platforms = slices.Clone(announcement.Platforms)
		m.Announcement = &announcement
	}

	return m
}

type PlatformSettings struct {
	Enabled      *bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Status       PublishStatus  `yaml:"status,omitempty" json:"status,omitempty"`
	Price        int            `yaml:"price,omitempty" json:"price,omitempty"`
	Emoji        string         `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	Topics       []string       `yaml:"topics,omitempty" json:"topics,omitempty"`
	Type         string         `yaml:"type,omitempty" json:"type,omitempty"`
	Private      bool           `yaml:"private,omitempty" json:"private,omitempty"`
	ID           string         `yaml:"id,omitempty" json:"id,omitempty"`
	PublishedURL string         `yaml:"published_url,omitempty" json:"publishedUrl,omitempty"`
	Extra        map[string]any `yaml:",inline" json:"extra,omitempty"`
}

// IsEnabled reports whether the platform is enabled, falling back to def
// when the front matter says nothing.
func (s PlatformSettings) IsEnabled(def bool) bool {
	if s.Enabled == nil {
		return def
	}
	return *s.Enabled
}

func (s PlatformSettings) Clone() PlatformSettings {
	if s.Enabled != nil {
		enabled := *s.Enabled
		s.Enabled = &enabled
	}
	s.Topics = slices.Clone(s.Topics)
	s.Extra = maps.Clone(s.Extra)
	return s
}

type Series struct {
	Name  string `yaml:"name" json:"name"`
	Part  int    `yaml:"part,omitempty" json:"part,omitempty"`
	Total int    `yaml:"total,omitempty" json:"total,omitempty"`
}

type Announcement struct {
	Enabled         bool         `yaml:"enabled" json:"enabled"`
	Platforms       []PlatformID `yaml:"platforms,omitempty" json:"platforms,omitempty"`
	MessageTemplate string       `yaml:"message_template,omitempty" json:"messageTemplate,omitempty"`
}
