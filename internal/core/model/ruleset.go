package model

import (
	"slices"
	"time"
)

// Capability names a markup construct a platform is able to render.
type Capability string

const (
	CapabilityInlineCode     Capability = "inline-code"
	CapabilityStrikethrough  Capability = "strikethrough"
	CapabilityTable          Capability = "table"
	CapabilityFencedCode     Capability = "fenced-code"
	CapabilityHTMLComment    Capability = "html-comment"
	CapabilityRawHTML        Capability = "raw-html"
	CapabilityScript         Capability = "script"
	CapabilityCallout        Capability = "callout"
	CapabilityCalloutMessage Capability = "callout-message"
	CapabilityMath           Capability = "math"
)

type HeaderFormat string

const (
	HeaderNone  HeaderFormat = ""
	HeaderAstro HeaderFormat = "astro"
	HeaderZenn  HeaderFormat = "zenn"
)

type ConstraintMode string

const (
	ConstraintClamp  ConstraintMode = "clamp"
	ConstraintReject ConstraintMode = "reject"
)

const (
	FieldTitle        = "title"
	FieldSlug         = "slug"
	FieldDescription  = "description"
	FieldTags         = "tags"
	FieldTopics       = "topics"
	FieldCategory     = "category"
	FieldAuthor       = "author"
	FieldPrice        = "price"
	FieldEmoji        = "emoji"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
	FieldCanonicalURL = "canonical_url"
)

// PlatformRuleSet is the declarative policy applied to a document to obtain
// the variant of one platform. Rule-sets are loaded once and never modified.
type PlatformRuleSet struct {
	ID      PlatformID `yaml:"id"`
	Label   string     `yaml:"label,omitempty"`
	Enabled bool       `yaml:"enabled"`
	// KeepRegions and DropRegions hold glob patterns matched against region
	// names, ':' being the path delimiter.
	KeepRegions      []string             `yaml:"keepRegions,omitempty"`
	DropRegions      []string             `yaml:"dropRegions,omitempty"`
	Capabilities     []Capability         `yaml:"capabilities,omitempty"`
	RequiredMetadata []string             `yaml:"requiredMetadata,omitempty"`
	Constraints      []MetadataConstraint `yaml:"constraints,omitempty"`
	// Remove holds regular expressions, a paragraph matching one of them is
	// removed from the variant.
	Remove []string `yaml:"remove,omitempty"`
	// RemoveLines holds regular expressions, matching lines are removed from
	// the blocks of the variant.
	RemoveLines  []string         `yaml:"removeLines,omitempty"`
	Header       HeaderFormat     `yaml:"header,omitempty"`
	Defaults     PlatformDefaults `yaml:"defaults,omitempty"`
	Layout       string           `yaml:"layout,omitempty"`
	Collaborator string           `yaml:"collaborator,omitempty"`
	RateLimit    *RateLimit       `yaml:"rateLimit,omitempty"`
}

func (r *PlatformRuleSet) Supports(c Capability) bool {
	return slices.Contains(r.Capabilities, c)
}

func (r *PlatformRuleSet) Constraint(field string) (MetadataConstraint, bool) {
	for _, c := range r.Constraints {
		if c.Field == field {
			return c, true
		}
	}
	return MetadataConstraint{}, false
}

type PlatformDefaults struct {
	Emoji  string        `yaml:"emoji,omitempty"`
	Type   string        `yaml:"type,omitempty"`
	Status PublishStatus `yaml:"status,omitempty"`
}

// MetadataConstraint bounds one metadata field. For lists the bounds apply
// to the number of items, for strings to the number of characters and for
// the price to its value.
type MetadataConstraint struct {
	Field string         `yaml:"field"`
	Min   *int           `yaml:"min,omitempty"`
	Max   *int           `yaml:"max,omitempty"`
	Mode  ConstraintMode `yaml:"mode,omitempty"`
	// Pattern must match the value, or every item of a list.
	Pattern string `yaml:"pattern,omitempty"`
	// AllowZero accepts a zero value even when it is below Min.
	AllowZero bool `yaml:"allowZero,omitempty"`
}

type RateLimit struct {
	Interval time.Duration `yaml:"interval"`
	Burst    int           `yaml:"burst,omitempty"`
}
