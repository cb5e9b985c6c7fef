package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/bornholm/crosspost/internal/core/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the configuration table shared by every component of a run:
// categories, heading vocabulary, region markers and platform rule-sets.
// It is loaded once and must not be modified afterwards.
type Catalog struct {
	DefaultAuthor   string                  `yaml:"defaultAuthor"`
	DefaultCategory string                  `yaml:"defaultCategory"`
	BlogBaseURL     string                  `yaml:"blogBaseURL"`
	Categories      []Category              `yaml:"categories"`
	Aliases         map[string]string       `yaml:"aliases"`
	Vocabulary      model.HeadingVocabulary `yaml:"vocabulary"`
	Markers         []model.MarkerSyntax    `yaml:"markers"`
	Platforms       []model.PlatformRuleSet `yaml:"platforms"`
}

type Category struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
}

// ResolveCategory maps a category or one of its aliases to a known category.
// Unknown values resolve to the default category, ok being false.
func (c *Catalog) ResolveCategory(raw string) (category string, ok bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))

	if c.HasCategory(raw) {
		return raw, true
	}

	if alias, exists := c.Aliases[raw]; exists {
		return alias, true
	}

	return c.DefaultCategory, false
}

func (c *Catalog) HasCategory(id string) bool {
	return slices.ContainsFunc(c.Categories, func(cat Category) bool {
		return cat.ID == id
	})
}

func (c *Catalog) Platform(id model.PlatformID) (*model.PlatformRuleSet, bool) {
	for i := range c.Platforms {
		if c.Platforms[i].ID == id {
			return &c.Platforms[i], true
		}
	}
	return nil, false
}

// PlatformIDs returns the identifiers of the configured platforms, in
// configured order.
func (c *Catalog) PlatformIDs() []model.PlatformID {
	ids := make([]model.PlatformID, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		ids = append(ids, p.ID)
	}
	return ids
}

// ArticleURL returns the canonical blog URL of the given slug.
func (c *Catalog) ArticleURL(slug string) string {
	return strings.TrimSuffix(c.BlogBaseURL, "/") + "/" + slug
}

func (c *Catalog) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultCategory, validation.Required, validation.By(func(value any) error {
			if !c.HasCategory(value.(string)) {
				return validation.NewError("catalog.default_category_unknown", "default category must be one of the declared categories")
			}
			return nil
		})),
		validation.Field(&c.Categories, validation.Required, validation.By(uniqueCategories)),
		validation.Field(&c.Aliases, validation.By(func(value any) error {
			for alias, target := range value.(map[string]string) {
				if !c.HasCategory(target) {
					return validation.NewError("catalog.alias_unknown_target", "alias '"+alias+"' targets unknown category '"+target+"'")
				}
			}
			return nil
		})),
		validation.Field(&c.Vocabulary, validation.By(validateVocabulary)),
		validation.Field(&c.Markers, validation.Each(validation.By(validateMarker))),
		validation.Field(&c.Platforms, validation.Required, validation.By(uniquePlatforms), validation.Each(validation.By(validateRuleSet))),
	)
}

func uniqueCategories(value any) error {
	seen := map[string]struct{}{}
	for _, c := range value.([]Category) {
		if c.ID == "" {
			return validation.NewError("catalog.category_id_required", "category id is required")
		}
		if _, exists := seen[c.ID]; exists {
			return validation.NewError("catalog.category_duplicated", "category '"+c.ID+"' is declared twice")
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func uniquePlatforms(value any) error {
	seen := map[model.PlatformID]struct{}{}
	for _, p := range value.([]model.PlatformRuleSet) {
		if p.ID == "" {
			return validation.NewError("catalog.platform_id_required", "platform id is required")
		}
		if _, exists := seen[p.ID]; exists {
			return validation.NewError("catalog.platform_duplicated", "platform '"+string(p.ID)+"' is declared twice")
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func validateVocabulary(value any) error {
	vocabulary := value.(model.HeadingVocabulary)
	for _, r := range vocabulary.Regions {
		if r.Name == "" {
			return validation.NewError("catalog.vocabulary_name_required", "heading region name is required")
		}
		for _, p := range r.Patterns {
			if err := isRegexp(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateMarker(value any) error {
	marker := value.(model.MarkerSyntax)
	return validation.ValidateStruct(&marker,
		validation.Field(&marker.Start, validation.Required, validation.By(isRegexp)),
		validation.Field(&marker.End, validation.Required, validation.By(isRegexp)),
		validation.Field(&marker.Region, validation.Required),
	)
}

func validateRuleSet(value any) error {
	rules := value.(model.PlatformRuleSet)
	return validation.ValidateStruct(&rules,
		validation.Field(&rules.Header, validation.In(model.HeaderNone, model.HeaderAstro, model.HeaderZenn)),
		validation.Field(&rules.Remove, validation.Each(validation.By(isRegexp))),
		validation.Field(&rules.RemoveLines, validation.Each(validation.By(isRegexp))),
		validation.Field(&rules.Constraints, validation.Each(validation.By(validateConstraint))),
	)
}

func validateConstraint(value any) error {
	constraint := value.(model.MetadataConstraint)
	return validation.ValidateStruct(&constraint,
		validation.Field(&constraint.Field, validation.Required, validation.In(
			model.FieldTags, model.FieldTopics, model.FieldTitle,
			model.FieldDescription, model.FieldSlug, model.FieldPrice,
		)),
		validation.Field(&constraint.Min, validation.Min(0)),
		validation.Field(&constraint.Max, validation.Min(0), validation.By(func(value any) error {
			if constraint.Min == nil || constraint.Max == nil || *constraint.Min <= *constraint.Max {
				return nil
			}
			return validation.NewError("catalog.constraint_bounds", fmt.Sprintf("max (%d) must not be lower than min (%d)", *constraint.Max, *constraint.Min))
		})),
		validation.Field(&constraint.Mode, validation.In(model.ConstraintClamp, model.ConstraintReject)),
		validation.Field(&constraint.Pattern, validation.By(isRegexp)),
	)
}

func isRegexp(value any) error {
	expr, _ := value.(string)
	if expr == "" {
		return nil
	}
	if _, err := regexp.Compile(expr); err != nil {
		return validation.NewError("catalog.invalid_regexp", err.Error())
	}
	return nil
}

// Load reads and validates a catalog. Environment variables referenced as
// ${NAME} or ${NAME:-default} in collaborator URIs are expanded.
func Load(r io.Reader) (*Catalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	catalog := &Catalog{}
	if err := decoder.Decode(catalog); err != nil {
		return nil, errors.Wrap(err, "could not decode catalog")
	}

	for i := range catalog.Platforms {
		catalog.Platforms[i].Collaborator = ExpandEnv(catalog.Platforms[i].Collaborator)
	}

	if err := catalog.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid catalog")
	}

	return catalog, nil
}

func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer file.Close()

	catalog, err := Load(file)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load catalog '%s'", path)
	}

	return catalog, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	catalog, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return catalog, nil
}

func ExpandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		name, def, hasDefault := strings.Cut(key, ":-")
		if value, exists := os.LookupEnv(name); exists && value != "" {
			return value
		}
		if hasDefault {
			return def
		}
		return ""
	})
}
