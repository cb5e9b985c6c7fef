package scaffold

import (
	"bytes"
	"text/template"
	"time"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Article holds the values of a new article template.
type Article struct {
	Title       string
	Slug        string
	Description string
	Category    string
	Tags        []string
	CreatedAt   time.Time
}

type frontMatter struct {
	Title       string                      `yaml:"title"`
	Slug        string                      `yaml:"slug"`
	Description string                      `yaml:"description"`
	Tags        []string                    `yaml:"tags"`
	Category    string                      `yaml:"category"`
	Author      string                      `yaml:"author"`
	CreatedAt   string                      `yaml:"created_at"`
	UpdatedAt   string                      `yaml:"updated_at"`
	Platforms   map[string]platformDefaults `yaml:"platforms"`
}

type platformDefaults struct {
	Enabled bool     `yaml:"enabled"`
	Emoji   string   `yaml:"emoji,omitempty"`
	Topics  []string `yaml:"topics,omitempty,flow"`
	Price   *int     `yaml:"price,omitempty"`
}

var bodyTemplate = template.Must(template.New("").Parse(`# {{ .Title }}

Introduce the article here.

## {{ .Story }}

Tell the story behind the article: the problem, the turning point, the lessons learned.

## {{ .Technical }}

Describe the implementation.

` + "```sh" + `
# commands
` + "```" + `
`))

// Render returns the markdown source of a new article, its headings taken
// from the vocabulary of the catalog so that the story and technical regions
// are recognized.
func Render(cat *catalog.Catalog, article Article) ([]byte, error) {
	createdAt := article.CreatedAt.Format("2006-01-02 15:04:05")

	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	fm := frontMatter{
		Title:       article.Title,
		Slug:        article.Slug,
		Description: article.Description,
		Tags:        tags,
		Category:    article.Category,
		Author:      cat.DefaultAuthor,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		Platforms:   make(map[string]platformDefaults, len(cat.Platforms)),
	}

	for _, rules := range cat.Platforms {
		defaults := platformDefaults{
			Enabled: rules.Enabled,
			Emoji:   rules.Defaults.Emoji,
		}

		if _, constrained := rules.Constraint("topics"); constrained {
			defaults.Topics = tags
		}

		if _, constrained := rules.Constraint("price"); constrained {
			free := 0
			defaults.Price = &free
		}

		fm.Platforms[string(rules.ID)] = defaults
	}

	var buff bytes.Buffer

	buff.WriteString("---\n")

	encoder := yaml.NewEncoder(&buff)
	encoder.SetIndent(2)

	if err := encoder.Encode(fm); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := encoder.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	buff.WriteString("---\n\n")

	err := bodyTemplate.Execute(&buff, struct {
		Title     string
		Story     string
		Technical string
	}{
		Title:     article.Title,
		Story:     firstPhrase(cat, "story", "Story"),
		Technical: firstPhrase(cat, "technical", "Implementation"),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return buff.Bytes(), nil
}

func firstPhrase(cat *catalog.Catalog, region string, fallback string) string {
	for _, r := range cat.Vocabulary.Regions {
		if r.Name == region && len(r.Phrases) > 0 {
			return r.Phrases[0]
		}
	}
	return fallback
}
