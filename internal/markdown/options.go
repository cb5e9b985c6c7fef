package markdown

import (
	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/core/model"
)

type Options struct {
	Vocabulary      model.HeadingVocabulary
	Markers         []model.MarkerSyntax
	DefaultAuthor   string
	DefaultCategory string
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Vocabulary: model.HeadingVocabulary{MinLevel: 2},
		Markers:    DefaultMarkers(),
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithVocabulary(vocabulary model.HeadingVocabulary) OptionFunc {
	return func(opts *Options) {
		opts.Vocabulary = vocabulary
	}
}

func WithMarkers(markers ...model.MarkerSyntax) OptionFunc {
	return func(opts *Options) {
		opts.Markers = markers
	}
}

func WithDefaults(author, category string) OptionFunc {
	return func(opts *Options) {
		opts.DefaultAuthor = author
		opts.DefaultCategory = category
	}
}

// WithCatalog configures the parser with the vocabulary, markers and
// defaults of the given catalog.
func WithCatalog(c *catalog.Catalog) OptionFunc {
	return func(opts *Options) {
		opts.Vocabulary = c.Vocabulary
		if len(c.Markers) > 0 {
			opts.Markers = c.Markers
		}
		opts.DefaultAuthor = c.DefaultAuthor
		opts.DefaultCategory = c.DefaultCategory
	}
}

func DefaultMarkers() []model.MarkerSyntax {
	return []model.MarkerSyntax{
		{
			Start:  `^<!--\s*platform:(?P<name>[\w-]+)\s*-->$`,
			End:    `^<!--\s*endplatform\s*-->$`,
			Region: model.RegionMarkerWrappedPrefix + "$name",
		},
		{
			Start:  `^<!--\s*region:(?P<name>[\w:-]+)\s*-->$`,
			End:    `^<!--\s*endregion(?::(?P<name>[\w:-]+))?\s*-->$`,
			Region: "$name",
		},
		{
			Start:  `^<!--\s*paid\s*-->$`,
			End:    `^<!--\s*endpaid\s*-->$`,
			Region: model.RegionPaidOnly,
		},
	}
}
