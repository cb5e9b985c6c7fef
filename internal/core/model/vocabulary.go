package model

// HeadingVocabulary lists the heading phrases opening implicit regions.
type HeadingVocabulary struct {
	// MinLevel is the smallest heading level able to open a region.
	MinLevel int             `yaml:"minLevel"`
	Regions  []HeadingRegion `yaml:"regions"`
}

type HeadingRegion struct {
	Name string `yaml:"name"`
	// Phrases are compared to normalized heading texts, a heading matches
	// when it contains one of them.
	Phrases []string `yaml:"phrases,omitempty"`
	// Patterns are regular expressions matched against normalized heading
	// texts.
	Patterns []string `yaml:"patterns,omitempty"`
}

// MarkerSyntax describes a pair of comment markers delimiting an explicit
// region. Start and End are regular expressions; a "name" capture group, if
// any, is substituted to "$name" in Region.
type MarkerSyntax struct {
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Region string `yaml:"region"`
}
