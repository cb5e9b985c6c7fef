package config

type Metrics struct {
	Textfile string `env:"TEXTFILE"`
}
