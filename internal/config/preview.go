package config

type Preview struct {
	Length int `env:"LENGTH" envDefault:"400"`
}
