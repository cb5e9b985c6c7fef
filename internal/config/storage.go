package config

type Storage struct {
	Database Database `envPrefix:"DATABASE_"`
}

type Database struct {
	// DSN of the SQLite database keeping the publish history. An empty DSN
	// disables the history.
	DSN string `env:"DSN" envDefault:"crosspost.sqlite"`
}
