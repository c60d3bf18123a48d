package internal

import "github.com/starford/extdeck/internal/source"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	fetcher source.Fetcher
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFetcher overrides the data source built from the configured location.
func WithFetcher(f source.Fetcher) Option {
	return func(a *application) {
		a.fetcher = f
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errConfigRequired
	}
	if app.fetcher == nil {
		app.fetcher = source.New(app.config.Source.Location, app.config.Source.Timeout)
	}
	return app, nil
}
