package service

import "log/slog"

// Factory builds one Controller per page session, all sharing the same game service.
type Factory struct {
	api    GameService
	logger *slog.Logger
}

func NewFactory(api GameService, logger *slog.Logger) *Factory {
	return &Factory{
		api:    api,
		logger: logger,
	}
}

func (f *Factory) New(observers ...Observer) *Controller {
	return NewController(f.api, f.logger.With("component", "controller"), observers...)
}
