package tools

import (
	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/internal/config"
	"github.com/usestring/rugsearch/internal/query"
	"github.com/usestring/rugsearch/internal/session"
	"github.com/usestring/rugsearch/pkg/client"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client  *client.Client
	Session *session.Controller
	Assets  *assets.Loader
	Query   *query.Engine
	Config  *config.Config
}

func (d *Deps) jqMaxResults() int {
	if d.Config != nil && d.Config.JQMaxResults > 0 {
		return d.Config.JQMaxResults
	}
	return config.DefaultJQMaxResults
}
