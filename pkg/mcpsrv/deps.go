package mcpsrv

import (
	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/internal/cache"
	"github.com/usestring/rugsearch/internal/config"
	"github.com/usestring/rugsearch/internal/query"
	"github.com/usestring/rugsearch/internal/session"
	"github.com/usestring/rugsearch/pkg/client"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same session as builtin tools.
type Deps struct {
	Client  *client.Client
	Session *session.Controller
	Cache   *cache.AssetCache
	Assets  *assets.Loader
	Query   *query.Engine
	Config  *config.Config
}
