package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/veridian-estates/pipeline-api/internal/config"
	"go.uber.org/zap"
)

func isDevEnvironment(environment string) bool {
	return environment == "development" || environment == "local" || environment == ""
}

// CORS builds the cross-origin policy from configuration. Development allows
// any origin; elsewhere only the configured list is accepted, and an empty
// list denies everything rather than falling back to the library's "*".
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAny := func(r *http.Request, origin string) bool { return origin != "" }

	hasWildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			hasWildcard = true
			break
		}
	}

	switch {
	case hasWildcard:
		if !isDevEnvironment(environment) {
			logger.Warn("wildcard CORS origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured",
			zap.Strings("origins", cfg.AllowedOrigins))
	case isDevEnvironment(environment):
		options.AllowOriginFunc = allowAny
	default:
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("no CORS origins configured, cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}
