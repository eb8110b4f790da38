package cli

import (
	"github.com/spf13/cobra"

	"github.com/stackmesa/depstack/internal/api"
	"github.com/stackmesa/depstack/pkg/cache"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/provider/git"
	"github.com/stackmesa/depstack/pkg/provider/local"
	"github.com/stackmesa/depstack/pkg/provider/maven"
	"github.com/stackmesa/depstack/pkg/store"
)

// newServeCmd creates the serve command: run resolution as an HTTP
// service. Without --redis and --mongo the service keeps everything in
// process, which is fine for a single instance.
func newServeCmd() *cobra.Command {
	var (
		addr     string
		redisURL string
		mongoURI string
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resolution HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			client, err := maven.NewClient(httpCacheTTL)
			if err != nil {
				return err
			}
			reg := provider.NewRegistry(maven.New(client), local.New(), git.New())
			if cacheDir == "" {
				cacheDir = defaultCacheDir()
			}
			cfg := provider.Config{CacheDir: cacheDir}

			var results cache.Cache
			if redisURL != "" {
				results, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisURL, Prefix: "depstack:"})
				if err != nil {
					return err
				}
				defer results.Close()
				logger.Info("result cache", "backend", "redis", "addr", redisURL)
			}

			var archive store.Store
			if mongoURI != "" {
				archive, err = store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
				if err != nil {
					return err
				}
				defer archive.Close(ctx)
				logger.Info("archive", "backend", "mongo")
			}

			srv := api.NewServer(reg, cfg, archive, results, logger)
			return srv.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8750", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis address for the shared result cache (host:port)")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "mongodb URI for the resolution archive")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "artifact cache directory")
	return cmd
}
