package cmd

import (
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
	rpcfiber "github.com/zuccha/dnd-portal-sub002/pkg/rpc/fiber"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc/memory"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an in-memory portal backend over HTTP",
	Long: `serve hosts every remote resource operation from memory, for development
and demos. Resources can be loaded at startup from a JSON array with --seed.
When --secret is set, calls must carry an API key signed with it; a key is
issued and logged at startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := configureLogging()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		backend := memory.New(memory.Config{
			Kinds:     memoryKinds(),
			Campaigns: viper.GetStringMapString("campaigns"),
			Logger:    logger.Named("memory"),
		})
		if err := seed(backend, viper.GetString("seed")); err != nil {
			return err
		}

		srv := &rpcfiber.Server{Handler: backend, Logger: logger.Named("rpc")}
		if secret := viper.GetString("secret"); secret != "" {
			srv.Token = &rpcfiber.TokenService{
				Secret:     []byte(secret),
				Expiration: viper.GetDuration("key-expiration"),
			}
			key, err := srv.Token.New(uuid.New())
			if err != nil {
				return err
			}
			logger.Info("issued api key", zap.String("key", key))
		}

		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		srv.BindTo(app)

		lis, err := net.Listen("tcp", viper.GetString("listen-address"))
		if err != nil {
			return err
		}
		logger.Info("serving", zap.String("address", lis.Addr().String()))

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return app.Listener(lis) })
		g.Go(func() error {
			<-ctx.Done()
			return app.Shutdown()
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP(
		"listen-address",
		"l",
		"127.0.0.1:9090",
		"Address the backend listens on.",
	)
	serveCmd.Flags().String(
		"seed",
		"",
		"JSON file holding an array of resources to load at startup.",
	)
	serveCmd.Flags().StringToString(
		"campaigns",
		nil,
		"Campaign display names, e.g. c1=Lost Mine.",
	)
	serveCmd.Flags().String(
		"secret",
		"",
		"Secret API keys are signed with. Calls are not authenticated when empty.",
	)
	serveCmd.Flags().Duration(
		"key-expiration",
		24*time.Hour,
		"Lifetime of the issued API key.",
	)

	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		panic(err)
	}
}

func seed(b *memory.Backend, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "[cmd] - reading seed")
	}
	var resources []map[string]interface{}
	if err := json.Unmarshal(raw, &resources); err != nil {
		return errors.Wrapf(err, "[cmd] - %s is not a JSON array of resources", path)
	}
	seeds := make([]interface{}, len(resources))
	for i, r := range resources {
		seeds[i] = r
	}
	return b.Seed(seeds...)
}

func memoryKinds() []memory.Kind {
	kinds := make([]memory.Kind, len(catalog.Descriptors))
	for i, d := range catalog.Descriptors {
		kinds[i] = memory.Kind(d)
	}
	return kinds
}
