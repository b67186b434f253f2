package cmd

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/kv"
	"github.com/zuccha/dnd-portal-sub002/pkg/pref"
	"github.com/zuccha/dnd-portal-sub002/pkg/query"
	rpcfiber "github.com/zuccha/dnd-portal-sub002/pkg/rpc/fiber"
	"github.com/zuccha/dnd-portal-sub002/pkg/storage"
	"github.com/zuccha/dnd-portal-sub002/pkg/store"
	"go.uber.org/zap"
)

// session holds everything a client command needs: the stores, the
// preferences, and what must be closed when the command ends.
type session struct {
	logger  *zap.Logger
	prefs   *pref.Store
	catalog *catalog.Catalog
	closers []func() error
}

func openSession(ctx context.Context) (s *session, err error) {
	logger, err := configureLogging()
	if err != nil {
		return nil, err
	}
	s = &session{logger: logger}
	defer func() {
		if err != nil {
			err = errors.CombineErrors(err, s.Close())
		}
	}()

	st, err := storage.Open(newStorageConfig(logger))
	if err != nil {
		return s, err
	}
	s.closers = append(s.closers, st.Close)

	prefsEngine, err := openPrefsEngine(ctx, st)
	if err != nil {
		return s, err
	}
	if c, ok := prefsEngine.(interface{ Close() error }); ok {
		s.closers = append(s.closers, c.Close)
	}
	s.prefs, err = pref.Open(pref.Config{
		Engine:  prefsEngine,
		Profile: viper.GetString("profile"),
		Logger:  logger,
	})
	if err != nil {
		return s, err
	}

	client, err := rpcfiber.NewClient(newClientConfig(logger))
	if err != nil {
		return s, err
	}
	locale, err := s.locale()
	if err != nil {
		return s, err
	}
	s.catalog, err = catalog.Open(catalog.Config{
		Deps: store.Deps{
			Service: client,
			Query:   query.NewClient(query.Config{Logger: logger.Named("query")}),
			Locale:  locale,
			Engine:  kv.PebbleEngine{DB: st.KV},
			Logger:  logger,
		},
	})
	if err != nil {
		return s, err
	}
	s.closers = append(s.closers, s.catalog.Close)
	return s, nil
}

// locale is the --lang override when given, the stored preference otherwise.
func (s *session) locale() (i18n.Locale, error) {
	code := viper.GetString("lang")
	if code == "" {
		return s.prefs, nil
	}
	lang, err := i18n.ParseLang(code)
	if err != nil {
		return nil, err
	}
	return i18n.NewStaticLocale(lang), nil
}

// Close releases the session in reverse order of opening.
func (s *session) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, s.closers[i]())
	}
	s.closers = nil
	_ = s.logger.Sync()
	return err
}

func openPrefsEngine(ctx context.Context, st storage.Storage) (kv.Engine, error) {
	switch backend := viper.GetString("prefs-backend"); backend {
	case "pebble":
		return kv.PebbleEngine{DB: st.KV}, nil
	case "redis":
		return kv.OpenRedis(ctx, viper.GetString("redis-url"), "dnd/")
	default:
		return nil, errors.Newf("[cmd] - unknown preferences backend %q", backend)
	}
}

func newStorageConfig(logger *zap.Logger) storage.Config {
	return storage.Config{
		MemBacked: viper.GetBool("mem"),
		Dirname:   viper.GetString("data"),
		Logger:    logger.Named("storage"),
	}
}

func newClientConfig(logger *zap.Logger) rpcfiber.ClientConfig {
	return rpcfiber.ClientConfig{
		URL:     viper.GetString("api-url"),
		APIKey:  viper.GetString("api-key"),
		Timeout: viper.GetDuration("timeout"),
		Logger:  logger.Named("rpc"),
	}
}

func configureLogging() (*zap.Logger, error) {
	if viper.GetBool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
