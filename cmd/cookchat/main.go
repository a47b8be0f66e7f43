// Package main provides the entry point for the CookChat terminal client.
// The client talks to the CookChat backend over HTTP and renders the
// conversation in an interactive terminal interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/fx"
	"go.uber.org/zap"

	appconvo "github.com/cookchat/cookchat/internal/application/conversation"
	"github.com/cookchat/cookchat/internal/application/popup"
	"github.com/cookchat/cookchat/internal/application/recipeset"
	"github.com/cookchat/cookchat/internal/application/session"
	"github.com/cookchat/cookchat/internal/infrastructure/api"
	"github.com/cookchat/cookchat/internal/infrastructure/config"
	"github.com/cookchat/cookchat/internal/infrastructure/tokenstore"
	"github.com/cookchat/cookchat/internal/ports/outbound"
	"github.com/cookchat/cookchat/internal/tui"
	"github.com/cookchat/cookchat/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	app := fx.New(
		fx.NopLogger,

		// Configuration
		fx.Provide(func() (*config.Config, error) {
			return config.Load(*configPath)
		}),

		// Logger. The terminal belongs to the interface, so logs go
		// to a file (or stderr) instead of stdout.
		fx.Provide(func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
				FilePath:    cfg.App.LogFile,
			})
		}),

		// Backend gateway
		fx.Provide(func(cfg *config.Config, log *zap.Logger) outbound.Gateway {
			return api.NewClient(cfg, log)
		}),

		// Token persistence
		fx.Provide(func(cfg *config.Config, log *zap.Logger) (*tokenstore.Store, error) {
			path, err := cfg.TokenPath()
			if err != nil {
				return nil, err
			}
			return tokenstore.New(path, log), nil
		}),

		// Session store
		fx.Provide(func(gw outbound.Gateway, tokens *tokenstore.Store, log *zap.Logger) *session.Store {
			return session.NewStore(gw, tokens, log)
		}),

		// Recipe set resolver
		fx.Provide(func(gw outbound.Gateway, sess *session.Store, log *zap.Logger) *recipeset.Resolver {
			return recipeset.NewResolver(gw, sess, log)
		}),

		// Conversation log
		fx.Provide(func(gw outbound.Gateway, resolver *recipeset.Resolver, sess *session.Store, log *zap.Logger) *appconvo.Log {
			return appconvo.NewLog(gw, resolver, sess, log)
		}),

		// Recipe popup
		fx.Provide(popup.NewController),

		fx.Invoke(registerLogoutHooks),
		fx.Invoke(runInterface),
	)

	app.Run()

	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "cookchat:", err)
		os.Exit(1)
	}
}

// registerLogoutHooks ties the per-session state to the session
// lifecycle: logging out wipes the conversation, the resolved recipe
// sets and any open popup.
func registerLogoutHooks(
	sess *session.Store,
	log *appconvo.Log,
	resolver *recipeset.Resolver,
	pop *popup.Controller,
) {
	sess.OnLogout(log.Reset)
	sess.OnLogout(resolver.Reset)
	sess.OnLogout(pop.Close)
}

func runInterface(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	sess *session.Store,
	convo *appconvo.Log,
	pop *popup.Controller,
	zlog *zap.Logger,
) {
	model := tui.New(sess, convo, pop, zlog)
	program := tea.NewProgram(model, tea.WithAltScreen())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if _, err := program.Run(); err != nil {
					zlog.Error("interface exited with error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			program.Quit()
			return nil
		},
	})
}
