package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/api"
	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/blobcache"
	"github.com/llehouerou/ripple/internal/config"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/library"
	"github.com/llehouerou/ripple/internal/likes"
	"github.com/llehouerou/ripple/internal/logging"
	"github.com/llehouerou/ripple/internal/mpris"
	"github.com/llehouerou/ripple/internal/notify"
	"github.com/llehouerou/ripple/internal/output"
	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/playlists"
	"github.com/llehouerou/ripple/internal/push"
	"github.com/llehouerou/ripple/internal/queue"
	"github.com/llehouerou/ripple/internal/stderr"
	"github.com/llehouerou/ripple/internal/syncer"
	"github.com/llehouerou/ripple/internal/ui"
)

func main() {
	// Audio libraries write to stderr, which would corrupt the terminal UI.
	if err := stderr.Start(); err != nil {
		fmt.Printf("Error redirecting stderr: %v\n", err)
	}
	err := run()
	stderr.Stop()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath, err := logging.DefaultPath()
	if err != nil {
		return err
	}
	logFile, err := logging.Setup(logPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cacheCfg := cfg.GetCacheConfig()
	cachePath := cacheCfg.Path
	if cachePath == "" {
		if cachePath, err = blobcache.DefaultPath(); err != nil {
			return err
		}
	}
	cache, err := blobcache.Open(ctx, cachePath, cacheCfg.Capacity)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cache.Close()

	client := api.NewClient(cfg.ServerURL, cfg.Playback.UserAgent)
	loader := output.NewLoader(cache, client)
	urls := playback.NewURLRegistry()
	device := output.NewDevice(loader, urls)
	defer device.Close()
	engine := playback.NewEngine(device, urls, cfg.GetPlaybackOptions())
	defer engine.Close()

	stores := syncer.Stores{
		Library:   library.NewTable(),
		Queue:     queue.New(),
		Likes:     likes.New(),
		Playlists: playlists.New(),
	}
	bridge := ui.NewBridge()
	controller := syncer.New(client, stores, bridge)

	sessionCfg := app.Config{
		Backend:  client,
		Stores:   stores,
		Player:   engine,
		Renderer: bridge,
	}
	if *cacheCfg.Prefetch {
		sessionCfg.Prefetcher = loader
	}
	if cfg.NotificationsEnabled() {
		if n, err := notify.New(); err != nil {
			log.Warn().Err(err).Msg("desktop notifications unavailable")
		} else {
			announcer := notify.NewAnnouncer(n)
			defer announcer.Dismiss()
			sessionCfg.Announcer = announcer
		}
	}
	session := app.New(sessionCfg)
	defer session.Close()

	if cfg.MPRISEnabled() {
		if adapter, err := mpris.New(session); err != nil {
			log.Warn().Err(err).Msg("mpris unavailable")
		} else {
			defer adapter.Close()
		}
	}

	bootstrap := func() {
		if err := controller.Bootstrap(ctx); err != nil {
			bridge.ShowError(errmsg.Format(errmsg.OpLibraryLoad, err))
		}
	}

	pushOpts := cfg.GetPushOptions()
	pushOpts.OnConnect = func(reconnect bool) {
		if !reconnect {
			return
		}
		// Messages sent while disconnected are lost; resync from REST.
		go bootstrap()
	}
	channel := push.NewClient(cfg.PushURL, pushOpts)

	go bootstrap()
	go func() {
		if err := controller.Run(ctx, channel); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("push channel stopped")
		}
	}()
	go func() {
		if err := output.WatchSleep(ctx, device); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("sleep watcher stopped")
		}
	}()

	log.Info().Str("server", cfg.ServerURL).Str("push", cfg.PushURL).Msg("ripple starting")

	p := tea.NewProgram(ui.New(session, cache.Stats), tea.WithAltScreen())
	go bridge.Run(ctx, p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
