// Package main provides the companion client binary that maintains the
// persistent connection to the companion server and drives the voice
// pipeline.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/dampen59/minebox-companion/internal/audio"
	"github.com/dampen59/minebox-companion/internal/client"
	"github.com/dampen59/minebox-companion/internal/config"
	"github.com/dampen59/minebox-companion/internal/observability"
	"github.com/dampen59/minebox-companion/internal/server"
	"github.com/dampen59/minebox-companion/internal/state"
	"github.com/dampen59/minebox-companion/internal/transport"
	"github.com/dampen59/minebox-companion/internal/ui"
)

func main() {
	configPath := flag.String("config", "configs/companion.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("initializing audio subsystem", zap.Error(err))
	}
	defer portaudio.Terminate()

	identity := state.Identity{
		ID:     uuid.New(),
		Name:   cfg.Player.Name,
		Locale: cfg.Player.Locale,
	}
	stateMgr := state.NewManager(identity)
	stateMgr.SetChatLang(chatLangFromLocale(cfg.Player.Locale))

	logger.Info("starting companion client",
		zap.String("server", cfg.Server.Address),
		zap.String("player", identity.Name),
	)

	devices := audio.NewDeviceSession(audio.PortAudioOpener{}, logger)
	rooms := audio.NewRoomManager(devices, cfg.Audio.SpeakerName, cfg.Audio.MicrophoneName, logger)
	decoders := audio.NewDecoderPool(logger)
	proximity := audio.NewCalculator(ui.OfflineWorld{}, cfg.Audio.ProximityRadius)

	loc := ui.NewTableLocalizer(nil)
	notifier := &ui.LogNotifier{Logger: logger}
	chat := &ui.LogChat{Logger: logger}
	sound := &ui.LogSound{Logger: logger}
	textures := ui.NewMemoryTextureStore()

	conn := transport.NewClient(cfg.Server.Address, cfg.Server.HandshakeTimeout, logger)
	router := client.NewRouter(client.RouterDeps{
		State:     stateMgr,
		Emitter:   conn,
		Gate:      client.NewProtocolGate(notifier, loc, logger),
		Rooms:     rooms,
		Devices:   devices,
		Decoders:  decoders,
		Proximity: proximity,
		Notifier:  notifier,
		Chat:      chat,
		Sound:     sound,
		Textures:  textures,
		Localizer: loc,
	}, cfg.Chat, logger)
	conn.OnConnect = router.OnConnect
	conn.OnEnvelope = router.OnEnvelope

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("socket-client", &server.FuncService{
		StartFn: func() error { return conn.Run(ctx) },
		StopFn: func() {
			_ = conn.Close()
			devices.CloseBoth()
		},
	})

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("running lifecycle", zap.Error(err))
	}
}

// chatLangFromLocale maps a game locale like "en_us" to its chat language
// code.
func chatLangFromLocale(locale string) string {
	lang, _, _ := strings.Cut(locale, "_")
	return lang
}
