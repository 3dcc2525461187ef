package client

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dampen59/minebox-companion/internal/audio"
	"github.com/dampen59/minebox-companion/internal/config"
	"github.com/dampen59/minebox-companion/internal/protocol"
	"github.com/dampen59/minebox-companion/internal/state"
	"github.com/dampen59/minebox-companion/internal/transport"
)

// Emitter sends outbound events to the companion server. Satisfied by
// *transport.Client.
type Emitter interface {
	Emit(event string, payload any) error
}

// Router decodes inbound envelopes into typed events and dispatches each to
// its handler on a dedicated goroutine. Decode failures and unknown events
// are logged and isolated per event; nothing a handler does terminates the
// connection.
type Router struct {
	logger  *zap.Logger
	chatCfg config.ChatConfig

	state     *state.Manager
	emitter   Emitter
	gate      *ProtocolGate
	rooms     *audio.RoomManager
	devices   *audio.DeviceSession
	decoders  *audio.DecoderPool
	proximity *audio.Calculator

	notifier Notifier
	chat     ChatDisplay
	sound    SoundPlayer
	textures TextureStore
	loc      Localizer
}

// RouterDeps bundles the Router's collaborators.
type RouterDeps struct {
	State     *state.Manager
	Emitter   Emitter
	Gate      *ProtocolGate
	Rooms     *audio.RoomManager
	Devices   *audio.DeviceSession
	Decoders  *audio.DecoderPool
	Proximity *audio.Calculator
	Notifier  Notifier
	Chat      ChatDisplay
	Sound     SoundPlayer
	Textures  TextureStore
	Localizer Localizer
}

// NewRouter creates a Router.
//
// Precondition: every field of deps and logger must be non-nil.
func NewRouter(deps RouterDeps, chatCfg config.ChatConfig, logger *zap.Logger) *Router {
	return &Router{
		logger:    logger,
		chatCfg:   chatCfg,
		state:     deps.State,
		emitter:   deps.Emitter,
		gate:      deps.Gate,
		rooms:     deps.Rooms,
		devices:   deps.Devices,
		decoders:  deps.Decoders,
		proximity: deps.Proximity,
		notifier:  deps.Notifier,
		chat:      deps.Chat,
		sound:     deps.Sound,
		textures:  deps.Textures,
		loc:       deps.Localizer,
	}
}

// OnConnect emits the hello handshake. Wired to transport.Client.OnConnect.
func (r *Router) OnConnect() {
	id := r.state.Identity()
	err := r.emitter.Emit(protocol.NameHelloConnect, protocol.HelloConnect{
		PlayerID:   id.ID.String(),
		PlayerName: id.Name,
		Locale:     id.Locale,
		Version:    protocol.Version,
	})
	if err != nil {
		r.logger.Error("emitting hello", zap.Error(err))
		return
	}
	r.logger.Info("hello sent",
		zap.String("player", id.Name),
		zap.Int("protocol_version", protocol.Version),
	)
}

// OnEnvelope decodes one inbound envelope and dispatches its handler on a
// fresh goroutine so a blocking handler (device open, decode) never stalls
// delivery of later events. Wired to transport.Client.OnEnvelope.
func (r *Router) OnEnvelope(env transport.Envelope) {
	ev, err := protocol.Decode(env.Event, env.Data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownEvent) {
			r.logger.Warn("ignoring unknown event", zap.String("event", env.Event))
		} else {
			r.logger.Warn("dropping malformed payload",
				zap.String("event", env.Event),
				zap.Error(err),
			)
		}
		return
	}
	go r.handle(ev)
}

// handle dispatches one decoded event. The switch is exhaustive over the
// protocol.Event variants.
func (r *Router) handle(ev protocol.Event) {
	switch ev := ev.(type) {
	case protocol.ShopOfferEvent:
		r.handleShopOffer(ev)
	case protocol.ProtocolMismatchEvent:
		r.gate.HandleMismatch()
	case protocol.ItemsStatsEvent:
		r.state.ReplaceItems(ev.Items)
		r.logger.Info("item catalogue replaced", zap.Int("items", len(ev.Items)))
	case protocol.ChatFlagsEvent:
		r.state.ReplaceChatFlags(ev.Flags)
		r.logger.Info("chat flag catalogue replaced", zap.Int("flags", len(ev.Flags)))
	case protocol.FishablesEvent:
		r.handleFishables(ev)
	case protocol.ShinyEvent:
		r.handleShiny(ev)
	case protocol.ChatMessageEvent:
		r.handleChatMessage(ev)
	case protocol.AudioDataEvent:
		r.playFrame(ev.Player, ev.Data, 1)
	case protocol.ProximityAudioDataEvent:
		r.handleProximityAudio(ev)
	case protocol.AudioRoomCreatedEvent:
		r.chat.Success(r.loc.Resolve("audio.create.success", ev.Code))
		r.enterRoom(ev.Code, audio.MembershipCreated)
	case protocol.AudioRoomJoinedEvent:
		r.chat.Success(r.loc.Resolve("audio.join.success", ev.Code))
		r.enterRoom(ev.Code, audio.MembershipJoined)
	case protocol.ProximityAudioToggledEvent:
		r.handleProximityToggled(ev)
	case protocol.JoinAudioRoomFailedEvent:
		r.chat.Error(r.loc.Resolve("audio.join.failed", ev.Code))
	case protocol.AudioRoomCreationFailedEvent:
		r.chat.Error(r.loc.Resolve("audio.create.failed"))
	case protocol.LeaveAudioRoomFailedEvent:
		r.chat.Error(r.loc.Resolve("audio.leave.failed"))
	case protocol.ProximityRequiresLeaveEvent:
		r.chat.Error(r.loc.Resolve("audio.proximity.leavefirst"))
	case protocol.JoinRequiresProximityOffEvent:
		r.chat.Error(r.loc.Resolve("audio.join.proximityfirst"))
	case protocol.AudioClientConnectedEvent:
		r.chat.Info(r.loc.Resolve("audio.user.connected", ev.Player))
	case protocol.AudioClientDisconnectedEvent:
		r.chat.Info(r.loc.Resolve("audio.user.disconnected", ev.Player))
	case protocol.AudioRoomLeftEvent:
		r.chat.Success(r.loc.Resolve("audio.leave.success", ev.Code))
		r.rooms.Leave()
	case protocol.WeatherDataEvent:
		r.handleWeather(ev)
	default:
		// Decode only produces the variants above.
		r.logger.Error("unhandled event variant")
	}
}

func (r *Router) handleShopOffer(ev protocol.ShopOfferEvent) {
	if !ev.Shop.Valid() {
		r.logger.Warn("unknown shop in offer event",
			zap.String("shop", string(ev.Shop)),
			zap.String("item", ev.Item),
		)
		return
	}

	key := strings.ToLower(string(ev.Shop))
	title := r.loc.Resolve("shop." + key + ".offer.title")
	if !r.state.SetOfferIfAbsent(ev.Shop, title+": "+ev.Item) {
		return
	}
	r.notifier.Notify(title, r.loc.Resolve("shop."+key+".offer.content", ev.Item))
	r.sound.Play("bell")
}

func (r *Router) handleFishables(ev protocol.FishablesEvent) {
	fish := make([]state.Fishable, 0, len(ev.Fishables))
	for _, entry := range ev.Fishables {
		f := state.Fishable{FishEntry: entry}
		if entry.Texture == "" {
			r.logger.Warn("fishable has no texture data", zap.String("fish", entry.Name))
			fish = append(fish, f)
			continue
		}
		handle, err := r.textures.Materialize("fish/"+entry.Name, entry.Texture)
		if err != nil {
			r.logger.Warn("materializing fishable texture",
				zap.String("fish", entry.Name),
				zap.Error(err),
			)
			fish = append(fish, f)
			continue
		}
		f.TextureHandle = handle
		fish = append(fish, f)
	}
	r.state.ReplaceFishables(fish)
	r.logger.Info("fishables catalogue replaced", zap.Int("fishables", len(fish)))
}

func (r *Router) handleShiny(ev protocol.ShinyEvent) {
	if !r.state.MarkShinyAlerted(ev.MobInstanceID) {
		return
	}
	mobName := r.loc.Resolve(ev.MobKey)
	r.notifier.Notify(
		r.loc.Resolve("shiny.title"),
		r.loc.Resolve("shiny.content", ev.Player, mobName),
	)
	r.sound.Play("shiny")
}

// handleChatMessage applies the suppression chain in order, stopping at the
// first matching condition: relay disabled, own language unknown, same
// language, per-language toggle off.
func (r *Router) handleChatMessage(ev protocol.ChatMessageEvent) {
	if !r.chatCfg.MultiChannel {
		return
	}
	own := r.state.ChatLang()
	if own == "" {
		return
	}
	if own == ev.Lang {
		return
	}
	if enabled, ok := r.chatCfg.Languages[ev.Lang]; ok && !enabled {
		return
	}

	flag := r.state.ChatFlagByLang(ev.Lang)
	r.chat.Message(flag, ev.Player, ev.Content)
}

func (r *Router) handleProximityAudio(ev protocol.ProximityAudioDataEvent) {
	_, volume, ok := r.proximity.Resolve(ev.Player)
	if !ok {
		// Speaker out of range. Not an error.
		return
	}
	r.playFrame(ev.Player, ev.Data, volume)
}

// playFrame decodes one frame through the speaker's pooled decoder and
// plays it at the given volume. Every failure is contained to the frame.
func (r *Router) playFrame(player string, frame []byte, volume float64) {
	dec := r.decoders.GetOrCreate(player)
	if dec == nil {
		return
	}
	samples, err := dec.Decode(frame)
	if err != nil {
		r.logger.Debug("dropping undecodable frame",
			zap.String("speaker", player),
			zap.Error(err),
		)
		return
	}
	if err := r.devices.Play(samples, volume); err != nil {
		r.logger.Debug("playback failed",
			zap.String("speaker", player),
			zap.Error(err),
		)
	}
}

// enterRoom runs device acquisition for a created or joined room. On
// failure the room is rolled back, a leave is emitted, and the player is
// told via a chat error.
func (r *Router) enterRoom(code string, membership audio.Membership) {
	if err := r.rooms.Enter(code, membership); err != nil {
		if emitErr := r.emitter.Emit(protocol.NameLeaveAudioRoom, nil); emitErr != nil {
			r.logger.Error("emitting auto-leave", zap.Error(emitErr))
		}
		r.chat.Error(r.loc.Resolve("audio.devices.failed"))
		r.logger.Error("opening audio devices",
			zap.String("room", code),
			zap.Error(err),
		)
	}
}

func (r *Router) handleProximityToggled(ev protocol.ProximityAudioToggledEvent) {
	if !ev.Enabled {
		_ = r.rooms.SetProximity(false) // disabling never fails
		r.chat.Info(r.loc.Resolve("audio.proximity.disabled"))
		return
	}

	r.chat.Success(r.loc.Resolve("audio.proximity.enabled"))
	if err := r.rooms.SetProximity(true); err != nil {
		r.logger.Error("opening audio devices for proximity mode", zap.Error(err))
	}
}

func (r *Router) handleWeather(ev protocol.WeatherDataEvent) {
	switch ev.Kind {
	case protocol.WeatherRain:
		r.state.AddRainTimestamp(ev.Timestamp)
	case protocol.WeatherStorm:
		r.state.AddStormTimestamp(ev.Timestamp)
	default:
		r.logger.Warn("unknown weather kind",
			zap.String("kind", ev.Kind),
			zap.Int64("timestamp", ev.Timestamp),
		)
	}
}
