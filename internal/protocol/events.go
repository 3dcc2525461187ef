// Package protocol defines the event surface of the companion server
// connection: event names, typed payloads, and the decoder that turns a
// named wire payload into a closed set of event variants.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the protocol revision this client speaks. It is sent in the
// hello message and checked by the server; a mismatch is reported back via
// the ProtocolMismatch event.
const Version = 7

// Inbound (server-to-client) event names.
const (
	NameShopOffer                = "S2CShopOfferEvent"
	NameProtocolMismatch         = "S2CProtocolMismatch"
	NameItemsStats               = "S2CMineboxItemsStats"
	NameChatFlags                = "S2CMineboxChatFlags"
	NameFishables                = "S2CMineboxFishables"
	NameShiny                    = "S2CShinyEvent"
	NameChatMessage              = "S2CChatMessage"
	NameAudioData                = "S2CAudioData"
	NameProximityAudioData       = "S2CProximityAudioData"
	NameAudioRoomCreated         = "S2CAudioRoomCreated"
	NameAudioRoomJoined          = "S2CAudioRoomJoined"
	NameProximityAudioToggled    = "S2CProximityAudioToggled"
	NameJoinAudioRoomFailed      = "S2CJoinAudioRoomFailed"
	NameAudioRoomCreationFailed  = "S2CAudioRoomCreationFailed"
	NameLeaveAudioRoomFailed     = "S2CLeaveAudioRoomFailed"
	NameProximityRequiresLeave   = "S2CEnableProximityAudioFailedLeaveFirst"
	NameJoinRequiresProximityOff = "S2CCreateJoinAudioRoomFailedDisableProximityFirst"
	NameAudioClientConnected     = "S2CAudioClientConnected"
	NameAudioClientDisconnected  = "S2CAudioClientDisconnected"
	NameAudioRoomLeft            = "S2CAudioRoomLeft"
	NameWeatherData              = "S2CWeatherData"
)

// Outbound (client-to-server) event names.
const (
	NameHelloConnect   = "C2SHelloConnectMessage"
	NameLeaveAudioRoom = "C2SLeaveAudioRoom"
)

// ErrUnknownEvent is returned by Decode for event names outside the
// catalogue. Receivers log and drop such events; they are never fatal.
var ErrUnknownEvent = errors.New("unknown event name")

// Shop identifies one of the rotating-offer shops.
type Shop string

// Known shops.
const (
	ShopMouse    Shop = "Mouse"
	ShopBakery   Shop = "Bakery"
	ShopBuckstar Shop = "Buckstar"
	ShopCocktail Shop = "Cocktail"
)

// Valid reports whether the shop is one of the known shop identifiers.
func (s Shop) Valid() bool {
	switch s {
	case ShopMouse, ShopBakery, ShopBuckstar, ShopCocktail:
		return true
	}
	return false
}

// Weather kinds carried by WeatherData events.
const (
	WeatherRain  = "RAIN"
	WeatherStorm = "STORM"
)

// Item is one entry of the server-authoritative item catalogue.
type Item struct {
	Name   string             `json:"name"`
	Rarity string             `json:"rarity"`
	Level  int                `json:"level"`
	Stats  map[string]float64 `json:"stats"`
}

// ChatFlag maps a chat language code to its display flag.
type ChatFlag struct {
	Lang string `json:"lang"`
	Flag string `json:"flag"`
}

// FishEntry is one entry of the fishables catalogue. Texture is an optional
// base64 PNG blob; entries without one are still valid catalogue members.
type FishEntry struct {
	Name    string `json:"name"`
	Texture string `json:"texture,omitempty"`
}

// Event is the closed set of inbound event variants. Exactly the types in
// this package implement it.
type Event interface {
	event()
}

// ShopOfferEvent announces the current rotating offer of a shop.
type ShopOfferEvent struct {
	Shop Shop   `json:"shop"`
	Item string `json:"item"`
}

// ProtocolMismatchEvent signals that the server rejected this client's
// protocol version. It carries no payload.
type ProtocolMismatchEvent struct{}

// ItemsStatsEvent replaces the item catalogue.
type ItemsStatsEvent struct {
	Items []Item
}

// ChatFlagsEvent replaces the chat-flag catalogue.
type ChatFlagsEvent struct {
	Flags []ChatFlag
}

// FishablesEvent replaces the fishables catalogue.
type FishablesEvent struct {
	Fishables []FishEntry
}

// ShinyEvent announces a shiny monster spotting.
type ShinyEvent struct {
	Player        string `json:"player"`
	MobKey        string `json:"mobKey"`
	MobInstanceID string `json:"mobInstanceId"`
}

// ChatMessageEvent relays a chat line from another language channel.
type ChatMessageEvent struct {
	Lang    string `json:"lang"`
	Player  string `json:"player"`
	Content string `json:"content"`
}

// AudioDataEvent carries one compressed audio frame from a room member.
type AudioDataEvent struct {
	Player string `json:"player"`
	Data   []byte `json:"data"`
}

// ProximityAudioDataEvent carries one compressed audio frame subject to
// in-world proximity attenuation.
type ProximityAudioDataEvent struct {
	Player string `json:"player"`
	Data   []byte `json:"data"`
}

// AudioRoomCreatedEvent confirms creation of a voice room.
type AudioRoomCreatedEvent struct {
	Code string `json:"code"`
}

// AudioRoomJoinedEvent confirms joining a voice room.
type AudioRoomJoinedEvent struct {
	Code string `json:"code"`
}

// ProximityAudioToggledEvent switches proximity mixing on or off.
type ProximityAudioToggledEvent struct {
	Enabled bool `json:"enabled"`
}

// JoinAudioRoomFailedEvent reports a failed join attempt.
type JoinAudioRoomFailedEvent struct {
	Code string `json:"code"`
}

// AudioRoomCreationFailedEvent reports a failed room creation.
type AudioRoomCreationFailedEvent struct{}

// LeaveAudioRoomFailedEvent reports a failed leave attempt.
type LeaveAudioRoomFailedEvent struct{}

// ProximityRequiresLeaveEvent reports that proximity mode cannot be enabled
// while a code room is active.
type ProximityRequiresLeaveEvent struct{}

// JoinRequiresProximityOffEvent reports that a room cannot be created or
// joined while proximity mode is active.
type JoinRequiresProximityOffEvent struct{}

// AudioClientConnectedEvent announces a participant joining the room.
type AudioClientConnectedEvent struct {
	Player string `json:"player"`
}

// AudioClientDisconnectedEvent announces a participant leaving the room.
type AudioClientDisconnectedEvent struct {
	Player string `json:"player"`
}

// AudioRoomLeftEvent confirms that this client left the room.
type AudioRoomLeftEvent struct {
	Code string `json:"code"`
}

// WeatherDataEvent reports an observed weather window start.
type WeatherDataEvent struct {
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}

func (ShopOfferEvent) event()                {}
func (ProtocolMismatchEvent) event()         {}
func (ItemsStatsEvent) event()               {}
func (ChatFlagsEvent) event()                {}
func (FishablesEvent) event()                {}
func (ShinyEvent) event()                    {}
func (ChatMessageEvent) event()              {}
func (AudioDataEvent) event()                {}
func (ProximityAudioDataEvent) event()       {}
func (AudioRoomCreatedEvent) event()         {}
func (AudioRoomJoinedEvent) event()          {}
func (ProximityAudioToggledEvent) event()    {}
func (JoinAudioRoomFailedEvent) event()      {}
func (AudioRoomCreationFailedEvent) event()  {}
func (LeaveAudioRoomFailedEvent) event()     {}
func (ProximityRequiresLeaveEvent) event()   {}
func (JoinRequiresProximityOffEvent) event() {}
func (AudioClientConnectedEvent) event()     {}
func (AudioClientDisconnectedEvent) event()  {}
func (AudioRoomLeftEvent) event()            {}
func (WeatherDataEvent) event()              {}

// HelloConnect is the outbound handshake payload sent once per connection.
type HelloConnect struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Locale     string `json:"locale"`
	Version    int    `json:"protocolVersion"`
}

// Decode maps a named wire payload to its typed event variant.
//
// Precondition: data must be the raw JSON payload for the named event; it may
// be empty for events that carry no payload.
// Postcondition: Returns exactly one of the Event variants, ErrUnknownEvent
// for names outside the catalogue, or a decode error for malformed payloads.
func Decode(name string, data []byte) (Event, error) {
	switch name {
	case NameShopOffer:
		return decodeAs[ShopOfferEvent](name, data)
	case NameProtocolMismatch:
		return ProtocolMismatchEvent{}, nil
	case NameItemsStats:
		var items []Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return ItemsStatsEvent{Items: items}, nil
	case NameChatFlags:
		var flags []ChatFlag
		if err := json.Unmarshal(data, &flags); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return ChatFlagsEvent{Flags: flags}, nil
	case NameFishables:
		var fish []FishEntry
		if err := json.Unmarshal(data, &fish); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return FishablesEvent{Fishables: fish}, nil
	case NameShiny:
		return decodeAs[ShinyEvent](name, data)
	case NameChatMessage:
		return decodeAs[ChatMessageEvent](name, data)
	case NameAudioData:
		return decodeAs[AudioDataEvent](name, data)
	case NameProximityAudioData:
		return decodeAs[ProximityAudioDataEvent](name, data)
	case NameAudioRoomCreated:
		return decodeAs[AudioRoomCreatedEvent](name, data)
	case NameAudioRoomJoined:
		return decodeAs[AudioRoomJoinedEvent](name, data)
	case NameProximityAudioToggled:
		return decodeAs[ProximityAudioToggledEvent](name, data)
	case NameJoinAudioRoomFailed:
		return decodeAs[JoinAudioRoomFailedEvent](name, data)
	case NameAudioRoomCreationFailed:
		return AudioRoomCreationFailedEvent{}, nil
	case NameLeaveAudioRoomFailed:
		return LeaveAudioRoomFailedEvent{}, nil
	case NameProximityRequiresLeave:
		return ProximityRequiresLeaveEvent{}, nil
	case NameJoinRequiresProximityOff:
		return JoinRequiresProximityOffEvent{}, nil
	case NameAudioClientConnected:
		return decodeAs[AudioClientConnectedEvent](name, data)
	case NameAudioClientDisconnected:
		return decodeAs[AudioClientDisconnectedEvent](name, data)
	case NameAudioRoomLeft:
		return decodeAs[AudioRoomLeftEvent](name, data)
	case NameWeatherData:
		return decodeAs[WeatherDataEvent](name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

func decodeAs[E Event](name string, data []byte) (Event, error) {
	var ev E
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return ev, nil
}
