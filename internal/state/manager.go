// Package state holds the shared client session state mutated by
// concurrently dispatched event handlers: the local player identity, the
// active chat language, server-authoritative catalogues, shop offer caches,
// the shiny alert set, and the weather timestamp logs.
package state

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dampen59/minebox-companion/internal/protocol"
)

// Identity describes the local player as announced in the hello handshake.
type Identity struct {
	// ID is the stable player identifier for this session.
	ID uuid.UUID
	// Name is the player display name.
	Name string
	// Locale is the game client language (e.g. "en_us").
	Locale string
}

// Fishable is a fishables catalogue entry plus its materialized texture
// handle, when one could be created.
type Fishable struct {
	protocol.FishEntry
	// TextureHandle is the opaque handle of the materialized texture, or the
	// zero UUID when the entry shipped without texture data.
	TextureHandle uuid.UUID
}

// Manager is the single synchronized owner of all mutable session state.
// All methods are safe for concurrent use.
type Manager struct {
	mu sync.RWMutex

	identity Identity

	chatLang string

	shinyAlerted map[string]bool

	items     []protocol.Item
	chatFlags []protocol.ChatFlag
	fishables []Fishable

	offers map[protocol.Shop]string

	rainTimestamps  []int64
	stormTimestamps []int64
}

// NewManager creates a Manager for the given player identity.
//
// Postcondition: Returns a Manager with empty catalogues, no cached offers,
// no alerted shinies, and empty weather logs.
func NewManager(identity Identity) *Manager {
	return &Manager{
		identity:     identity,
		shinyAlerted: make(map[string]bool),
		offers:       make(map[protocol.Shop]string),
	}
}

// Identity returns the local player identity.
func (m *Manager) Identity() Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// SetChatLang records the player's active chat language.
func (m *Manager) SetChatLang(lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatLang = lang
}

// ChatLang returns the active chat language, or "" when none is known yet.
func (m *Manager) ChatLang() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chatLang
}

// MarkShinyAlerted records that an alert fired for the given monster
// instance.
//
// Precondition: mobInstanceID must be non-empty.
// Postcondition: Returns true exactly once per instance id; false for every
// later call with the same id.
func (m *Manager) MarkShinyAlerted(mobInstanceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shinyAlerted[mobInstanceID] {
		return false
	}
	m.shinyAlerted[mobInstanceID] = true
	return true
}

// ShinyAlertCount returns the number of distinct alerted instances.
func (m *Manager) ShinyAlertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shinyAlerted)
}

// ReplaceItems swaps in a new item catalogue wholesale.
func (m *Manager) ReplaceItems(items []protocol.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

// Items returns the current item catalogue. The returned slice must not be
// mutated by the caller.
func (m *Manager) Items() []protocol.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items
}

// ReplaceChatFlags swaps in a new chat-flag catalogue wholesale.
func (m *Manager) ReplaceChatFlags(flags []protocol.ChatFlag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatFlags = flags
}

// ChatFlagByLang resolves the display flag for a chat language, or "" when
// the catalogue has no entry for it.
func (m *Manager) ChatFlagByLang(lang string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.chatFlags {
		if f.Lang == lang {
			return f.Flag
		}
	}
	return ""
}

// ReplaceFishables swaps in a new fishables catalogue wholesale.
func (m *Manager) ReplaceFishables(fish []Fishable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fishables = fish
}

// Fishables returns the current fishables catalogue. The returned slice must
// not be mutated by the caller.
func (m *Manager) Fishables() []Fishable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fishables
}

// SetOfferIfAbsent caches the current offer for a shop if none is cached.
//
// Precondition: shop must be a valid protocol.Shop.
// Postcondition: Returns true and caches the offer when the shop had no
// cached offer; returns false and leaves the cache untouched otherwise.
func (m *Manager) SetOfferIfAbsent(shop protocol.Shop, offer string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.offers[shop]; ok {
		return false
	}
	m.offers[shop] = offer
	return true
}

// CurrentOffer returns the cached offer for a shop, if any.
func (m *Manager) CurrentOffer(shop protocol.Shop) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offer, ok := m.offers[shop]
	return offer, ok
}

// ClearOffer drops the cached offer for a shop. Called when the shop's offer
// cycle rolls over.
func (m *Manager) ClearOffer(shop protocol.Shop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offers, shop)
}

// AddRainTimestamp appends a rain window start to the rain log.
func (m *Manager) AddRainTimestamp(ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rainTimestamps = append(m.rainTimestamps, ts)
}

// AddStormTimestamp appends a storm window start to both the storm and rain
// logs. Storms always qualify as rain.
func (m *Manager) AddStormTimestamp(ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rainTimestamps = append(m.rainTimestamps, ts)
	m.stormTimestamps = append(m.stormTimestamps, ts)
}

// RainTimestamps returns a copy of the rain log in append order.
func (m *Manager) RainTimestamps() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, len(m.rainTimestamps))
	copy(out, m.rainTimestamps)
	return out
}

// StormTimestamps returns a copy of the storm log in append order.
func (m *Manager) StormTimestamps() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, len(m.stormTimestamps))
	copy(out, m.stormTimestamps)
	return out
}
