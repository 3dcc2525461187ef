// Package ui provides in-process implementations of the client's external
// collaborators: log-backed notifications and chat display, an in-memory
// texture store, a table-driven localizer, and the offline world lookup
// used when no game client is attached.
package ui

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dampen59/minebox-companion/internal/audio"
)

// LogNotifier renders toast notifications as log lines.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs one notification.
func (n *LogNotifier) Notify(title, body string) {
	n.Logger.Info("notification",
		zap.String("title", title),
		zap.String("body", body),
	)
}

// LogChat renders chat-style lines as log lines.
type LogChat struct {
	Logger *zap.Logger
}

// Info prints an informational chat line.
func (c *LogChat) Info(msg string) { c.Logger.Info("chat", zap.String("msg", msg)) }

// Success prints a success chat line.
func (c *LogChat) Success(msg string) { c.Logger.Info("chat", zap.String("msg", msg)) }

// Error prints an error chat line.
func (c *LogChat) Error(msg string) { c.Logger.Warn("chat", zap.String("msg", msg)) }

// Message prints a relayed multi-channel chat line.
func (c *LogChat) Message(flag, player, content string) {
	c.Logger.Info("chat message",
		zap.String("flag", flag),
		zap.String("player", player),
		zap.String("content", content),
	)
}

// LogSound logs sound cues instead of playing them.
type LogSound struct {
	Logger *zap.Logger
}

// Play logs one sound cue.
func (s *LogSound) Play(sound string) {
	s.Logger.Debug("sound", zap.String("sound", sound))
}

// MemoryTextureStore materializes base64 texture blobs into process memory,
// keyed by an opaque handle. Safe for concurrent use.
type MemoryTextureStore struct {
	mu       sync.Mutex
	byHandle map[uuid.UUID][]byte
	byName   map[string]uuid.UUID
}

// NewMemoryTextureStore creates an empty store.
func NewMemoryTextureStore() *MemoryTextureStore {
	return &MemoryTextureStore{
		byHandle: make(map[uuid.UUID][]byte),
		byName:   make(map[string]uuid.UUID),
	}
}

// Materialize decodes the blob and registers it under name. Materializing
// the same name again replaces the previous resource under a new handle.
//
// Postcondition: Returns the handle of the stored resource, or an error for
// undecodable blobs.
func (s *MemoryTextureStore) Materialize(name, base64Data string) (uuid.UUID, error) {
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decoding texture %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byName[name]; ok {
		delete(s.byHandle, old)
	}
	handle := uuid.New()
	s.byHandle[handle] = data
	s.byName[name] = handle
	return handle, nil
}

// Get returns the stored bytes for a handle.
func (s *MemoryTextureStore) Get(handle uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.byHandle[handle]
	return data, ok
}

// Len returns the number of stored resources.
func (s *MemoryTextureStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byHandle)
}

// TableLocalizer resolves display strings from a static table. Templates
// use fmt verbs for their arguments. Unknown keys resolve to the key itself.
type TableLocalizer struct {
	table map[string]string
}

// NewTableLocalizer creates a localizer over the given table. A nil table
// falls back to the built-in English strings.
func NewTableLocalizer(table map[string]string) *TableLocalizer {
	if table == nil {
		table = englishStrings
	}
	return &TableLocalizer{table: table}
}

// Resolve returns the display string for key, formatted with args.
func (l *TableLocalizer) Resolve(key string, args ...any) string {
	tmpl, ok := l.table[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

var englishStrings = map[string]string{
	"update.title":   "Update available",
	"update.content": "Your companion client is out of date. Please update to keep receiving events.",

	"shop.mouse.offer.title":      "Mouse shop offer",
	"shop.mouse.offer.content":    "The Mouse is currently selling: %s",
	"shop.bakery.offer.title":     "Bakery offer",
	"shop.bakery.offer.content":   "The Bakery is currently selling: %s",
	"shop.buckstar.offer.title":   "Buckstar offer",
	"shop.buckstar.offer.content": "Buckstar is currently selling: %s",
	"shop.cocktail.offer.title":   "Cocktail bar offer",
	"shop.cocktail.offer.content": "The Cocktail bar is currently selling: %s",

	"shiny.title":   "Shiny spotted!",
	"shiny.content": "%s spotted a shiny %s",

	"audio.create.success":       "Voice room %s created",
	"audio.create.failed":        "Could not create the voice room",
	"audio.join.success":         "Joined voice room %s",
	"audio.join.failed":          "Could not join voice room %s",
	"audio.leave.success":        "Left voice room %s",
	"audio.leave.failed":         "Could not leave the voice room",
	"audio.proximity.enabled":    "Proximity voice enabled",
	"audio.proximity.disabled":   "Proximity voice disabled",
	"audio.proximity.leavefirst": "Leave your voice room before enabling proximity voice",
	"audio.join.proximityfirst":  "Disable proximity voice before creating or joining a room",
	"audio.user.connected":       "%s joined the voice room",
	"audio.user.disconnected":    "%s left the voice room",
	"audio.devices.failed":       "You left the voice room because your speakers and/or microphone could not be set up. Check the client logs.",
}

// OfflineWorld is the world lookup used when no game client is attached:
// every speaker resolves as not present, so proximity frames are dropped.
type OfflineWorld struct{}

// NearbyPlayer always reports the speaker as absent.
func (OfflineWorld) NearbyPlayer(string) (audio.Entity, bool) {
	return audio.Entity{}, false
}

// ListenerPosition returns the origin.
func (OfflineWorld) ListenerPosition() audio.Vec3 {
	return audio.Vec3{}
}
