// Package client wires the companion-server event stream to the session
// state and the voice pipeline: the protocol-version gate, the event router
// with its per-event handlers, and the narrow interfaces of the external
// collaborators (notifications, chat display, sounds, textures, strings).
package client

import "github.com/google/uuid"

// Notifier displays toast-style notifications. Calls are fire-and-forget.
type Notifier interface {
	Notify(title, body string)
}

// ChatDisplay prints chat-style lines to the player.
type ChatDisplay interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
	// Message prints a relayed chat line with its resolved language flag.
	Message(flag, player, content string)
}

// SoundPlayer plays a named UI sound. Calls are fire-and-forget.
type SoundPlayer interface {
	Play(sound string)
}

// TextureStore materializes transmitted base64 image blobs into usable
// texture resources.
type TextureStore interface {
	// Materialize decodes the blob and registers it under name, returning
	// the handle of the created resource.
	Materialize(name, base64Data string) (uuid.UUID, error)
}

// Localizer resolves display strings by key. Unknown keys resolve to the
// key itself so missing translations stay visible instead of failing.
type Localizer interface {
	Resolve(key string, args ...any) string
}
