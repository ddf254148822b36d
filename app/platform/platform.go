// Package platform describes the chat platform as seen by the quote and
// scoreboard modules. Concrete clients live outside this repository; they
// either publish events onto the bus or answer requests through the NATS
// adapter in this package.
package platform

import "context"

// Message is a chat message as delivered by the platform.
type Message struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	GuildID     string `json:"guild_id"`
	AuthorID    string `json:"author_id"`
	AuthorIsBot bool   `json:"author_is_bot"`
	Content     string `json:"content"`
}

// Channel identifies a text channel inside a guild.
type Channel struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id"`
}

// Directory searches the members of one guild.
type Directory interface {
	// SearchByName returns the ids of every member whose name matches query.
	SearchByName(ctx context.Context, query string) ([]string, error)
}

// DirectoryProvider hands out the member directory of a guild.
type DirectoryProvider interface {
	Directory(guildID string) Directory
}

// History reads past messages of a channel.
type History interface {
	// Messages returns every message of the channel, newest first.
	Messages(ctx context.Context, channel Channel) ([]Message, error)

	// Message fetches a single message. It returns nil when the message no
	// longer exists.
	Message(ctx context.Context, channel Channel, messageID string) (*Message, error)
}
