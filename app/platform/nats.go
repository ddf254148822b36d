package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"
)

// Request subjects answered by the chat platform client.
const (
	DirectorySearchSubjectV1 = "quotes.directory.search.v1"
	HistoryFetchSubjectV1    = "quotes.history.fetch.v1"
	HistoryMessageSubjectV1  = "quotes.history.message.v1"
)

// HistoryPageSize is the number of messages asked for per history request.
const HistoryPageSize = 100

// DirectorySearchRequest asks for members of a guild matching Query.
type DirectorySearchRequest struct {
	GuildID string `json:"guild_id"`
	Query   string `json:"query"`
}

// DirectorySearchReply lists the matching member ids.
type DirectorySearchReply struct {
	MemberIDs []string `json:"member_ids"`
	Error     string   `json:"error,omitempty"`
}

// HistoryFetchRequest asks for up to Limit messages older than Before,
// newest first. An empty Before starts at the newest message.
type HistoryFetchRequest struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Before    string `json:"before,omitempty"`
	Limit     int    `json:"limit"`
}

// HistoryFetchReply carries one page of history.
type HistoryFetchReply struct {
	Messages []Message `json:"messages"`
	Error    string    `json:"error,omitempty"`
}

// HistoryMessageRequest asks for one message.
type HistoryMessageRequest struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	MessageID string `json:"message_id"`
}

// HistoryMessageReply carries the message, or nil if it no longer exists.
type HistoryMessageReply struct {
	Message *Message `json:"message"`
	Error   string   `json:"error,omitempty"`
}

// Requester sends a request and waits for the reply. *nats.Conn satisfies it.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NATSClient implements DirectoryProvider and History through request-reply
// against the chat platform client.
type NATSClient struct {
	conn    Requester
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewNATSClient creates a NATSClient. timeout bounds every single request
// and requestsPerSecond throttles them; zero or less means unlimited.
func NewNATSClient(conn Requester, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *NATSClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(1, int(requestsPerSecond)))
	}
	return &NATSClient{conn: conn, timeout: timeout, limiter: limiter, logger: logger}
}

var (
	_ DirectoryProvider = (*NATSClient)(nil)
	_ History           = (*NATSClient)(nil)
)

// ErrRemote is wrapped around errors reported by the platform client.
var ErrRemote = errors.New("platform error")

func (c *NATSClient) request(ctx context.Context, subject string, req, reply any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("platform: marshal %s request: %w", subject, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("platform: %s: %w", subject, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.conn.RequestWithContext(ctx, subject, body)
	if err != nil {
		return fmt.Errorf("platform: %s: %w", subject, err)
	}
	if err := json.Unmarshal(msg.Data, reply); err != nil {
		return fmt.Errorf("platform: decode %s reply: %w", subject, err)
	}
	return nil
}

// Directory implements DirectoryProvider.
func (c *NATSClient) Directory(guildID string) Directory {
	return &natsDirectory{client: c, guildID: guildID}
}

type natsDirectory struct {
	client  *NATSClient
	guildID string
}

func (d *natsDirectory) SearchByName(ctx context.Context, query string) ([]string, error) {
	var reply DirectorySearchReply
	if err := d.client.request(ctx, DirectorySearchSubjectV1, DirectorySearchRequest{GuildID: d.guildID, Query: query}, &reply); err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}
	return reply.MemberIDs, nil
}

// Messages implements History. It pages backwards until the platform
// returns a short page.
func (c *NATSClient) Messages(ctx context.Context, channel Channel) ([]Message, error) {
	var (
		all    []Message
		before string
	)
	for {
		var reply HistoryFetchReply
		req := HistoryFetchRequest{
			ChannelID: channel.ID,
			GuildID:   channel.GuildID,
			Before:    before,
			Limit:     HistoryPageSize,
		}
		if err := c.request(ctx, HistoryFetchSubjectV1, req, &reply); err != nil {
			return nil, err
		}
		if reply.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
		}

		all = append(all, reply.Messages...)
		if len(reply.Messages) < HistoryPageSize {
			break
		}
		before = reply.Messages[len(reply.Messages)-1].ID
	}

	c.logger.DebugContext(ctx, "Channel history fetched",
		slog.String("channel_id", channel.ID),
		slog.Int("messages", len(all)),
	)
	return all, nil
}

// Message implements History.
func (c *NATSClient) Message(ctx context.Context, channel Channel, messageID string) (*Message, error) {
	var reply HistoryMessageReply
	req := HistoryMessageRequest{ChannelID: channel.ID, GuildID: channel.GuildID, MessageID: messageID}
	if err := c.request(ctx, HistoryMessageSubjectV1, req, &reply); err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}
	return reply.Message, nil
}
