package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// sender is the subset of the Gmail API used to deliver a raw message
type sender interface {
	Send(ctx context.Context, msg *gmail.Message) error
}

type apiSender struct {
	service *gmail.Service
}

func (s apiSender) Send(ctx context.Context, msg *gmail.Message) error {
	_, err := s.service.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}

// Client sends announcement emails through the Gmail API, at most one per interval
type Client struct {
	sender   sender
	ctx      context.Context
	from     string
	interval time.Duration

	sendMutex    sync.Mutex
	lastSendTime time.Time
	sleep        func(time.Duration)
}

// NewClient creates a Gmail client authorised by tokens.
// from sets the From header; empty means the authorised account's address.
func NewClient(ctx context.Context, tokens oauth2.TokenSource, from string, interval time.Duration) (*Client, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokens))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return newClient(ctx, apiSender{service: service}, from, interval), nil
}

func newClient(ctx context.Context, s sender, from string, interval time.Duration) *Client {
	return &Client{
		sender:   s,
		ctx:      ctx,
		from:     from,
		interval: interval,
		sleep:    time.Sleep,
	}
}
