package fcm

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/angelmondragon/tienda-backend/pkg/gcp"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	fcmapi "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

type sender interface {
	send(ctx context.Context, parent string, req *fcmapi.SendMessageRequest) (string, error)
}

// Message is a device-targeted notification.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Client delivers push notifications through Firebase Cloud Messaging HTTP v1.
type Client struct {
	sender    sender
	projectID string
}

func NewClient(ctx context.Context, gcpCfg config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if gcpCfg.ProjectID == "" {
		return nil, errors.New("gcp project id is required for push notifications")
	}
	svc, err := fcmapi.NewService(ctx, gcp.ClientOptions(gcpCfg, option.WithScopes(messagingScope))...)
	if err != nil {
		return nil, fmt.Errorf("creating fcm service: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "fcm client initialized")
	}
	return &Client{sender: &serviceSender{svc: svc}, projectID: gcpCfg.ProjectID}, nil
}

// Send delivers msg and returns the provider message name (the delivery receipt).
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c == nil || c.sender == nil {
		return "", errors.New("fcm client not initialized")
	}
	if msg.Token == "" {
		return "", errors.New("device token is required")
	}
	req := &fcmapi.SendMessageRequest{
		Message: &fcmapi.Message{
			Token: msg.Token,
			Notification: &fcmapi.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		},
	}
	name, err := c.sender.send(ctx, "projects/"+c.projectID, req)
	if err != nil {
		return "", fmt.Errorf("fcm send: %w", err)
	}
	return name, nil
}

type serviceSender struct {
	svc *fcmapi.Service
}

func (s *serviceSender) send(ctx context.Context, parent string, req *fcmapi.SendMessageRequest) (string, error) {
	resp, err := s.svc.Projects.Messages.Send(parent, req).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return resp.Name, nil
}
