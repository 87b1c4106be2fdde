package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// FCMPusher sends pushes through Firebase Cloud Messaging.
type FCMPusher struct {
	Client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{Client: client}
}

func (p *FCMPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := p.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
