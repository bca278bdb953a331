package services

import (
	"context"
	"log"

	"firebase.google.com/go/messaging"
)

// DeviceTokenStore looks up the push token registered for a user.
type DeviceTokenStore interface {
	GetDeviceToken(ctx context.Context, userID string) (string, error)
}

// NotificationService sends FCM pushes about lifecycle changes. Delivery is
// best-effort; failures are logged and never surfaced to the caller.
type NotificationService struct {
	Client   *messaging.Client
	Tokens   DeviceTokenStore
	ErrorLog *log.Logger
}

func (s *NotificationService) NotifyUser(ctx context.Context, userID, title, body string) {
	if s.Client == nil {
		return
	}
	token, err := s.Tokens.GetDeviceToken(ctx, userID)
	if err != nil || token == "" {
		return
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.Client.Send(ctx, message); err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("push to user %s failed: %v", userID, err)
	}
}
