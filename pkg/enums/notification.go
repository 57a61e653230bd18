package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
	NotificationTypeOrderAlert         NotificationType = "order_alert"
	NotificationTypeWalletAlert        NotificationType = "wallet_alert"
	NotificationTypePayoutAlert        NotificationType = "payout_alert"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationTypeSystemAnnouncement: {},
	NotificationTypeOrderAlert:         {},
	NotificationTypeWalletAlert:        {},
	NotificationTypePayoutAlert:        {},
}

func (n NotificationType) IsValid() bool {
	_, ok := notificationTypes[n]
	return ok
}

func ParseNotificationType(value string) (NotificationType, error) {
	parsed := NotificationType(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid notification type %q", value)
	}
	return parsed, nil
}
