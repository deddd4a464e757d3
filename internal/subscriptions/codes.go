package subscriptions

import "github.com/angelmondragon/streamflix-backend/pkg/security"

const (
	invitationCodeLength = 10
	maxCodeAttempts      = 5
)

func generateInvitationCode() (string, error) {
	return security.GenerateShareCode(invitationCodeLength)
}
