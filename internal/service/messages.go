package service

import (
	"fmt"
	"time"
)

func sessionStartedMessage(counterpartName, handle string, duration time.Duration, expiresAt time.Time) string {
	return fmt.Sprintf(
		"🎉 It's a match with %s!\n\n💬 Your %ds timed chat has started.\nChat with: %s\n\n⏰ Session expires at %s UTC.",
		counterpartName, int(duration/time.Second), handle, expiresAt.UTC().Format("15:04:05"),
	)
}

func passNeededMessage(counterpartName string) string {
	return fmt.Sprintf(
		"🎉 It's a match with %s!\n\nTo start a timed chat, one of you needs a Daily Pass.",
		counterpartName,
	)
}

const sessionExpiredMessage = "⏰ Your timed chat session has expired.\n\nBuy another Daily Pass to chat more!"

func passGrantedMessage(duration, validity time.Duration) string {
	return fmt.Sprintf(
		"✅ Payment received!\n\n🎟️ You have a Daily Pass. It funds one %d-second timed chat and is valid for %d hours.\n\nOpen a waiting match to start chatting.",
		int(duration/time.Second), int(validity/time.Hour),
	)
}

const emailVerifiedMessage = "✅ Email verified successfully!\n\nYou now have a verified badge on your profile!"

const adminPassMessage = "🎁 An admin granted you a free Daily Pass!"
