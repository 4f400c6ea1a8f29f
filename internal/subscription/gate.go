// Package subscription gates announcement submission on membership in
// the required channels.
package subscription

import (
	"context"
	"log"

	"github.com/mymmrac/telego"

	"heartua-bot/internal/database"
	"heartua-bot/pkg/telegoapi"
)

// Gate checks whether a user belongs to every required channel.
type Gate struct {
	bot      telegoapi.BotAPI
	channels database.ChannelRepository
}

func NewGate(bot telegoapi.BotAPI, channels database.ChannelRepository) *Gate {
	return &Gate{bot: bot, channels: channels}
}

// Check returns the channels the user is missing. An empty slice means
// the user passes the gate; with no required channels configured
// everyone passes. A failed membership lookup counts the channel as
// missing so the gate stays closed when the API is unreachable.
func (g *Gate) Check(ctx context.Context, userID int64) ([]database.RequiredChannel, error) {
	channels, err := g.channels.ListRequiredChannels(ctx)
	if err != nil {
		return nil, err
	}

	var missing []database.RequiredChannel
	for _, ch := range channels {
		member, err := g.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
			ChatID: telegoapi.ChatIDFromString(ch.ChannelID),
			UserID: userID,
		})
		if err != nil {
			log.Printf("[SubGate User:%d Channel:%s] Membership lookup failed, treating as not subscribed: %v", userID, ch.ChannelID, err)
			missing = append(missing, ch)
			continue
		}
		switch member.MemberStatus() {
		case telego.MemberStatusLeft, telego.MemberStatusBanned:
			missing = append(missing, ch)
		}
	}
	return missing, nil
}
