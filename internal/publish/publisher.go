// Package publish sends approved announcements into the announcements
// channel, targeting the category's forum topic.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/pkg/telegoapi"
)

// Publisher posts announcement content to the configured channel.
type Publisher struct {
	bot     telegoapi.BotAPI
	channel string
}

func NewPublisher(bot telegoapi.BotAPI, channel string) *Publisher {
	return &Publisher{bot: bot, channel: channel}
}

// Content is what gets posted: the announcement body plus its category.
type Content struct {
	Category string
	Text     string
	Photo    string
	Entities []database.EntitySpan
}

// ContentFromAnnouncement adapts a stored announcement for publishing.
func ContentFromAnnouncement(ann *database.Announcement) Content {
	content := Content{
		Category: ann.Category,
		Text:     ann.Text,
		Entities: ann.Entities,
	}
	if ann.Photo != nil {
		content.Photo = *ann.Photo
	}
	return content
}

// Publish posts the content with its category-name caption. A non-empty
// header goes in front of the category name (autopost reposts carry
// one). Stored rich-text spans are re-applied with offsets shifted past
// the caption prefix.
func (p *Publisher) Publish(ctx context.Context, content Content) error {
	return p.publish(ctx, content, "")
}

// PublishWithHeader is Publish with a header line in front of the
// category name.
func (p *Publisher) PublishWithHeader(ctx context.Context, content Content, header string) error {
	return p.publish(ctx, content, header)
}

func (p *Publisher) publish(ctx context.Context, content Content, header string) error {
	prefix := header + config.CategoryName(content.Category) + "\n\n"
	body := prefix + content.Text
	entities := spansToEntities(content.Entities, utf16Len(prefix))

	chatID := telegoapi.ChatIDFromString(p.channel)
	topicID := config.CategoryTopicID(content.Category)

	if content.Photo != "" {
		params := &telego.SendPhotoParams{
			ChatID:          chatID,
			Photo:           tu.FileFromID(content.Photo),
			Caption:         body,
			CaptionEntities: entities,
			MessageThreadID: topicID,
		}
		if _, err := p.bot.SendPhoto(ctx, params); err != nil {
			return fmt.Errorf("failed to publish photo post to %s: %w", p.channel, err)
		}
		return nil
	}

	params := &telego.SendMessageParams{
		ChatID:          chatID,
		Text:            body,
		Entities:        entities,
		MessageThreadID: topicID,
	}
	if _, err := p.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to publish text post to %s: %w", p.channel, err)
	}
	return nil
}

// ChannelLink renders a user-facing link to the announcements channel.
// Private (numeric) channels have no public link.
func (p *Publisher) ChannelLink() string {
	if strings.HasPrefix(p.channel, "@") {
		return "https://t.me/" + strings.TrimPrefix(p.channel, "@")
	}
	return ""
}
