package publish

import (
	"unicode/utf16"

	"github.com/mymmrac/telego"

	"heartua-bot/internal/database"
)

// utf16Len returns the length of s in UTF-16 code units, which is the
// unit Telegram entity offsets are measured in.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// utf16Slice cuts [offset, offset+length) out of s in UTF-16 units.
func utf16Slice(s string, offset, length int) string {
	units := utf16.Encode([]rune(s))
	if offset < 0 || offset >= len(units) {
		return ""
	}
	end := offset + length
	if end > len(units) {
		end = len(units)
	}
	return string(utf16.Decode(units[offset:end]))
}

// ExtractSpans pulls the rich-text spans worth preserving out of an
// inbound message: premium emoji and hyperlinks. Other entity kinds are
// dropped.
func ExtractSpans(msg *telego.Message) []database.EntitySpan {
	text := msg.Text
	entities := msg.Entities
	if msg.Caption != "" {
		text = msg.Caption
		entities = msg.CaptionEntities
	}

	var spans []database.EntitySpan
	for _, e := range entities {
		switch e.Type {
		case telego.EntityTypeCustomEmoji:
			spans = append(spans, database.EntitySpan{
				Type:     telego.EntityTypeCustomEmoji,
				CustomID: e.CustomEmojiID,
				Offset:   e.Offset,
				Length:   e.Length,
			})
		case telego.EntityTypeTextLink:
			spans = append(spans, database.EntitySpan{
				Type:   telego.EntityTypeTextLink,
				URL:    e.URL,
				Offset: e.Offset,
				Length: e.Length,
			})
		case telego.EntityTypeURL:
			spans = append(spans, database.EntitySpan{
				Type:   telego.EntityTypeURL,
				URL:    utf16Slice(text, e.Offset, e.Length),
				Offset: e.Offset,
				Length: e.Length,
			})
		}
	}
	return spans
}

// spansToEntities converts stored spans back into Telegram entities,
// shifting offsets by the UTF-16 length of the caption prefix the
// announcement text is published behind.
func spansToEntities(spans []database.EntitySpan, shift int) []telego.MessageEntity {
	if len(spans) == 0 {
		return nil
	}
	entities := make([]telego.MessageEntity, 0, len(spans))
	for _, s := range spans {
		e := telego.MessageEntity{
			Type:   s.Type,
			Offset: s.Offset + shift,
			Length: s.Length,
		}
		switch s.Type {
		case telego.EntityTypeCustomEmoji:
			e.CustomEmojiID = s.CustomID
		case telego.EntityTypeTextLink:
			e.URL = s.URL
		}
		entities = append(entities, e)
	}
	return entities
}
