package bot

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"

	"github.com/halcyon-labs/home-agent/src/core"
)

const discordMessageLimit = 2000

func (b *Bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	for _, chunk := range splitMessage(text, discordMessageLimit) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			log.Printf("bot: send message: %v", err)
			return
		}
	}
}

// sendResult renders an action result to the channel. Artifacts (screenshots)
// are uploaded as attachments and removed from disk afterwards.
func (b *Bot) sendResult(s *discordgo.Session, m *discordgo.MessageCreate, result core.Result, aiResponse string) {
	message := result.Message
	if aiResponse != "" && result.Status == core.StatusSuccess {
		message = aiResponse
	}
	if result.Status == core.StatusError {
		message = "Error: " + result.Message
	}

	if result.ArtifactPath != "" {
		if f, err := os.Open(result.ArtifactPath); err == nil {
			defer f.Close()
			_, sendErr := s.ChannelFileSendWithMessage(m.ChannelID, truncate(message, 1024), filepath.Base(result.ArtifactPath), f)
			if sendErr == nil {
				if err := os.Remove(result.ArtifactPath); err != nil {
					log.Printf("bot: remove artifact: %v", err)
				}
				return
			}
			log.Printf("bot: send artifact: %v", sendErr)
		}
	}

	if len(result.Data) > 0 {
		if preview := dataPreview(result.Data); preview != "" {
			message += "\n\nDetails: " + preview
		}
	}
	b.reply(s, m, message)
}

func dataPreview(data map[string]any) string {
	return truncate(fmt.Sprintf("%v", data), 500)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func splitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	var out []string
	for len(text) > limit {
		out = append(out, text[:limit])
		text = text[limit:]
	}
	return append(out, text)
}
