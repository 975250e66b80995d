package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/confirm"
	"github.com/halcyon-labs/home-agent/src/core"
)

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	text := strings.TrimSpace(m.Content)
	if strings.HasPrefix(text, "!") {
		b.handleCommand(s, m, text)
		return
	}

	owner := b.owner()
	if owner == "" {
		b.reply(s, m, "Send !start first to initialize the agent.")
		return
	}
	if m.Author.ID != owner {
		if _, err := b.config.AuditLog.Log("bot", "access_denied", string(core.StatusError), audit.Entry{RequesterID: m.Author.ID}); err != nil {
			log.Printf("bot: audit write failed: %v", err)
		}
		return
	}

	// A parked confirmation eats the next yes/no reply.
	if b.handleConfirmationReply(s, m, text) {
		return
	}

	b.handleNaturalLanguage(s, m, text)
}

func (b *Bot) handleCommand(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	cmd := strings.Fields(text)[0]

	if cmd == "!start" {
		b.handleStart(s, m)
		return
	}

	owner := b.owner()
	if owner == "" || m.Author.ID != owner {
		return
	}

	switch cmd {
	case "!help":
		b.reply(s, m, b.helpText())
	case "!status":
		result := b.config.Dispatcher.Dispatch(b.ctx, "system.status", nil)
		b.sendResult(s, m, result, "")
	case "!modules":
		b.reply(s, m, b.modulesText())
	default:
		b.reply(s, m, "Unknown command. Try !help, !status or !modules, or just tell me what to do.")
	}
}

func (b *Bot) handleStart(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.bindOwner(m.Author.ID) {
		if _, err := b.config.AuditLog.Log("bot", "authorize", string(core.StatusSuccess), audit.Entry{
			RequesterID: m.Author.ID,
			Result:      fmt.Sprintf("user %s authorized as owner", m.Author.Username),
		}); err != nil {
			log.Printf("bot: audit write failed: %v", err)
		}
		b.reply(s, m, fmt.Sprintf(
			"Agent online, %s. You are now the authorized owner.\n\n"+
				"Just tell me what you want in natural language:\n"+
				"- 'Take a screenshot'\n- 'Open chrome'\n- 'What's the system status?'\n- 'Save a note: call the dentist'",
			m.Author.Username))
		return
	}

	if m.Author.ID == b.owner() {
		b.reply(s, m, fmt.Sprintf("Agent ready, %s. What can I do for you?", m.Author.Username))
		return
	}

	b.reply(s, m, "Access denied.")
	if _, err := b.config.AuditLog.Log("bot", "access_denied", string(core.StatusError), audit.Entry{RequesterID: m.Author.ID}); err != nil {
		log.Printf("bot: audit write failed: %v", err)
	}
}

// handleConfirmationReply resolves a pending confirmation with the owner's
// yes/no answer. Returns true when the message was consumed by the workflow.
func (b *Bot) handleConfirmationReply(s *discordgo.Session, m *discordgo.MessageCreate, text string) bool {
	pending, err := b.config.Confirmations.Get(b.ctx, m.Author.ID)
	if errors.Is(err, confirm.ErrNoPending) {
		return false
	}
	if err != nil {
		log.Printf("bot: confirmation store: %v", err)
		return false
	}

	switch confirm.ParseReply(text) {
	case confirm.ReplyAffirmative:
		if err := b.config.Confirmations.Clear(b.ctx, m.Author.ID); err != nil {
			log.Printf("bot: clear confirmation: %v", err)
		}
		result := b.config.Dispatcher.DispatchConfirmed(b.ctx, pending.Capability, pending.Params)
		b.auditDispatch(m.Author.ID, pending.Capability, pending.Params, result)
		b.sendResult(s, m, result, "")
		return true

	case confirm.ReplyNegative:
		if err := b.config.Confirmations.Clear(b.ctx, m.Author.ID); err != nil {
			log.Printf("bot: clear confirmation: %v", err)
		}
		b.reply(s, m, "Action cancelled.")
		return true

	default:
		b.reply(s, m, fmt.Sprintf(
			"You still have a pending action: %s. Reply 'yes' to proceed or 'no' to cancel.",
			pending.Capability))
		return true
	}
}

func (b *Bot) handleNaturalLanguage(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	in, err := b.config.Interpreter.Interpret(b.ctx, text, m.Author.ID)
	if err != nil {
		// Audit write failures are a correctness problem; surface them.
		b.reply(s, m, fmt.Sprintf("Audit log write failed, refusing to continue: %v", err))
		return
	}

	if in.Action == nil {
		b.reply(s, m, in.Response)
		return
	}

	result := b.config.Dispatcher.Dispatch(b.ctx, in.Action.Capability, in.Action.Params)

	if result.Status == core.StatusRequiresConfirmation {
		dangerous, _ := result.Data["dangerous"].(bool)
		err := b.config.Confirmations.Put(b.ctx, m.Author.ID, confirm.Pending{
			Capability: in.Action.Capability,
			Params:     in.Action.Params,
			Dangerous:  dangerous,
		})
		if errors.Is(err, confirm.ErrAlreadyPending) {
			b.reply(s, m, "Another action is already waiting for confirmation. Reply 'yes' or 'no' to that one first.")
			return
		}
		if err != nil {
			b.reply(s, m, fmt.Sprintf("Could not park the action for confirmation: %v", err))
			return
		}

		warning := ""
		if dangerous {
			warning = " (DANGEROUS)"
		}
		b.reply(s, m, fmt.Sprintf(
			"%s\n\nThis action requires confirmation%s.\nReply 'yes' to proceed or 'no' to cancel.",
			in.Response, warning))
		return
	}

	if result.Status == core.StatusSuccess && in.Response != "" {
		result.Message = in.Response
	}
	b.auditDispatch(m.Author.ID, in.Action.Capability, in.Action.Params, result)
	b.sendResult(s, m, result, in.Response)
}

func (b *Bot) auditDispatch(requesterID, capability string, params map[string]any, result core.Result) {
	module := capability
	action := capability
	if mod, act, ok := strings.Cut(capability, "."); ok {
		module, action = mod, act
	}
	if _, err := b.config.AuditLog.Log(module, action, string(result.Status), audit.Entry{
		RequesterID: requesterID,
		Params:      params,
		Result:      result.Message,
	}); err != nil {
		log.Printf("bot: audit write failed: %v", err)
	}
}

func (b *Bot) helpText() string {
	var sb strings.Builder
	sb.WriteString("Personal automation agent. Tell me what you want in natural language.\n\nAvailable modules:")
	for _, mod := range b.config.Registry.Enabled() {
		fmt.Fprintf(&sb, "\n\n%s: %s", mod.Name(), mod.Description())
		caps := mod.Capabilities()
		for i, cap := range caps {
			if i == 3 {
				fmt.Fprintf(&sb, "\n  - ... and %d more", len(caps)-3)
				break
			}
			fmt.Fprintf(&sb, "\n  - %s: %s", cap.Name, cap.Description)
		}
	}
	return sb.String()
}

func (b *Bot) modulesText() string {
	var lines []string
	for _, mod := range b.config.Registry.All() {
		status := "enabled"
		if !b.config.Registry.IsEnabled(mod.Name()) {
			status = "disabled"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %d capabilities", mod.Name(), status, len(mod.Capabilities())))
	}
	return "Loaded modules:\n" + strings.Join(lines, "\n")
}
