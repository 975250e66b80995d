// Package bot is the conversational front end: a Discord bot bound to a
// single owner, feeding natural-language messages through the interpreter
// and implementing the yes/no confirmation workflow.
package bot

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/confirm"
	"github.com/halcyon-labs/home-agent/src/core"
	"github.com/halcyon-labs/home-agent/src/interpreter"
)

type Config struct {
	Token string
	// OwnerID is the Discord user allowed to drive the agent. When empty,
	// the first user to send !start becomes the owner.
	OwnerID string

	Registry      *core.Registry
	Dispatcher    *core.Dispatcher
	Interpreter   *interpreter.Interpreter
	Confirmations confirm.Store
	AuditLog      *audit.Store
}

type Bot struct {
	session *discordgo.Session
	config  Config

	mu      sync.Mutex
	ownerID string

	ctx    context.Context
	cancel context.CancelFunc
}

func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		session: dg,
		config:  config,
		ownerID: config.OwnerID,
		ctx:     ctx,
		cancel:  cancel,
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleMessage)
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return b, nil
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.session.Close()
}

// owner returns the bound owner ID, empty until bootstrap.
func (b *Bot) owner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ownerID
}

// bindOwner sets the owner if unset and reports whether binding happened.
func (b *Bot) bindOwner(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ownerID != "" {
		return false
	}
	b.ownerID = id
	return true
}
