package discord

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/internal/ai"
	"github.com/keshon/mahiro/internal/config"
	"github.com/keshon/mahiro/internal/core"
	"github.com/keshon/mahiro/internal/media"
	"github.com/keshon/mahiro/internal/mind"
	"github.com/keshon/mahiro/pkg/jobmgr"
)

// messageLimit is Discord's per-message character cap.
const messageLimit = 2000

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	engine   *mind.Engine
	provider ai.Provider
	registry *core.Registry
	images   *media.Images
	jobs     *jobmgr.Manager
	log      zerolog.Logger
}

func New(cfg *config.Config, engine *mind.Engine, provider ai.Provider, registry *core.Registry, images *media.Images, log zerolog.Logger) *Bot {
	l := log.With().Str("component", "discord").Logger()
	return &Bot{
		cfg:      cfg,
		engine:   engine,
		provider: provider,
		registry: registry,
		images:   images,
		jobs:     jobmgr.NewManager(func(msg string) { l.Debug().Str("job", msg).Msg("job status") }),
		log:      l,
	}
}

// Run connects and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.run(ctx, b.cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m)
	})

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	if err := b.startJobs(ctx); err != nil {
		return err
	}
	defer func() {
		b.jobs.StopAll()
		b.jobs.Wait()
	}()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	return nil
}

// startJobs launches the background maintenance loops.
func (b *Bot) startJobs(ctx context.Context) error {
	return b.jobs.StartAsync(ctx, "limiter-sweeper", func(ctx context.Context) error {
		mind.RunLimiterSweeper(ctx, b.engine.Limiter(), b.engine.Clock(), 10*time.Minute)
		return nil
	})
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

// onMessageCreate answers DMs and messages that mention the bot.
func (b *Bot) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	botID := s.State.User.ID
	if !addressed(m.GuildID, m.Mentions, botID) {
		return
	}
	userID := m.Author.ID
	if !b.cfg.Access(userID) {
		b.log.Debug().Str("user", userID).Msg("access denied")
		return
	}
	text := stripMention(m.Content, botID)
	if text == "" {
		return
	}

	cctx := &core.Context{
		Context:  ctx,
		Engine:   b.engine,
		Images:   b.images,
		Registry: b.registry,
		UserID:   userID,
		Admin:    b.cfg.IsAdmin(userID),
	}
	if reply, handled, err := b.registry.Dispatch(cctx, text); handled {
		if err != nil {
			reply = commandError(err)
		}
		b.send(s, m.ChannelID, reply)
		return
	}

	b.converse(ctx, s, m.ChannelID, userID, text)
}

func (b *Bot) converse(ctx context.Context, s *discordgo.Session, channelID, userID, text string) {
	if err := s.ChannelTyping(channelID); err != nil {
		b.log.Debug().Err(err).Msg("typing indicator failed")
	}

	reply, err := b.engine.Converse(ctx, b.provider, userID, text)
	switch {
	case err != nil:
		b.log.Error().Err(err).Str("user", userID).Msg("reply failed")
		b.send(s, channelID, "Sorry, I can't answer right now. Try again a bit later.")
		return
	case !reply.Event.Admitted:
		b.send(s, channelID, rejectionText(reply.Event))
		return
	}

	b.send(s, channelID, reply.Text)

	if b.images != nil && b.images.ShouldSend() {
		if path, ok := b.images.Pick(reply.Event.Mood); ok {
			b.sendImage(s, channelID, path)
		}
	}
}

func (b *Bot) send(s *discordgo.Session, channelID, text string) {
	for i, chunk := range splitMessage(text, messageLimit) {
		if i > 0 {
			time.Sleep(200 * time.Millisecond)
		}
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			b.log.Error().Err(err).Str("channel", channelID).Msg("send failed")
			return
		}
	}
}

func (b *Bot) sendImage(s *discordgo.Session, channelID, path string) {
	f, err := os.Open(path)
	if err != nil {
		b.log.Warn().Err(err).Str("path", path).Msg("image open failed")
		return
	}
	defer f.Close()
	if _, err := s.ChannelFileSend(channelID, filepath.Base(path), f); err != nil {
		b.log.Warn().Err(err).Str("path", path).Msg("image send failed")
	}
}

// addressed is true for DMs and for guild messages mentioning botID.
func addressed(guildID string, mentions []*discordgo.User, botID string) bool {
	if guildID == "" {
		return true
	}
	for _, u := range mentions {
		if u != nil && u.ID == botID {
			return true
		}
	}
	return false
}

func stripMention(content, botID string) string {
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	return strings.TrimSpace(content)
}

func rejectionText(ev *mind.EventResult) string {
	switch ev.Rule {
	case mind.RuleCooldown:
		return "Not so fast! " + ev.Reason + "."
	case mind.RulePerMinute:
		return "You write too often, " + ev.Reason + ". Let me catch my breath."
	case mind.RulePerDay:
		return "That's enough for today, " + ev.Reason + ". See you tomorrow."
	default:
		return ev.Reason
	}
}

func commandError(err error) string {
	switch {
	case errors.Is(err, core.ErrAdminOnly):
		return "This command is for admins only."
	case errors.Is(err, core.ErrUnknownCommand):
		return "I don't know that command. Try /help."
	case errors.Is(err, mind.ErrUnknownMood):
		return err.Error()
	default:
		return "Something went wrong."
	}
}

// splitMessage cuts msg into chunks of at most limit bytes, preferring line breaks.
func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut <= 0 {
			cut = limit
			// never split a UTF-8 sequence
			for cut > 0 && !utf8RuneStart(msg[cut]) {
				cut--
			}
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
