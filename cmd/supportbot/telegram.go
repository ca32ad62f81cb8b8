package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/quailyquaily/supportbot/abuseguard"
	"github.com/quailyquaily/supportbot/assets"
	"github.com/quailyquaily/supportbot/conversation"
	"github.com/quailyquaily/supportbot/db"
	"github.com/quailyquaily/supportbot/db/sqlitestore"
	"github.com/quailyquaily/supportbot/internal/configutil"
	"github.com/quailyquaily/supportbot/internal/logutil"
	"github.com/quailyquaily/supportbot/internal/statepaths"
	"github.com/quailyquaily/supportbot/records"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTelegramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the support bot against the Telegram Bot API (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "telegram-bot-token", "telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram bot token (--telegram-bot-token or %s_TELEGRAM_BOT_TOKEN)", envPrefix)
			}
			baseURL := strings.TrimSpace(configutil.FlagOrViperString(cmd, "telegram-base-url", "telegram.base_url"))
			if baseURL == "" {
				baseURL = "https://api.telegram.org"
			}
			pollTimeout := configutil.FlagOrViperDuration(cmd, "telegram-poll-timeout", "telegram.poll_timeout")
			if pollTimeout <= 0 {
				pollTimeout = 30 * time.Second
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			abuseStore, convStore, recStore, err := buildStores(cmd)
			if err != nil {
				return err
			}

			var sink abuseguard.AuditSink
			if viper.GetBool("audit.enabled") {
				jsonlSink, err := abuseguard.NewJSONLAuditSink(
					statepaths.AuditLogPath(),
					viper.GetInt64("audit.rotate_max_bytes"),
					statepaths.LocksDir(),
				)
				if err != nil {
					return fmt.Errorf("open audit log: %w", err)
				}
				defer func() { _ = jsonlSink.Close() }()
				sink = jsonlSink
			}

			guard := abuseguard.New(abuseguard.Config{
				MaxCommands:   viper.GetInt("ratelimit.max_commands"),
				BlockDuration: viper.GetDuration("ratelimit.block_duration"),
				NotifyWindow:  viper.GetDuration("ratelimit.notify_window"),
			}, abuseStore, sink, logger)

			engine := conversation.NewEngine(convStore, recStore, logger)

			ingestor, err := buildIngestor(ctx, cmd)
			if err != nil {
				return err
			}

			api := newTelegramAPI(nil, baseURL, token)
			me, err := api.getMe(ctx)
			if err != nil {
				return err
			}

			b := &bot{
				api:           api,
				guard:         guard,
				engine:        engine,
				ingestor:      ingestor,
				logger:        logger,
				textCooldown:  viper.GetDuration("ratelimit.text_cooldown"),
				photoCooldown: viper.GetDuration("ratelimit.photo_cooldown"),
				maxFileBytes:  viper.GetInt64("telegram.max_file_bytes"),
			}

			logger.Info("telegram_start",
				"base_url", baseURL,
				"bot_username", me.Username,
				"bot_id", me.ID,
				"poll_timeout", pollTimeout.String(),
			)

			var (
				mu      sync.Mutex
				workers = make(map[int64]chan *telegramMessage)
				offset  int64
			)

			getOrStartWorkerLocked := func(chatID int64) chan *telegramMessage {
				if jobs, ok := workers[chatID]; ok && jobs != nil {
					return jobs
				}
				jobs := make(chan *telegramMessage, 16)
				workers[chatID] = jobs
				go func() {
					for msg := range jobs {
						b.handleMessage(ctx, msg)
					}
				}()
				return jobs
			}

			for {
				if ctx.Err() != nil {
					logger.Info("telegram_stop")
					return nil
				}
				updates, nextOffset, err := api.getUpdates(ctx, offset, pollTimeout)
				if err != nil {
					if ctx.Err() != nil {
						logger.Info("telegram_stop")
						return nil
					}
					logger.Warn("telegram_get_updates_error", "error", err.Error())
					time.Sleep(1 * time.Second)
					continue
				}
				offset = nextOffset

				for _, u := range updates {
					msg := u.Message
					if msg == nil || msg.Chat == nil || msg.From == nil || msg.From.IsBot {
						continue
					}
					mu.Lock()
					jobs := getOrStartWorkerLocked(msg.Chat.ID)
					mu.Unlock()
					select {
					case jobs <- msg:
					default:
						// Per-chat queue is full; drop rather than stall polling.
						logger.Warn("telegram_queue_full", "chat_id", msg.Chat.ID)
					}
				}
			}
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("telegram-base-url", "", "Telegram API base URL (defaults to https://api.telegram.org).")
	cmd.Flags().Duration("telegram-poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().String("store-driver", "", "Persistence driver: file|sqlite.")
	cmd.Flags().String("assets-backend", "", "Photo storage backend: file|s3.")

	return cmd
}

func buildStores(cmd *cobra.Command) (abuseguard.Store, conversation.Store, records.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(configutil.FlagOrViperString(cmd, "store-driver", "store.driver")))
	switch driver {
	case "", "file":
		return abuseguard.NewFileStore(statepaths.AbuseDir()),
			conversation.NewFileStore(statepaths.ConversationDir()),
			records.NewFileStore(statepaths.RecordsDir()),
			nil
	case "sqlite":
		dsn, err := db.ResolveSQLiteDSN(viper.GetString("db.dsn"), statepaths.FileStateDir())
		if err != nil {
			return nil, nil, nil, err
		}
		cfg := db.DefaultConfig()
		cfg.DSN = dsn
		cfg.AutoMigrate = viper.GetBool("db.auto_migrate")
		gdb, err := db.Open(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		st := sqlitestore.New(gdb)
		return st.AbuseStore(), st.ConversationStore(), st.RecordStore(), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q (want file or sqlite)", driver)
	}
}

func buildIngestor(ctx context.Context, cmd *cobra.Command) (assets.Ingestor, error) {
	backend := strings.ToLower(strings.TrimSpace(configutil.FlagOrViperString(cmd, "assets-backend", "assets.backend")))
	switch backend {
	case "", "file":
		return assets.NewFileIngestor(statepaths.AssetsDir()), nil
	case "s3":
		bucket := strings.TrimSpace(viper.GetString("assets.s3_bucket"))
		if bucket == "" {
			return nil, fmt.Errorf("assets backend s3 requires assets.s3_bucket")
		}
		return assets.NewS3Ingestor(ctx, bucket, viper.GetString("assets.s3_prefix"))
	default:
		return nil, fmt.Errorf("unknown assets backend %q (want file or s3)", backend)
	}
}

type bot struct {
	api           *telegramAPI
	guard         *abuseguard.Guard
	engine        *conversation.Engine
	ingestor      assets.Ingestor
	logger        *slog.Logger
	textCooldown  time.Duration
	photoCooldown time.Duration
	maxFileBytes  int64
}

type inboundKind int

const (
	inboundIgnore inboundKind = iota
	inboundStart
	inboundStatic
	inboundCommand
	inboundPhoto
	inboundText
)

type inbound struct {
	kind    inboundKind
	text    string
	fileID  string
	command conversation.Command
}

// classifyMessage maps a raw Telegram message onto the bot's small input
// vocabulary: /start, menu buttons, workflow commands, photos, free text.
func classifyMessage(msg *telegramMessage) inbound {
	if msg == nil || msg.Chat == nil || msg.From == nil || msg.From.IsBot {
		return inbound{kind: inboundIgnore}
	}

	if len(msg.Photo) > 0 {
		// Telegram lists photo sizes smallest first; take the largest.
		return inbound{kind: inboundPhoto, fileID: msg.Photo[len(msg.Photo)-1].FileID}
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}

	switch text {
	case "":
		return inbound{kind: inboundIgnore}
	case "/start":
		return inbound{kind: inboundStart}
	case "/cancel":
		return inbound{kind: inboundCommand, command: conversation.CommandCancel}
	case "/skip":
		return inbound{kind: inboundCommand, command: conversation.CommandSkip}
	case menuProfileVerification:
		return inbound{kind: inboundCommand, command: conversation.CommandStartProfileVerification}
	case menuRaiseTicket:
		return inbound{kind: inboundCommand, command: conversation.CommandStartTicket}
	case menuFeedback:
		return inbound{kind: inboundCommand, command: conversation.CommandStartFeedback}
	case menuIntroduction:
		return inbound{kind: inboundStatic, text: introductionText}
	case menuReferralLink:
		return inbound{kind: inboundStatic, text: referralLinkText}
	case menuUpdates:
		return inbound{kind: inboundStatic, text: updatesText}
	default:
		return inbound{kind: inboundText, text: text}
	}
}

func (b *bot) handleMessage(ctx context.Context, msg *telegramMessage) {
	in := classifyMessage(msg)
	if in.kind == inboundIgnore {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	cooldown := b.textCooldown
	if in.kind == inboundPhoto {
		cooldown = b.photoCooldown
	}

	dec, err := b.guard.Evaluate(ctx, userID, cooldown, time.Now())
	if err != nil {
		// Fail closed: a broken throttle store drops the event instead of
		// letting it through unchecked.
		b.logger.Error("throttle_evaluate_error", "user_id", userID, "error", err.Error())
		b.send(ctx, chatID, persistenceErrorText, nil)
		return
	}
	if dec.Unblocked {
		b.send(ctx, chatID, unblockedNoticeText, nil)
	}
	switch dec.State {
	case abuseguard.StateBlocked:
		if dec.Notify {
			b.send(ctx, chatID, blockedNoticeText(dec.SecondsRemaining), nil)
		}
		return
	case abuseguard.StateRateLimited:
		// Menu taps and commands get a brief nudge; photos and free text are
		// dropped silently.
		switch in.kind {
		case inboundStart, inboundStatic, inboundCommand:
			b.send(ctx, chatID, rateLimitedNoticeText, nil)
		}
		return
	}

	switch in.kind {
	case inboundStart:
		if err := b.engine.Reset(ctx, userID); err != nil {
			b.logger.Error("conversation_reset_error", "user_id", userID, "error", err.Error())
			b.send(ctx, chatID, persistenceErrorText, nil)
			return
		}
		b.send(ctx, chatID, welcomeText, mainMenuKeyboard())
	case inboundStatic:
		b.send(ctx, chatID, in.text, nil)
	case inboundPhoto:
		b.handlePhoto(ctx, userID, chatID, in.fileID)
	case inboundCommand:
		b.dispatch(ctx, userID, chatID, conversation.CommandEvent(in.command))
	case inboundText:
		b.dispatch(ctx, userID, chatID, conversation.TextEvent(in.text))
	}
}

func (b *bot) handlePhoto(ctx context.Context, userID, chatID int64, fileID string) {
	file, err := b.api.getFile(ctx, fileID)
	if err != nil {
		b.logger.Warn("telegram_get_file_error", "user_id", userID, "error", err.Error())
		b.send(ctx, chatID, persistenceErrorText, nil)
		return
	}
	data, err := b.api.downloadFile(ctx, file.FilePath, b.maxFileBytes)
	if err != nil {
		b.logger.Warn("telegram_download_error", "user_id", userID, "error", err.Error())
		b.send(ctx, chatID, persistenceErrorText, nil)
		return
	}
	ref, err := b.ingestor.Ingest(ctx, data, "image/jpeg")
	if err != nil {
		b.logger.Error("asset_ingest_error", "user_id", userID, "error", err.Error())
		b.send(ctx, chatID, persistenceErrorText, nil)
		return
	}
	b.dispatch(ctx, userID, chatID, conversation.PhotoEvent(ref))
}

func (b *bot) dispatch(ctx context.Context, userID, chatID int64, ev conversation.Event) {
	res, err := b.engine.Handle(ctx, userID, ev, time.Now())
	if err != nil {
		b.logger.Error("conversation_handle_error", "user_id", userID, "error", err.Error())
		b.send(ctx, chatID, persistenceErrorText, nil)
		return
	}
	text := replyText(res)
	if text == "" {
		return
	}
	var keyboard *telegramReplyKeyboard
	if res.Step == conversation.StepNone {
		// Back at the menu: re-show the keyboard.
		keyboard = mainMenuKeyboard()
	}
	b.send(ctx, chatID, text, keyboard)
}

func (b *bot) send(ctx context.Context, chatID int64, text string, keyboard *telegramReplyKeyboard) {
	if err := b.api.sendMessage(ctx, chatID, text, keyboard); err != nil {
		b.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}
