package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "facegate/internal/application"
	"facegate/internal/domain/entity"
)

const (
	msgStart = `👋 Hi! I check that a live selfie matches the face on an ID photo.

📋 Commands:
/verify — start a verification
/help — how it works
/cancel — cancel the current verification`

	msgHelp = `ℹ️ How it works:

1️⃣ Send /verify
2️⃣ Send the reference photo (ID or passport page)
3️⃣ Take a live selfie with the camera and send it
4️⃣ You get the verdict

💡 Tips:
• Only one face per photo
• Good, even lighting
• Look straight into the camera`

	msgAwaitingReference = "🪪 Send the reference photo with your face (ID or passport)."
	msgAwaitingProbe     = "🤳 Got it. Now take a live selfie and send it."
	msgCancelled         = "❌ Verification cancelled. Send /verify to start again."
	msgSendVerify        = "📋 Send /verify to start a verification."
	msgUnknownCommand    = "❓ Unknown command. Use /help."
	msgProcessing        = "⏳ Comparing faces..."
	msgStillProcessing   = "⏳ Still working on the previous photo, please wait."
	msgNotImage          = "📎 Please send a photo."
	msgProcessingError   = "⚠️ Could not process the photo. Please try again with another one."
	msgUnavailable       = "🛠 The verification service is temporarily unavailable. Please try again later."
)

// verifyTimeout bounds one pipeline run.
const verifyTimeout = 2 * time.Minute

// Bot is the Telegram transport of the verification dialog.
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *app.SessionService
	users    *app.UserService
	maxBytes int
	log      *zap.Logger
}

// NewBot authorizes the bot. maxBytes caps every download.
func NewBot(token string, sessions *app.SessionService, users *app.UserService, maxBytes int, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:      api,
		sessions: sessions,
		users:    users,
		maxBytes: maxBytes,
		log:      log,
	}, nil
}

// Run processes updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get user", zap.Int64("user", msg.From.ID), zap.Error(err))
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	fileID, ok := imageFileID(msg)
	if !ok {
		if user.InFlow() {
			b.sendMessage(msg.Chat.ID, msgNotImage)
		} else {
			b.sendMessage(msg.Chat.ID, msgSendVerify)
		}
		return
	}

	switch user.State {
	case entity.StateAwaitingReference:
		b.handleReference(ctx, msg, fileID)
	case entity.StateAwaitingProbe:
		b.handleProbe(ctx, msg, fileID)
	case entity.StateProcessing:
		b.sendMessage(msg.Chat.ID, msgStillProcessing)
	default:
		b.sendMessage(msg.Chat.ID, msgSendVerify)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.sessions.Cancel(ctx, userID, chatID); err != nil {
			b.log.Error("reset user", zap.Int64("user", userID), zap.Error(err))
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "verify":
		if _, err := b.sessions.Begin(ctx, userID, chatID); err != nil {
			b.log.Error("begin verification", zap.Int64("user", userID), zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgAwaitingReference)

	case "cancel":
		if _, err := b.sessions.Cancel(ctx, userID, chatID); err != nil {
			b.log.Error("cancel verification", zap.Int64("user", userID), zap.Error(err))
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handleReference(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.log.Error("download reference", zap.Int64("user", msg.From.ID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if _, err := b.sessions.AcceptReference(ctx, msg.From.ID, msg.Chat.ID, data); err != nil {
		b.log.Error("store reference", zap.Int64("user", msg.From.ID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(msg.Chat.ID, msgAwaitingProbe)
}

func (b *Bot) handleProbe(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.log.Error("download selfie", zap.Int64("user", msg.From.ID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	b.sendMessage(msg.Chat.ID, msgProcessing)

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	outcome, err := b.sessions.AcceptProbe(vctx, msg.From.ID, msg.Chat.ID, data)
	if err != nil {
		b.log.Error("verification failed", zap.Int64("user", msg.From.ID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, errorReply(err))
		return
	}
	b.sendMessage(msg.Chat.ID, formatOutcome(outcome))
}

// imageFileID picks the largest photo size, or an image sent as a document.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// errorReply hides backend details from the user.
func errorReply(err error) string {
	switch {
	case errors.Is(err, app.ErrNoReference):
		return msgAwaitingReference
	case errors.Is(err, entity.ErrBackendUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return msgUnavailable
	default:
		return msgProcessingError
	}
}

func formatOutcome(outcome entity.Outcome) string {
	var sb strings.Builder
	if outcome.Verified() {
		sb.WriteString("✅ ")
	} else {
		sb.WriteString("❌ ")
	}
	sb.WriteString(outcome.Text())

	var report *entity.Report
	switch o := outcome.(type) {
	case *entity.Accepted:
		report = o.Report
	case *entity.Rejected:
		report = o.Report
	}
	if report == nil {
		return sb.String()
	}

	fmt.Fprintf(&sb, "\n\nSimilarity: %.2f%%", report.Similarity)
	for _, v := range report.Ensemble.Verdicts {
		switch {
		case v.Degraded:
			fmt.Fprintf(&sb, "\n• %s: unavailable", v.ModelID)
		case v.Verified:
			fmt.Fprintf(&sb, "\n• %s: match (%.3f < %.2f)", v.ModelID, v.Distance, v.Threshold)
		default:
			fmt.Fprintf(&sb, "\n• %s: no match (%.3f ≥ %.2f)", v.ModelID, v.Distance, v.Threshold)
		}
	}
	return sb.String()
}

// downloadFile reads at most maxBytes+1 bytes so oversized uploads still reach the size check.
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(b.maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}
