package reporter

import (
	"fmt"
	"strings"
	"time"

	"go-linkedin-sweeper/internal/geo"
	"go-linkedin-sweeper/internal/runner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxListedJobs = 10

// Sender is the part of tgbotapi.BotAPI the reporter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramReporter struct {
	bot    Sender
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return NewWithSender(bot, chatID), nil
}

func NewWithSender(bot Sender, chatID int64) *TelegramReporter {
	return &TelegramReporter{bot: bot, chatID: chatID}
}

var markdownReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

func (t *TelegramReporter) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// FormatSummary renders a sweep summary as MarkdownV2.
func FormatSummary(s runner.Summary) string {
	var b strings.Builder
	st := s.Stats

	b.WriteString("🧹 *" + escapeMarkdown("LinkedIn sweep finished") + "*\n")
	lines := []string{
		fmt.Sprintf("🆔 Run: %s", s.RunID),
		fmt.Sprintf("📄 Pages: %d (%s)", s.Pages, s.StopReason),
		fmt.Sprintf("🔎 Processed: %d", st.Processed),
		fmt.Sprintf("🚫 Dismissed: %d (title %d, company %d)", st.Dismissed, st.DismissedByTitle, st.DismissedByCompany),
		fmt.Sprintf("⏭ Skipped: %d", st.Skipped),
		fmt.Sprintf("✅ Kept: %d", st.Kept),
		fmt.Sprintf("⚠️ Failed: %d", st.Failed),
		fmt.Sprintf("💾 Saved: %d", st.Saved),
		fmt.Sprintf("⏱ Took: %s", s.Duration().Round(time.Second)),
	}
	if st.Malformed > 0 {
		lines = append(lines, fmt.Sprintf("🧩 Malformed: %d", st.Malformed))
	}
	for _, l := range lines {
		b.WriteString(escapeMarkdown(l) + "\n")
	}

	if len(s.Dismissed) > 0 {
		b.WriteString("\n*" + escapeMarkdown("Dismissed jobs") + "*\n")
		for i, job := range s.Dismissed {
			if i == maxListedJobs {
				b.WriteString(escapeMarkdown(fmt.Sprintf("…and %d more", len(s.Dismissed)-maxListedJobs)) + "\n")
				break
			}
			company := job.Company
			if company == "" {
				company = "N/A"
			}
			b.WriteString(escapeMarkdown(fmt.Sprintf("• %s @ %s", job.Title, company)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatFixSummary renders a geo fix-up summary as MarkdownV2.
func FormatFixSummary(s geo.FixSummary) string {
	lines := []string{
		"📍 *" + escapeMarkdown("Location fix-up finished") + "*",
		escapeMarkdown(fmt.Sprintf("Checked: %d, consistent: %d", s.Checked, s.Consistent)),
		escapeMarkdown(fmt.Sprintf("Updated: %d (failed %d)", s.Updated, s.UpdateFailed)),
		escapeMarkdown(fmt.Sprintf("Deleted: %d (failed %d)", s.Deleted, s.DeleteFailed)),
		escapeMarkdown(fmt.Sprintf("Skipped: %d", s.Skipped)),
	}
	return strings.Join(lines, "\n")
}

func (t *TelegramReporter) SendSummary(s runner.Summary) error {
	return t.send(FormatSummary(s))
}

func (t *TelegramReporter) SendFixSummary(s geo.FixSummary) error {
	return t.send(FormatFixSummary(s))
}

func (t *TelegramReporter) SendError(errReq error) error {
	return t.send("⚠️ *Sweeper error*:\n" + escapeMarkdown(errReq.Error()))
}
