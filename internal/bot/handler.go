package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/tomodachin/internal/config"
	"github.com/foxseedlab/tomodachin/internal/discord"
	"github.com/foxseedlab/tomodachin/internal/match"
	"github.com/foxseedlab/tomodachin/internal/timeparse"
	"github.com/foxseedlab/tomodachin/internal/webhook"
)

const (
	commandCreate = "naisen-create"
	commandDelete = "naisen-delete"
	commandAbsent = "naisen-absent"

	optionStartTime   = "start_time"
	optionDeadline    = "deadline"
	optionGames       = "games"
	optionDescription = "description"
	optionMatchID     = "match_id"
	optionReason      = "reason"

	maxAutocompleteChoices = 25
	maxAbsenceReasonLength = 200
)

// Handler glues Discord interactions to the match registry and renders
// engine projections back into the announcement message.
type Handler struct {
	cfg      *config.Config
	registry *match.Registry
	dc       discord.Client
	webhook  webhook.Sender
	loc      *time.Location
	now      func() time.Time
}

func NewHandler(cfg *config.Config, registry *match.Registry, dc discord.Client, wh webhook.Sender) *Handler {
	return &Handler{
		cfg:      cfg,
		registry: registry,
		dc:       dc,
		webhook:  wh,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{
			Name:        commandCreate,
			Description: "内戦を作成して参加者の募集を開始します。",
			Options: []discord.SlashCommandOptionDefinition{
				{Name: optionStartTime, Description: "内戦の開始時間（例: 21:00 / 午後9時）", Required: true},
				{Name: optionGames, Description: "ゲーム一覧（カンマ区切り）", Required: true, Autocomplete: true},
				{Name: optionDescription, Description: "ルールや参加条件などの詳細", Required: true},
				{Name: optionDeadline, Description: "募集締切時間（例: 23:50 / 午後11時50分）"},
			},
		},
		{
			Name:        commandDelete,
			Description: "自分が作成した内戦を削除します。",
			Options: []discord.SlashCommandOptionDefinition{
				{Name: optionMatchID, Description: "削除する内戦のID", Required: true},
			},
		},
		{
			Name:        commandAbsent,
			Description: "参加中の内戦に不参加を登録します。",
			Options: []discord.SlashCommandOptionDefinition{
				{Name: optionMatchID, Description: "不参加にする内戦のID", Required: true},
				{Name: optionGames, Description: "不参加にするゲーム（カンマ区切り）", Required: true},
				{Name: optionReason, Description: "不参加の理由（200文字まで）", Required: true},
			},
		},
	}
}

func (h *Handler) HandleSlashCommand(ev discord.SlashCommandEvent) {
	if ev.GuildID != h.cfg.DiscordGuildID {
		_ = ev.RespondEphemeral(messageEphemeralWrongGuild)
		return
	}
	ctx := context.Background()
	switch ev.CommandName {
	case commandCreate:
		h.handleCreate(ctx, ev)
	case commandDelete:
		h.handleDelete(ctx, ev)
	case commandAbsent:
		h.handleAbsent(ctx, ev)
	default:
		_ = ev.RespondEphemeral(messageEphemeralUnknownCommand)
	}
}

func (h *Handler) handleCreate(ctx context.Context, ev discord.SlashCommandEvent) {
	startAt, err := h.parseClock(ev.Options[optionStartTime])
	if err != nil {
		_ = ev.RespondEphemeral(messageEphemeralInvalidStartTime)
		return
	}
	var deadline *time.Time
	if raw := strings.TrimSpace(ev.Options[optionDeadline]); raw != "" {
		t, err := h.parseClock(raw)
		if err != nil {
			_ = ev.RespondEphemeral(messageEphemeralInvalidDeadline)
			return
		}
		deadline = &t
	}

	m, err := h.registry.Create(ctx, match.CreateInput{
		HostID:           ev.UserID,
		StartAt:          startAt,
		RecruitmentEndAt: deadline,
		Activities:       strings.Split(ev.Options[optionGames], ","),
		Description:      ev.Options[optionDescription],
	})
	if err != nil {
		var conflictErr *match.ConflictError
		var validationErr *match.ValidationError
		switch {
		case errors.As(err, &conflictErr):
			_ = ev.RespondEphemeral(fmt.Sprintf(messageConflictFormat, strings.Join(conflictErr.Activities, ", ")))
		case errors.As(err, &validationErr):
			_ = ev.RespondEphemeral(messageEphemeralInvalidGames)
		default:
			slog.Error("failed to create match", "error", err, "user_id", ev.UserID)
			_ = ev.RespondEphemeral(messageEphemeralInternalError)
		}
		return
	}

	messageID, err := h.dc.PostAnnouncement(discord.Announcement{
		ChannelID: ev.ChannelID,
		Content:   "@everyone",
		Embed:     h.renderEmbed(m),
		Buttons:   joinButtons(m, false),
	})
	if err != nil {
		slog.Error("failed to post announcement", "error", err, "match_id", m.ID)
	} else if err := h.registry.SetAnnouncement(ctx, m.ID, match.AnnouncementRef{
		ChannelID: ev.ChannelID,
		MessageID: messageID,
	}); err != nil {
		slog.Error("failed to record announcement ref", "error", err, "match_id", m.ID)
	}

	h.sendMatchEvent(ctx, webhook.EventMatchCreated, m)
	_ = ev.RespondEphemeral(fmt.Sprintf(messageCreatedFormat, m.ID))
}

func (h *Handler) handleDelete(ctx context.Context, ev discord.SlashCommandEvent) {
	matchID, err := strconv.ParseInt(strings.TrimSpace(ev.Options[optionMatchID]), 10, 64)
	if err != nil {
		_ = ev.RespondEphemeral(messageEphemeralInvalidMatchID)
		return
	}
	deleted, err := h.registry.Delete(ctx, matchID, ev.UserID)
	if err != nil {
		switch {
		case errors.Is(err, match.ErrNotFound):
			_ = ev.RespondEphemeral(messageEphemeralNotFound)
		case errors.Is(err, match.ErrPermission):
			_ = ev.RespondEphemeral(messageEphemeralNotHost)
		default:
			slog.Error("failed to delete match", "error", err, "match_id", matchID, "user_id", ev.UserID)
			_ = ev.RespondEphemeral(messageEphemeralInternalError)
		}
		return
	}

	if ref := deleted.Announcement; ref != nil {
		embed := discord.Embed{
			Title:       fmt.Sprintf(deletedEmbedTitleFormat, deleted.ID),
			Description: deletedEmbedDescription,
			Color:       embedColorDeleted,
		}
		if err := h.dc.EditAnnouncement(ref.ChannelID, ref.MessageID, embed, nil); err != nil {
			slog.Warn("failed to edit announcement after delete", "error", err, "match_id", deleted.ID)
		}
	}
	h.sendMatchEvent(ctx, webhook.EventMatchDeleted, deleted)
	_ = ev.RespondEphemeral(fmt.Sprintf(messageDeletedFormat, deleted.ID))
}

func (h *Handler) handleAbsent(ctx context.Context, ev discord.SlashCommandEvent) {
	matchID, err := strconv.ParseInt(strings.TrimSpace(ev.Options[optionMatchID]), 10, 64)
	if err != nil {
		_ = ev.RespondEphemeral(messageEphemeralInvalidMatchID)
		return
	}
	activities := splitGames(ev.Options[optionGames])
	if len(activities) == 0 {
		_ = ev.RespondEphemeral(messageEphemeralInvalidGames)
		return
	}
	reason := strings.TrimSpace(ev.Options[optionReason])
	if runes := []rune(reason); len(runes) > maxAbsenceReasonLength {
		reason = string(runes[:maxAbsenceReasonLength])
	}

	updated, err := h.registry.RecordAbsence(ctx, matchID, ev.UserID, activities, reason)
	if err != nil {
		var validationErr *match.ValidationError
		switch {
		case errors.Is(err, match.ErrNotFound):
			_ = ev.RespondEphemeral(messageEphemeralNotFound)
		case errors.Is(err, match.ErrClosed):
			_ = ev.RespondEphemeral(messageEphemeralClosed)
		case errors.As(err, &validationErr):
			_ = ev.RespondEphemeral(messageEphemeralInvalidGames)
		default:
			slog.Error("failed to record absence", "error", err, "match_id", matchID, "user_id", ev.UserID)
			_ = ev.RespondEphemeral(messageEphemeralInternalError)
		}
		return
	}

	h.refreshAnnouncement(updated)
	_ = ev.RespondEphemeral(fmt.Sprintf(messageAbsenceFormat, len(activities), reason))
}

func (h *Handler) HandleComponent(ev discord.ComponentEvent) {
	matchID, activity, ok := parseJoinCustomID(ev.CustomID)
	if !ok {
		return
	}
	ctx := context.Background()
	result, err := h.registry.ToggleAttendance(ctx, matchID, ev.UserID, activity)
	if err != nil {
		var validationErr *match.ValidationError
		switch {
		case errors.Is(err, match.ErrAlreadyJoined):
			_ = ev.RespondEphemeral(messageEphemeralAlreadyJoined)
		case errors.Is(err, match.ErrClosed):
			_ = ev.RespondEphemeral(messageEphemeralClosed)
			// The window may have been closed lazily by this toggle;
			// refresh the announcement so the buttons go dark.
			if m, getErr := h.registry.Get(matchID); getErr == nil {
				h.refreshAnnouncement(m)
			}
		case errors.Is(err, match.ErrNotFound):
			_ = ev.RespondEphemeral(messageEphemeralNotFound)
		case errors.As(err, &validationErr):
			_ = ev.RespondEphemeral(messageEphemeralUnknownActivity)
		default:
			slog.Error("failed to toggle attendance", "error", err, "match_id", matchID, "user_id", ev.UserID)
			_ = ev.RespondEphemeral(messageEphemeralInternalError)
		}
		return
	}

	h.refreshAnnouncement(result.Match)
	format := messageJoinedFormat
	if result.ClearedAbsence {
		format = messageRejoinedFormat
	}
	_ = ev.RespondEphemeral(fmt.Sprintf(format, result.Activity, result.ParticipantCount))
}

// HandleAutocomplete completes the last comma-separated segment of the
// games option against the configured game list.
func (h *Handler) HandleAutocomplete(ev discord.AutocompleteEvent) {
	if ev.CommandName != commandCreate || ev.OptionName != optionGames {
		return
	}
	segment := lastGameSegment(ev.Partial)
	var choices []string
	for _, game := range h.cfg.PredefinedGames {
		if strings.Contains(strings.ToLower(game), strings.ToLower(segment)) {
			choices = append(choices, game)
		}
		if len(choices) == maxAutocompleteChoices {
			break
		}
	}
	_ = ev.RespondChoices(choices)
}

// RecruitmentClosed implements match.AnnouncementUpdater: refresh the
// rendered announcement with disabled controls and emit the lifecycle
// event.
func (h *Handler) RecruitmentClosed(ctx context.Context, m *match.Match) {
	h.refreshAnnouncement(m)
	h.sendMatchEvent(ctx, webhook.EventRecruitmentClosed, m)
}

// RestoreAnnouncements re-renders every persisted announcement after a
// restart so closed matches show disabled buttons again.
func (h *Handler) RestoreAnnouncements() {
	for _, m := range h.registry.ListActive() {
		if m.Announcement == nil {
			continue
		}
		h.refreshAnnouncement(m)
	}
}

func (h *Handler) refreshAnnouncement(m *match.Match) {
	ref := m.Announcement
	if ref == nil {
		return
	}
	recruiting := m.EffectivelyRecruiting(h.now())
	if err := h.dc.EditAnnouncement(ref.ChannelID, ref.MessageID, h.renderEmbed(m), joinButtons(m, !recruiting)); err != nil {
		slog.Warn("failed to refresh announcement", "error", err, "match_id", m.ID)
	}
}

func (h *Handler) renderEmbed(m *match.Match) discord.Embed {
	p := match.BuildProjection(m, h.resolveDisplayName, h.now(), h.loc)

	embed := discord.Embed{
		Title:       p.Title,
		Description: fmt.Sprintf(embedFieldHostFormat, p.HostID),
		Footer:      p.Footer,
		Color:       embedColorRecruiting,
	}
	if !p.Recruiting {
		embed.Color = embedColorClosed
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{Name: embedFieldStartTime, Value: p.StartAtText})
	if p.RecruitmentEndText != "" {
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: embedFieldDeadline, Value: p.RecruitmentEndText})
	}
	gameNames := make([]string, 0, len(p.Activities))
	for _, line := range p.Activities {
		gameNames = append(gameNames, line.Activity)
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{Name: embedFieldGames, Value: strings.Join(gameNames, ", ")})
	for _, line := range p.Activities {
		value := noParticipantsLine
		if len(line.Participants) > 0 {
			value = strings.Join(line.Participants, ", ")
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:   fmt.Sprintf(participantFieldFormat, line.Activity, line.Count),
			Value:  value,
			Inline: true,
		})
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{Name: embedFieldDescription, Value: p.Description})
	if len(p.Absences) > 0 {
		var lines []string
		for _, absence := range p.Absences {
			entries := make([]string, 0, len(absence.Entries))
			for _, e := range absence.Entries {
				entries = append(entries, fmt.Sprintf("**%s**（%s）", e.Activity, e.Reason))
			}
			lines = append(lines, fmt.Sprintf("%s / %s", absence.DisplayName, strings.Join(entries, ", ")))
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: embedFieldAbsences, Value: strings.Join(lines, "\n")})
	}
	return embed
}

func (h *Handler) resolveDisplayName(userID string) string {
	return h.dc.ResolveDisplayName(h.cfg.DiscordGuildID, userID)
}

func (h *Handler) parseClock(raw string) (time.Time, error) {
	return timeparse.NextOccurrence(raw, h.now(), h.loc)
}

func (h *Handler) sendMatchEvent(ctx context.Context, eventType string, m *match.Match) {
	if h.webhook == nil {
		return
	}
	ev := webhook.MatchEvent{
		Type:       eventType,
		MatchID:    m.ID,
		HostID:     m.HostID,
		Activities: m.Activities,
		StartAt:    m.StartAt.In(h.loc).Format(time.RFC3339),
		OccurredAt: h.now().In(h.loc).Format(time.RFC3339),
	}
	if err := h.webhook.SendMatchEvent(ctx, ev); err != nil {
		slog.Warn("failed to send match event webhook", "error", err, "match_id", m.ID, "event", eventType)
	}
}

func joinButtons(m *match.Match, disabled bool) []discord.Button {
	buttons := make([]discord.Button, 0, len(m.Activities))
	for _, activity := range m.Activities {
		buttons = append(buttons, discord.Button{
			Label:    activity + joinButtonSuffix,
			CustomID: joinCustomID(m.ID, activity),
			Emoji:    "🕹️",
			Disabled: disabled,
		})
	}
	return buttons
}

func joinCustomID(matchID int64, activity string) string {
	return fmt.Sprintf("join:%d:%s", matchID, activity)
}

func parseJoinCustomID(customID string) (matchID int64, activity string, ok bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != "join" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, parts[2], true
}

func splitGames(raw string) []string {
	var games []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			games = append(games, g)
		}
	}
	return games
}

// lastGameSegment mirrors the games option format: the segment being
// typed is everything after the final comma.
func lastGameSegment(partial string) string {
	if idx := strings.LastIndex(partial, ","); idx >= 0 {
		return strings.TrimSpace(partial[idx+1:])
	}
	return strings.TrimSpace(partial)
}
