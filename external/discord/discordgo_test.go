package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/tomodachin/internal/discord"
)

func TestButtonRows_ChunksByFive(t *testing.T) {
	buttons := make([]discordpkg.Button, 7)
	for i := range buttons {
		buttons[i] = discordpkg.Button{Label: "b", CustomID: "join:1:x"}
	}

	rows := buttonRows(buttons)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first, ok := rows[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("expected ActionsRow, got %T", rows[0])
	}
	if len(first.Components) != 5 {
		t.Fatalf("expected 5 buttons in first row, got %d", len(first.Components))
	}
	second := rows[1].(discordgo.ActionsRow)
	if len(second.Components) != 2 {
		t.Fatalf("expected 2 buttons in second row, got %d", len(second.Components))
	}
}

func TestButtonRows_Empty(t *testing.T) {
	if rows := buttonRows(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestBuildMessageEmbed(t *testing.T) {
	embed := buildMessageEmbed(discordpkg.Embed{
		Title:       "title",
		Description: "desc",
		Footer:      "footer",
		Color:       0xF1C40F,
		Fields: []discordpkg.EmbedField{
			{Name: "n", Value: "v", Inline: true},
		},
	})
	if embed.Title != "title" || embed.Description != "desc" || embed.Color != 0xF1C40F {
		t.Fatalf("unexpected embed: %+v", embed)
	}
	if embed.Footer == nil || embed.Footer.Text != "footer" {
		t.Fatalf("unexpected footer: %+v", embed.Footer)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline {
		t.Fatalf("unexpected fields: %+v", embed.Fields)
	}
}

func TestBuildMessageEmbed_NoFooter(t *testing.T) {
	embed := buildMessageEmbed(discordpkg.Embed{Title: "t"})
	if embed.Footer != nil {
		t.Fatalf("expected nil footer, got %+v", embed.Footer)
	}
}

func TestPreferredDiscordName(t *testing.T) {
	if got := preferredDiscordName("Global", "user", "fallback"); got != "Global" {
		t.Fatalf("expected global name, got %q", got)
	}
	if got := preferredDiscordName("", "user", "fallback"); got != "user" {
		t.Fatalf("expected username, got %q", got)
	}
	if got := preferredDiscordName("", "", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
