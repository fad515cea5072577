package discord

import "context"

type SlashCommandOptionDefinition struct {
	Name         string
	Description  string
	Required     bool
	Autocomplete bool
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []SlashCommandOptionDefinition
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	Options          map[string]string
	RespondEphemeral func(content string) error
}

type ComponentEvent struct {
	GuildID          string
	ChannelID        string
	MessageID        string
	CustomID         string
	UserID           string
	RespondEphemeral func(content string) error
}

type AutocompleteEvent struct {
	CommandName    string
	OptionName     string
	Partial        string
	RespondChoices func(choices []string) error
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
	Footer      string
	Color       int
}

type Button struct {
	Label    string
	CustomID string
	Emoji    string
	Disabled bool
}

type Announcement struct {
	ChannelID string
	Content   string
	Embed     Embed
	Buttons   []Button
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Run() error
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	RegisterComponentHandler(handler func(ComponentEvent))
	RegisterAutocompleteHandler(handler func(AutocompleteEvent))
	PostAnnouncement(a Announcement) (messageID string, err error)
	EditAnnouncement(channelID, messageID string, embed Embed, buttons []Button) error
	SendDirectMessage(userID, content string) error
	ResolveDisplayName(guildID, userID string) string
}
