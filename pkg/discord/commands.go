package discord

import (
	"github.com/bwmarrin/discordgo"
)

var minPage = float64(1)

// Commands returns the slash commands the bot registers
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "login",
			Description: "Log in to Placebo Casino",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "username", Description: "Your casino username", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "password", Description: "Your password", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "register",
			Description: "Create a Placebo Casino account",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "username", Description: "Pick a username", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "password", Description: "Pick a password", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "email", Description: "Your email address", Type: discordgo.ApplicationCommandOptionString},
			},
		},
		{Name: "logout", Description: "Log out of Placebo Casino"},
		{Name: "points", Description: "Show your points balance"},
		{Name: "history", Description: "Show your recent games"},
		{Name: "stats", Description: "Show your game statistics"},
		{Name: "games", Description: "Browse the games lobby"},
		{Name: "blackjack", Description: "Sit down at the blackjack table"},
		{Name: "rewards", Description: "Spend your points on rewards"},
		{
			Name:        "leaderboard",
			Description: "Top players by net profit",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "page", Description: "Page number", Type: discordgo.ApplicationCommandOptionInteger, MinValue: &minPage},
			},
		},
	}
}

// optionMap indexes command options by name
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}
