package models

import "strings"

// CommandType enumerates the chat commands understood by the unit's bot.
type CommandType string

const (
	CommandReminders CommandType = "lembretes"
	CommandWorkload  CommandType = "carga"
	CommandSchedule  CommandType = "escala"
	CommandDelete    CommandType = "excluir"
	CommandYes       CommandType = "sim"
	CommandNo        CommandType = "nao"
	CommandHelp      CommandType = "ajuda"
	CommandUnknown   CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"lembretes": CommandReminders,
	"carga":     CommandWorkload,
	"escala":    CommandSchedule,
	"excluir":   CommandDelete,
	"sim":       CommandYes,
	"s":         CommandYes,
	"nao":       CommandNo,
	"não":       CommandNo,
	"n":         CommandNo,
	"ajuda":     CommandHelp,
	"help":      CommandHelp,
}

// Command represents a parsed instruction extracted from a chat message.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Only the command word
// is case folded; arguments are kept as typed.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}

// Reply is what the bot answers. Buttons, when present, are offered as quick replies.
type Reply struct {
	Text    string
	Buttons []string
}
