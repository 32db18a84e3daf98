package bot

// Command constants for Telegram bot commands.
const (
	CommandStart   = "/start"
	CommandStatus  = "/status"
	CommandMyCreds = "/mycreds"
	CommandHelp    = "/help"
	CommandBuy     = "/buy"
)

// Callback data constants for inline button interactions.
const (
	CallbackCheckStatus = "check_status"
	CallbackGenerate    = "generate_creds"
)
