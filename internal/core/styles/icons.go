package styles

// Nerd font glyphs used by the status line and toasts.
var (
	IconTable   = "\U000F04EB"
	IconSearch  = ""
	IconFile    = ""
	IconCheck   = ""
	IconError   = ""
	IconWarning = ""
	IconInfo    = ""
	IconWatch   = ""
)
