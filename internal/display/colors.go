package display

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	BgSelect = "\033[43m"
	BgTarget = "\033[46m"
)

// Prompt returns a colored readline prompt.
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}
