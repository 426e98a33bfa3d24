package cli

// Default values for CLI output.
const (
	// MaxTitleLength is the maximum length of an entry title in list output.
	MaxTitleLength = 48
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// setCommandArgs is the number of arguments expected by config set.
	setCommandArgs = 2
)
