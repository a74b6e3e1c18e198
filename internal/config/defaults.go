package config

const (
	defaultWorkspaceDir = "."
	defaultStateDir     = "~/.local/state/questionindex"
	defaultQuestionText = "Solve the problem ..."
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// defaultExtensions is the accepted image extension set.
var defaultExtensions = []string{".png", ".gif", ".jpg", ".svg"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			StateDir:     defaultStateDir,
		},
		Site: Site{
			QuestionText: defaultQuestionText,
		},
		Filter: Filter{
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
