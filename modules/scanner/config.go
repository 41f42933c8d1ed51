package scanner

// Config holds the page copy and mount point of the scanner module.
type Config struct {
	Title       string `env:"TITLE" envDefault:"Check-in Scanner"`
	Prompt      string `env:"PROMPT" envDefault:"Scan any QR code to Check-in Athletes"`
	BasePath    string `env:"BASE_PATH" envDefault:""`
	DatastarURL string `env:"DATASTAR_URL" envDefault:"https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Title:       "Check-in Scanner",
		Prompt:      "Scan any QR code to Check-in Athletes",
		DatastarURL: "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js",
	}
}

func (c Config) url(path string) string {
	return c.BasePath + path
}
