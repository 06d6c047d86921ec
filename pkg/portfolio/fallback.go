package portfolio

// PlaceholderImage is used wherever an image reference is missing.
const PlaceholderImage = "/placeholder.jpg"

// Fallback returns the document used when the real one cannot be loaded.
// It carries placeholder identity fields and empty lists so every consumer
// keeps working.
func Fallback() (cfg Config) {
	cfg = Config{
		Personal: Personal{
			Name: "Configuration Error",
			Location: Location{
				Current: "Unknown",
			},
			Title:          "Error Loading Config",
			Email:          "error@example.com",
			Handle:         "@error",
			Bio:            "Configuration file could not be loaded",
			Avatar:         PlaceholderImage,
			FallbackAvatar: PlaceholderImage,
		},
		Education: Education{
			Current: Program{
				Degree:         "Error",
				Institution:    "Error",
				Duration:       "Error",
				GraduationDate: "Error",
			},
		},
	}

	Normalize(&cfg)

	return cfg
}
