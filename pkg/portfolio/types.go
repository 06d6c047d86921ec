package portfolio

// Config represents the complete portfolio document.
type Config struct {
	Personal        Personal        `json:"personal"`
	Education       Education       `json:"education"`
	Experience      []Experience    `json:"experience"`
	Skills          Skills          `json:"skills"`
	Projects        []Project       `json:"projects"`
	Social          Social          `json:"social"`
	EntryLevel      EntryLevel      `json:"entryLevel"`
	Personality     Personality     `json:"personality"`
	Resume          Resume          `json:"resume"`
	Chatbot         Chatbot         `json:"chatbot"`
	PresetQuestions PresetQuestions `json:"presetQuestions"`
	Meta            Meta            `json:"meta"`
}

// Personal represents the subject's identity and biography.
type Personal struct {
	Name           string   `json:"name"`
	Location       Location `json:"location"`
	Title          string   `json:"title"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Handle         string   `json:"handle"`
	Bio            string   `json:"bio"`
	Avatar         string   `json:"avatar"`
	FallbackAvatar string   `json:"fallbackAvatar"`
}

// Location represents where the subject lives and is willing to work.
type Location struct {
	Current            string   `json:"current"`
	Remote             bool     `json:"remote"`
	Relocation         bool     `json:"relocation"`
	PreferredLocations []string `json:"preferredLocations"`
	Timezone           string   `json:"timezone"`
}

// Education holds the current program and academic achievements.
type Education struct {
	Current      Program  `json:"current"`
	Achievements []string `json:"achievements"`
}

// Program is a degree program.
type Program struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Duration       string `json:"duration"`
	GraduationDate string `json:"graduationDate"`
}

// Experience represents a single position.
type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Type         string   `json:"type"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Skills represents the skill buckets. Buckets may overlap.
type Skills struct {
	Programming    []string `json:"programming"`
	MLAI           []string `json:"ml_ai"`
	WebDevelopment []string `json:"web_development"`
	Databases      []string `json:"databases"`
	DevOpsCloud    []string `json:"devops_cloud"`
	BigData        []string `json:"big_data"`
	SoftSkills     []string `json:"soft_skills"`
}

// Project represents a portfolio project.
type Project struct {
	Title        string         `json:"title"`
	Category     string         `json:"category"`
	Description  string         `json:"description"`
	TechStack    []string       `json:"techStack"`
	Date         string         `json:"date"`
	Status       string         `json:"status"`
	Featured     bool           `json:"featured"`
	Achievements []string       `json:"achievements,omitempty"`
	Metrics      []string       `json:"metrics,omitempty"`
	Links        []ProjectLink  `json:"links"`
	Images       []ProjectImage `json:"images"`
}

// ProjectLink is an external link attached to a project.
type ProjectLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProjectImage is a screenshot or illustration of a project.
type ProjectImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Social holds profile URLs. An empty string means not provided.
type Social struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// EntryLevel describes the job-seeking status.
type EntryLevel struct {
	Seeking       bool     `json:"seeking"`
	CurrentStatus string   `json:"currentStatus"`
	FocusAreas    []string `json:"focusAreas"`
	Availability  string   `json:"availability"`
	WorkStyle     string   `json:"workStyle"`
	Goals         string   `json:"goals"`
}

// Personality is used verbatim in the persona prompt.
type Personality struct {
	Traits       []string `json:"traits"`
	Interests    []string `json:"interests"`
	FunFacts     []string `json:"funFacts"`
	WorkingStyle string   `json:"workingStyle"`
	Motivation   string   `json:"motivation"`
}

// Resume is downloadable resume metadata.
type Resume struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileType    string `json:"fileType"`
	LastUpdated string `json:"lastUpdated"`
	FileSize    string `json:"fileSize"`
	DownloadURL string `json:"downloadUrl"`
}

// Chatbot holds persona settings for the chat widget.
type Chatbot struct {
	Name          string   `json:"name"`
	Personality   string   `json:"personality"`
	Tone          string   `json:"tone"`
	Language      string   `json:"language"`
	ResponseStyle string   `json:"responseStyle"`
	UseEmojis     bool     `json:"useEmojis"`
	Topics        []string `json:"topics"`
}

// PresetQuestions groups suggested questions for the UI.
type PresetQuestions struct {
	Me           []string `json:"me"`
	Professional []string `json:"professional"`
	Projects     []string `json:"projects"`
	Contact      []string `json:"contact"`
	Fun          []string `json:"fun"`
}

// Meta describes the document itself.
type Meta struct {
	ConfigVersion string `json:"configVersion"`
	LastUpdated   string `json:"lastUpdated"`
	GeneratedBy   string `json:"generatedBy"`
	Description   string `json:"description"`
}

// ExperienceTypeFullTime marks the entry used as the current role.
const ExperienceTypeFullTime = "Full-time"

// CurrentRole returns the first full-time experience entry in list order.
func (c *Config) CurrentRole() (exp Experience, found bool) {
	for _, e := range c.Experience {
		if e.Type == ExperienceTypeFullTime {
			exp = e
			found = true
			return exp, found
		}
	}
	return exp, found
}
