package tools

import (
	"fmt"
	"strings"

	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
)

// Placeholders used when the portfolio has nothing to say.
const (
	DefaultMotivation = "Driven by a passion for building intelligent, accessible technology that bridges the gap between human needs and digital solutions. I believe in creating systems that don't just work, but truly enhance people's lives through thoughtful AI integration and user-centered design."

	NoCurrentPosition       = "Currently employed in software engineering role"
	DefaultResponsibilities = "Developing AI and ML solutions for enterprise applications"
	ProjectExperience       = "Led multiple end-to-end projects including web full stack development, AI agent development, and ML models"
	PreferredWorkMode       = "Remote/Hybrid preferred"
	PortfolioBlurb          = "This AI-powered portfolio showcases my projects and skills"
)

// ContactResult is the getContact payload.
type ContactResult struct {
	Contact        ContactDetails `json:"contact"`
	SocialProfiles SocialProfiles `json:"socialProfiles"`
}

// ContactDetails holds how and where to reach the subject.
type ContactDetails struct {
	Email              string   `json:"email"`
	Location           string   `json:"location"`
	Remote             bool     `json:"remote"`
	Relocation         bool     `json:"relocation"`
	PreferredLocations []string `json:"preferredLocations"`
	Timezone           string   `json:"timezone"`
	Availability       string   `json:"availability"`
}

// SocialProfiles only carries platforms that have a URL.
type SocialProfiles struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// Contact builds the getContact payload.
func Contact(cfg *portfolio.Config) (result ContactResult) {
	loc := cfg.Personal.Location
	result = ContactResult{
		Contact: ContactDetails{
			Email:              cfg.Personal.Email,
			Location:           loc.Current,
			Remote:             loc.Remote,
			Relocation:         loc.Relocation,
			PreferredLocations: loc.PreferredLocations,
			Timezone:           loc.Timezone,
			Availability:       cfg.EntryLevel.Availability,
		},
		SocialProfiles: SocialProfiles{
			GitHub:   cfg.Social.GitHub,
			LinkedIn: cfg.Social.LinkedIn,
			Website:  cfg.Social.Website,
			Twitter:  cfg.Social.Twitter,
		},
	}
	return result
}

// PresentationResult is the getPresentation payload.
type PresentationResult struct {
	Presentation string             `json:"presentation"`
	Name         string             `json:"name"`
	Title        string             `json:"title"`
	Location     portfolio.Location `json:"location"`
	Education    portfolio.Program  `json:"education"`
	Traits       []string           `json:"traits"`
	Interests    []string           `json:"interests"`
	Motivation   string             `json:"motivation"`
}

// Presentation builds the getPresentation payload.
func Presentation(cfg *portfolio.Config) (result PresentationResult) {
	motivation := cfg.Personality.Motivation
	if motivation == "" {
		motivation = DefaultMotivation
	}

	result = PresentationResult{
		Presentation: cfg.Personal.Bio,
		Name:         cfg.Personal.Name,
		Title:        cfg.Personal.Title,
		Location:     cfg.Personal.Location,
		Education:    cfg.Education.Current,
		Traits:       cfg.Personality.Traits,
		Interests:    cfg.Personality.Interests,
		Motivation:   motivation,
	}
	return result
}

// ProjectsResult is the getProjects payload.
type ProjectsResult struct {
	Projects []ProjectSummary `json:"projects"`
}

// ProjectSummary is one project as the model sees it.
type ProjectSummary struct {
	Title       string                  `json:"title"`
	Type        string                  `json:"type"`
	Date        string                  `json:"date"`
	Description string                  `json:"description"`
	TechStack   []string                `json:"techStack"`
	Status      string                  `json:"status"`
	Featured    bool                    `json:"featured"`
	Links       []portfolio.ProjectLink `json:"links"`
	Highlights  []string                `json:"highlights"`
}

// Projects builds the getProjects payload in source order.
func Projects(cfg *portfolio.Config) (result ProjectsResult) {
	result.Projects = make([]ProjectSummary, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		highlights := p.Achievements
		if len(highlights) == 0 {
			highlights = p.Metrics
		}
		if highlights == nil {
			highlights = []string{}
		}

		result.Projects = append(result.Projects, ProjectSummary{
			Title:       p.Title,
			Type:        p.Category,
			Date:        p.Date,
			Description: p.Description,
			TechStack:   p.TechStack,
			Status:      p.Status,
			Featured:    p.Featured,
			Links:       p.Links,
			Highlights:  highlights,
		})
	}
	return result
}

// SkillsResult is the getSkills payload.
type SkillsResult struct {
	TechnicalSkills TechnicalSkills     `json:"technicalSkills"`
	Education       EducationSummary    `json:"education"`
	Achievements    []string            `json:"achievements"`
	Experience      []ExperienceSummary `json:"experience"`
}

// TechnicalSkills groups the technical buckets.
type TechnicalSkills struct {
	Programming     []string `json:"programming"`
	MachineLearning []string `json:"machineLearning"`
	WebDevelopment  []string `json:"webDevelopment"`
	Databases       []string `json:"databases"`
	DevOpsCloud     []string `json:"devOpsCloud"`
}

// EducationSummary is the current program without its graduation date.
type EducationSummary struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Duration    string `json:"duration"`
}

// ExperienceSummary is one position.
type ExperienceSummary struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Type         string   `json:"type"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
}

// Skills builds the getSkills payload.
func Skills(cfg *portfolio.Config) (result SkillsResult) {
	s := cfg.Skills
	result = SkillsResult{
		TechnicalSkills: TechnicalSkills{
			Programming:     s.Programming,
			MachineLearning: s.MLAI,
			WebDevelopment:  s.WebDevelopment,
			Databases:       s.Databases,
			DevOpsCloud:     s.DevOpsCloud,
		},
		Education: EducationSummary{
			Degree:      cfg.Education.Current.Degree,
			Institution: cfg.Education.Current.Institution,
			Duration:    cfg.Education.Current.Duration,
		},
		Achievements: cfg.Education.Achievements,
		Experience:   make([]ExperienceSummary, 0, len(cfg.Experience)),
	}

	for _, exp := range cfg.Experience {
		result.Experience = append(result.Experience, ExperienceSummary{
			Position:     exp.Position,
			Company:      exp.Company,
			Duration:     exp.Duration,
			Type:         exp.Type,
			Technologies: exp.Technologies,
			Description:  exp.Description,
		})
	}

	return result
}

// EntryLevelResult is the getEntryLevel payload.
type EntryLevelResult struct {
	CurrentStatus string              `json:"currentStatus"`
	Availability  string              `json:"availability"`
	Preferences   Preferences         `json:"preferences"`
	Experience    CurrentExperience   `json:"experience"`
	Skills        SkillSplit          `json:"skills"`
	Achievements  []string            `json:"achievements"`
	LookingFor    LookingFor          `json:"lookingFor"`
	Contact       EntryLevelContact   `json:"contact"`
	Personality   PersonalitySnapshot `json:"personality"`
	Message       string              `json:"message"`
}

// Preferences describes the roles the subject wants.
type Preferences struct {
	RoleTypes  []string `json:"roleTypes"`
	Industries []string `json:"industries"`
	WorkMode   string   `json:"workMode"`
	Location   string   `json:"location"`
}

// CurrentExperience summarizes the current role.
type CurrentExperience struct {
	CurrentPosition         string `json:"currentPosition"`
	CurrentResponsibilities string `json:"currentResponsibilities"`
	ProjectExperience       string `json:"projectExperience"`
}

// SkillSplit separates technical and soft skills.
type SkillSplit struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

// LookingFor lists what the subject seeks in a role.
type LookingFor struct {
	GrowthOpportunities string `json:"growthOpportunities"`
	Mentorship          string `json:"mentorship"`
	ImpactfulWork       string `json:"impactfulWork"`
	TechnicalChallenges string `json:"technicalChallenges"`
	Collaboration       string `json:"collaboration"`
}

// EntryLevelContact is where recruiters should follow up.
type EntryLevelContact struct {
	Email     string `json:"email"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// PersonalitySnapshot is the personality subset shown to recruiters.
type PersonalitySnapshot struct {
	Traits       []string `json:"traits"`
	FunFacts     []string `json:"funFacts"`
	WorkingStyle string   `json:"workingStyle"`
}

// TargetIndustries are the industries advertised in getEntryLevel.
func TargetIndustries() (industries []string) {
	industries = []string{"Technology", "AI/ML", "Healthcare Technology", "Web Development"}
	return industries
}

// CurrentPosition formats the first full-time role, or the placeholder when there is none.
func CurrentPosition(cfg *portfolio.Config) (position string) {
	exp, found := cfg.CurrentRole()
	if !found {
		position = NoCurrentPosition
		return position
	}
	position = fmt.Sprintf("%s at %s (%s)", exp.Position, exp.Company, exp.Duration)
	return position
}

// EntryLevel builds the getEntryLevel payload.
func EntryLevel(cfg *portfolio.Config) (result EntryLevelResult) {
	responsibilities := DefaultResponsibilities
	if exp, found := cfg.CurrentRole(); found && exp.Description != "" {
		responsibilities = exp.Description
	}

	s := cfg.Skills
	technical := make([]string, 0, len(s.Programming)+len(s.MLAI)+len(s.WebDevelopment)+len(s.Databases)+len(s.DevOpsCloud))
	technical = append(technical, s.Programming...)
	technical = append(technical, s.MLAI...)
	technical = append(technical, s.WebDevelopment...)
	technical = append(technical, s.Databases...)
	technical = append(technical, s.DevOpsCloud...)

	result = EntryLevelResult{
		CurrentStatus: cfg.EntryLevel.CurrentStatus,
		Availability:  cfg.EntryLevel.Availability,
		Preferences: Preferences{
			RoleTypes:  cfg.EntryLevel.FocusAreas,
			Industries: TargetIndustries(),
			WorkMode:   PreferredWorkMode,
			Location:   cfg.Personal.Location.Current,
		},
		Experience: CurrentExperience{
			CurrentPosition:         CurrentPosition(cfg),
			CurrentResponsibilities: responsibilities,
			ProjectExperience:       ProjectExperience,
		},
		Skills: SkillSplit{
			Technical: technical,
			Soft:      s.SoftSkills,
		},
		Achievements: cfg.Education.Achievements,
		LookingFor: LookingFor{
			GrowthOpportunities: "Advanced technical challenges and leadership opportunities",
			Mentorship:          "Collaborating with senior developers and architects on complex projects",
			ImpactfulWork:       cfg.Personality.Motivation,
			TechnicalChallenges: "Cutting-edge technologies and innovative solutions",
			Collaboration:       "Collaborative, innovative environments where I can contribute meaningfully",
		},
		Contact: EntryLevelContact{
			Email:     cfg.Personal.Email,
			LinkedIn:  cfg.Social.LinkedIn,
			GitHub:    cfg.Social.GitHub,
			Portfolio: PortfolioBlurb,
		},
		Personality: PersonalitySnapshot{
			Traits:       cfg.Personality.Traits,
			FunFacts:     cfg.Personality.FunFacts,
			WorkingStyle: cfg.Personality.WorkingStyle,
		},
	}

	result.Message = summaryMessage(cfg, result.Experience.CurrentPosition)

	return result
}

// summaryMessage is a short professional summary for the model to paraphrase.
func summaryMessage(cfg *portfolio.Config, position string) (msg string) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s - %s.", cfg.Personal.Name, cfg.Personal.Title)
	fmt.Fprintf(&b, " Current position: %s.", position)

	if cfg.EntryLevel.CurrentStatus != "" {
		fmt.Fprintf(&b, " Status: %s.", cfg.EntryLevel.CurrentStatus)
	}

	if len(cfg.EntryLevel.FocusAreas) > 0 {
		fmt.Fprintf(&b, " Focus areas: %s.", strings.Join(cfg.EntryLevel.FocusAreas, ", "))
	}

	if cfg.EntryLevel.Availability != "" {
		fmt.Fprintf(&b, " %s", cfg.EntryLevel.Availability)
	}

	msg = b.String()
	return msg
}
