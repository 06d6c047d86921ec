// Package parser derives the UI- and model-facing views of a portfolio: the
// persona system prompt, contact and profile cards, skill categories, project
// cards, preset replies and the entry-level summary.
package parser

import (
	"fmt"

	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
)

// NotSeekingMessage is the entry-level summary for subjects not looking for work.
const NotSeekingMessage = "I'm not currently seeking entry-level opportunities."

// Canonical preset questions. Lookup is exact and case-sensitive.
const (
	QuestionWhoAreYou    = "Who are you?"
	QuestionSkills       = "What are your skills?"
	QuestionProjects     = "What projects are you most proud of?"
	QuestionResume       = "Can I see your resume?"
	QuestionContact      = "How can I reach you?"
	QuestionAvailability = "Am I available for opportunities?"
)

// Social is a named profile link.
type Social struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ContactInfo is the contact card.
type ContactInfo struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Handle  string   `json:"handle"`
	Socials []Social `json:"socials"`
}

// ProfileInfo is the profile card.
type ProfileInfo struct {
	Name        string             `json:"name"`
	Location    portfolio.Location `json:"location"`
	Description string             `json:"description"`
	Src         string             `json:"src"`
	FallbackSrc string             `json:"fallbackSrc"`
}

// SkillCategory is one labelled, colored skill bucket.
type SkillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
	Color    string   `json:"color"`
}

// ProjectCard is a carousel entry.
type ProjectCard struct {
	Category string            `json:"category"`
	Title    string            `json:"title"`
	Src      string            `json:"src"`
	Content  portfolio.Project `json:"content"`
}

// PresetReply is a canned answer bound to the tool whose output accompanies it.
type PresetReply struct {
	Reply string     `json:"reply"`
	Tool  tools.Name `json:"tool"`
}

// QuestionGroup is a labelled list of suggested questions.
type QuestionGroup struct {
	Group     string   `json:"group"`
	Questions []string `json:"questions"`
}

// Parser is a read-only view over one portfolio. Every method is pure.
type Parser struct {
	cfg *portfolio.Config
}

// New creates a parser over a normalized copy of cfg. Blank fields render as
// empty or "N/A"; only a nil config is rejected.
func New(cfg *portfolio.Config) (p *Parser, err error) {
	if cfg == nil {
		err = errors.New("portfolio config is required")
		return p, err
	}

	p = &Parser{cfg: portfolio.Normalized(cfg)}
	return p, err
}

// Config returns the underlying portfolio.
func (p *Parser) Config() (cfg *portfolio.Config) {
	cfg = p.cfg
	return cfg
}

// SystemPrompt returns the interview persona prompt.
func (p *Parser) SystemPrompt() (prompt string) {
	prompt = buildSystemPrompt(p.cfg)
	return prompt
}

// ContactInfo returns the contact card. Socials without a URL are left out.
func (p *Parser) ContactInfo() (info ContactInfo) {
	personal := p.cfg.Personal
	social := p.cfg.Social

	candidates := []Social{
		{Name: "LinkedIn", URL: social.LinkedIn},
		{Name: "GitHub", URL: social.GitHub},
		{Name: "Website", URL: social.Website},
		{Name: "Twitter", URL: social.Twitter},
	}

	socials := make([]Social, 0, len(candidates))
	for _, s := range candidates {
		if s.URL != "" {
			socials = append(socials, s)
		}
	}

	info = ContactInfo{
		Name:    personal.Name,
		Email:   personal.Email,
		Phone:   personal.Phone,
		Handle:  personal.Handle,
		Socials: socials,
	}

	return info
}

// ProfileInfo returns the profile card.
func (p *Parser) ProfileInfo() (info ProfileInfo) {
	personal := p.cfg.Personal
	info = ProfileInfo{
		Name:        personal.Name,
		Location:    personal.Location,
		Description: personal.Bio,
		Src:         personal.Avatar,
		FallbackSrc: personal.FallbackAvatar,
	}
	return info
}

// SkillsData returns the non-empty skill buckets in display order.
func (p *Parser) SkillsData() (categories []SkillCategory) {
	skills := p.cfg.Skills

	all := []SkillCategory{
		{Category: "Programming Languages", Skills: skills.Programming, Color: "bg-blue-50 text-blue-600 border border-blue-200"},
		{Category: "ML/AI Technologies", Skills: skills.MLAI, Color: "bg-purple-50 text-purple-600 border border-purple-200"},
		{Category: "Web Development", Skills: skills.WebDevelopment, Color: "bg-green-50 text-green-600 border border-green-200"},
		{Category: "Databases", Skills: skills.Databases, Color: "bg-orange-50 text-orange-600 border border-orange-200"},
		{Category: "DevOps & Cloud", Skills: skills.DevOpsCloud, Color: "bg-emerald-50 text-emerald-600 border border-emerald-200"},
		{Category: "Soft Skills", Skills: skills.SoftSkills, Color: "bg-amber-50 text-amber-600 border border-amber-200"},
	}

	categories = make([]SkillCategory, 0, len(all))
	for _, c := range all {
		if len(c.Skills) > 0 {
			categories = append(categories, c)
		}
	}

	return categories
}

// ProjectData returns one card per project in source order.
func (p *Parser) ProjectData() (cards []ProjectCard) {
	cards = make([]ProjectCard, 0, len(p.cfg.Projects))
	for _, project := range p.cfg.Projects {
		src := portfolio.PlaceholderImage
		if len(project.Images) > 0 && project.Images[0].Src != "" {
			src = project.Images[0].Src
		}

		cards = append(cards, ProjectCard{
			Category: project.Category,
			Title:    project.Title,
			Src:      src,
			Content:  project,
		})
	}
	return cards
}

// PresetReplies returns the six canonical question replies.
func (p *Parser) PresetReplies() (replies map[string]PresetReply) {
	replies = map[string]PresetReply{
		QuestionWhoAreYou:    {Reply: p.cfg.Personal.Bio, Tool: tools.GetPresentation},
		QuestionSkills:       {Reply: "My technical expertise spans multiple domains...", Tool: tools.GetSkills},
		QuestionProjects:     {Reply: "Here are some of my key projects...", Tool: tools.GetProjects},
		QuestionResume:       {Reply: "Here's my resume with all the details...", Tool: tools.GetResume},
		QuestionContact:      {Reply: "Here's how you can reach me...", Tool: tools.GetContact},
		QuestionAvailability: {Reply: "Here are my current opportunities and availability...", Tool: tools.GetEntryLevel},
	}
	return replies
}

// Preset looks up a canonical question.
func (p *Parser) Preset(question string) (reply PresetReply, found bool) {
	reply, found = p.PresetReplies()[question]
	return reply, found
}

// ResumeDetails returns the resume record.
func (p *Parser) ResumeDetails() (resume portfolio.Resume) {
	resume = p.cfg.Resume
	return resume
}

// EntryLevelInfo returns the availability summary shown to recruiters.
func (p *Parser) EntryLevelInfo() (info string) {
	el := p.cfg.EntryLevel
	if !el.Seeking {
		info = NotSeekingMessage
		return info
	}

	info = fmt.Sprintf(`Here's what I'm looking for 👇

- 📌 **Status**: %s
- 🧑‍💻 **Focus**: %s
- 🛠️ **Working Style**: %s
- 🎯 **Goals**: %s

📬 **Contact me** via:
- Email: %s
- LinkedIn: %s
- GitHub: %s

%s ✌️`,
		el.CurrentStatus,
		joinOrNA(el.FocusAreas),
		el.WorkStyle,
		el.Goals,
		p.cfg.Personal.Email,
		p.cfg.Social.LinkedIn,
		p.cfg.Social.GitHub,
		el.Availability,
	)

	return info
}

// SuggestedQuestions returns the configured quick questions, skipping empty groups.
func (p *Parser) SuggestedQuestions() (groups []QuestionGroup) {
	pq := p.cfg.PresetQuestions

	all := []QuestionGroup{
		{Group: "me", Questions: pq.Me},
		{Group: "professional", Questions: pq.Professional},
		{Group: "projects", Questions: pq.Projects},
		{Group: "contact", Questions: pq.Contact},
		{Group: "fun", Questions: pq.Fun},
	}

	groups = make([]QuestionGroup, 0, len(all))
	for _, g := range all {
		if len(g.Questions) > 0 {
			groups = append(groups, g)
		}
	}

	return groups
}
