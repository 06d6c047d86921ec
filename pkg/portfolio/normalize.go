package portfolio

import (
	"slices"
	"strings"
)

// Normalize resolves every optional field to its default once, right after
// decoding. Nil lists become empty lists and strings are trimmed, so readers
// never need fallback logic of their own.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	p := &cfg.Personal
	trimAll(&p.Name, &p.Title, &p.Email, &p.Phone, &p.Handle, &p.Bio, &p.Avatar, &p.FallbackAvatar,
		&p.Location.Current, &p.Location.Timezone)
	p.Location.PreferredLocations = list(p.Location.PreferredLocations)

	e := &cfg.Education
	trimAll(&e.Current.Degree, &e.Current.Institution, &e.Current.Duration, &e.Current.GraduationDate)
	e.Achievements = list(e.Achievements)

	if cfg.Experience == nil {
		cfg.Experience = []Experience{}
	}
	for i := range cfg.Experience {
		exp := &cfg.Experience[i]
		trimAll(&exp.Company, &exp.Position, &exp.Type, &exp.Duration, &exp.Description)
		exp.Technologies = list(exp.Technologies)
	}

	s := &cfg.Skills
	s.Programming = list(s.Programming)
	s.MLAI = list(s.MLAI)
	s.WebDevelopment = list(s.WebDevelopment)
	s.Databases = list(s.Databases)
	s.DevOpsCloud = list(s.DevOpsCloud)
	s.BigData = list(s.BigData)
	s.SoftSkills = list(s.SoftSkills)

	if cfg.Projects == nil {
		cfg.Projects = []Project{}
	}
	for i := range cfg.Projects {
		proj := &cfg.Projects[i]
		trimAll(&proj.Title, &proj.Category, &proj.Description, &proj.Date, &proj.Status)
		proj.TechStack = list(proj.TechStack)
		if proj.Links == nil {
			proj.Links = []ProjectLink{}
		}
		if proj.Images == nil {
			proj.Images = []ProjectImage{}
		}
	}

	so := &cfg.Social
	trimAll(&so.LinkedIn, &so.GitHub, &so.Website, &so.Twitter)

	el := &cfg.EntryLevel
	trimAll(&el.CurrentStatus, &el.Availability, &el.WorkStyle, &el.Goals)
	el.FocusAreas = list(el.FocusAreas)

	pe := &cfg.Personality
	trimAll(&pe.WorkingStyle, &pe.Motivation)
	pe.Traits = list(pe.Traits)
	pe.Interests = list(pe.Interests)
	pe.FunFacts = list(pe.FunFacts)

	cfg.Chatbot.Topics = list(cfg.Chatbot.Topics)

	q := &cfg.PresetQuestions
	q.Me = list(q.Me)
	q.Professional = list(q.Professional)
	q.Projects = list(q.Projects)
	q.Contact = list(q.Contact)
	q.Fun = list(q.Fun)
}

// Normalized returns a normalized copy of cfg. The caller's document is left
// untouched.
func Normalized(cfg *Config) (out *Config) {
	c := *cfg
	c.Experience = slices.Clone(cfg.Experience)
	c.Projects = slices.Clone(cfg.Projects)
	Normalize(&c)
	out = &c
	return out
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// list returns a non-nil copy without blank entries.
func list(in []string) (out []string) {
	out = make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
