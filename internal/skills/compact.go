package skills

// CompactSkill stores the rating as its index in Ratings to keep the
// payload hidden in an image small.
type CompactSkill struct {
	Name   string `json:"name"`
	Rating *int   `json:"rating"`
}

type CompactCategory struct {
	Name   string         `json:"name"`
	Skills []CompactSkill `json:"skills"`
}

// Compact maps every rating to its index. Unrated skills stay nil.
func Compact(categories []SkillCategory) []CompactCategory {
	out := make([]CompactCategory, len(categories))
	for i, c := range categories {
		skills := make([]CompactSkill, len(c.Skills))
		for j, s := range c.Skills {
			skills[j] = CompactSkill{Name: s.Name}
			if s.Rating != nil {
				if idx := s.Rating.Index(); idx >= 0 {
					skills[j].Rating = &idx
				}
			}
		}
		out[i] = CompactCategory{Name: c.Name, Skills: skills}
	}
	return out
}

// Expand reverses Compact. Indexes outside Ratings come back unrated.
func Expand(categories []CompactCategory) []SkillCategory {
	out := make([]SkillCategory, len(categories))
	for i, c := range categories {
		skills := make([]Skill, len(c.Skills))
		for j, s := range c.Skills {
			skills[j] = Skill{Name: s.Name}
			if s.Rating != nil && *s.Rating >= 0 && *s.Rating < len(Ratings) {
				r := Ratings[*s.Rating]
				skills[j].Rating = &r
			}
		}
		out[i] = SkillCategory{Name: c.Name, Skills: skills}
	}
	return out
}
