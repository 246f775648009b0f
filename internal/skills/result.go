package skills

// ResultLevel lists the skills of one category that share a rating.
type ResultLevel struct {
	Level  Rating   `json:"level"`
	Skills []string `json:"skills"`
}

// ResultCategory is one card of the exported image.
type ResultCategory struct {
	Category string        `json:"category"`
	Levels   []ResultLevel `json:"levels"`
}

// FormatResult groups rated skills per level, best level first. "Dont know"
// is never shown; empty levels and categories are dropped.
func FormatResult(categories []SkillCategory) []ResultCategory {
	var out []ResultCategory
	for _, c := range categories {
		var levels []ResultLevel
		for i := len(Ratings) - 1; i >= 1; i-- {
			level := Ratings[i]
			var names []string
			for _, s := range c.Skills {
				if s.Rating != nil && *s.Rating == level {
					names = append(names, s.Name)
				}
			}
			if len(names) > 0 {
				levels = append(levels, ResultLevel{Level: level, Skills: names})
			}
		}
		if len(levels) > 0 {
			out = append(out, ResultCategory{Category: c.Name, Levels: levels})
		}
	}
	return out
}
