// Package skills holds the rating model: the skill catalogue, the user's
// ratings, the compact numeric form that is hidden in exported images and
// the per-level grouping used to draw them.
package skills

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

// Rating is how well a skill is known.
type Rating string

const (
	DontKnow    Rating = "Dont know"
	KnowOf      Rating = "Know of"
	HaveUsed    Rating = "Have used"
	Experienced Rating = "Experienced"
	Expert      Rating = "Expert"
)

// Ratings in ascending order. The index of a rating is its compact form.
var Ratings = []Rating{DontKnow, KnowOf, HaveUsed, Experienced, Expert}

// Index returns the position of r in Ratings, or -1.
func (r Rating) Index() int {
	for i, v := range Ratings {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of Ratings.
func (r Rating) Valid() bool { return r.Index() >= 0 }

var (
	ErrUnknownCategory = errors.New("skills: unknown category")
	ErrUnknownSkill    = errors.New("skills: unknown skill")
	ErrUnknownRating   = errors.New("skills: unknown rating")
)

// Skill is one rated skill. A nil Rating means it has not been rated.
type Skill struct {
	Name   string  `json:"name"`
	Rating *Rating `json:"rating"`
}

// SkillCategory groups skills under a heading.
type SkillCategory struct {
	Name   string  `json:"name"`
	Skills []Skill `json:"skills"`
}

// BaseCategory is a catalogue entry: a heading and the skill names under it.
type BaseCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

//go:embed base_skills.json
var baseSkillsJSON []byte

// BaseSkills returns the built-in catalogue.
func BaseSkills() []BaseCategory {
	var out []BaseCategory
	if err := json.Unmarshal(baseSkillsJSON, &out); err != nil {
		panic(fmt.Sprintf("skills: embedded catalogue: %v", err))
	}
	return out
}

// Init builds unrated categories from a catalogue.
func Init(base []BaseCategory) []SkillCategory {
	out := make([]SkillCategory, len(base))
	for i, b := range base {
		skills := make([]Skill, len(b.Skills))
		for j, name := range b.Skills {
			skills[j] = Skill{Name: name}
		}
		out[i] = SkillCategory{Name: b.Name, Skills: skills}
	}
	return out
}

// SetRating rates one skill in place. A nil rating clears it.
func SetRating(categories []SkillCategory, category, skill string, rating *Rating) error {
	if rating != nil && !rating.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRating, *rating)
	}
	for i := range categories {
		if categories[i].Name != category {
			continue
		}
		for j := range categories[i].Skills {
			if categories[i].Skills[j].Name == skill {
				categories[i].Skills[j].Rating = rating
				return nil
			}
		}
		return fmt.Errorf("%w: %q in %q", ErrUnknownSkill, skill, category)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// RatingOf is a convenience for taking the address of a rating constant.
func RatingOf(r Rating) *Rating { return &r }
