package skills

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func rated() []SkillCategory {
	cats := Init([]BaseCategory{
		{Name: "Testing", Skills: []string{"Jest", "Mocha", "Cypress"}},
		{Name: "HTML", Skills: []string{"SEO", "ARIA attributes"}},
		{Name: "Empty", Skills: []string{"Nothing"}},
	})
	cats[0].Skills[0].Rating = RatingOf(Expert)
	cats[0].Skills[1].Rating = RatingOf(HaveUsed)
	cats[0].Skills[2].Rating = RatingOf(Expert)
	cats[1].Skills[0].Rating = RatingOf(DontKnow)
	cats[1].Skills[1].Rating = RatingOf(KnowOf)
	cats[2].Skills[0].Rating = RatingOf(DontKnow)
	return cats
}

func TestBaseSkills(t *testing.T) {
	base := BaseSkills()
	if len(base) == 0 {
		t.Fatal("empty catalogue")
	}
	if base[0].Name != "Vanilla JS" || len(base[0].Skills) == 0 {
		t.Fatalf("first category %+v", base[0])
	}
	for _, c := range Init(base) {
		for _, s := range c.Skills {
			if s.Rating != nil {
				t.Fatalf("%s/%s is rated", c.Name, s.Name)
			}
		}
	}
}

func TestCompactExpand(t *testing.T) {
	cats := rated()
	compact := Compact(cats)

	if got := *compact[0].Skills[0].Rating; got != 4 {
		t.Fatalf("Expert compacts to %d", got)
	}
	if got := *compact[1].Skills[0].Rating; got != 0 {
		t.Fatalf("Dont know compacts to %d", got)
	}

	data, err := json.Marshal(compact)
	if err != nil {
		t.Fatal(err)
	}
	var back []CompactCategory
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(Expand(back), cats) {
		t.Fatalf("roundtrip mismatch: %s", data)
	}

	unrated := Init([]BaseCategory{{Name: "A", Skills: []string{"x"}}})
	data, _ = json.Marshal(Compact(unrated))
	if string(data) != `[{"name":"A","skills":[{"name":"x","rating":null}]}]` {
		t.Fatalf("unrated compacts to %s", data)
	}

	bad := 9
	got := Expand([]CompactCategory{{Name: "A", Skills: []CompactSkill{{Name: "x", Rating: &bad}}}})
	if got[0].Skills[0].Rating != nil {
		t.Fatal("out-of-range index expanded to a rating")
	}
}

func TestFormatResult(t *testing.T) {
	got := FormatResult(rated())
	want := []ResultCategory{
		{Category: "Testing", Levels: []ResultLevel{
			{Level: Expert, Skills: []string{"Jest", "Cypress"}},
			{Level: HaveUsed, Skills: []string{"Mocha"}},
		}},
		{Category: "HTML", Levels: []ResultLevel{
			{Level: KnowOf, Skills: []string{"ARIA attributes"}},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v", got)
	}
	if FormatResult(Init(BaseSkills())) != nil {
		t.Fatal("unrated catalogue produced cards")
	}
}

func TestSetRating(t *testing.T) {
	cats := rated()
	if err := SetRating(cats, "HTML", "SEO", RatingOf(Expert)); err != nil {
		t.Fatal(err)
	}
	if *cats[1].Skills[0].Rating != Expert {
		t.Fatal("rating not set")
	}
	if err := SetRating(cats, "HTML", "SEO", nil); err != nil || cats[1].Skills[0].Rating != nil {
		t.Fatalf("clear: %v", err)
	}

	for _, tc := range []struct {
		cat, skill string
		rating     *Rating
		want       error
	}{
		{"Nope", "SEO", nil, ErrUnknownCategory},
		{"HTML", "Nope", nil, ErrUnknownSkill},
		{"HTML", "SEO", RatingOf("Guru"), ErrUnknownRating},
	} {
		if err := SetRating(cats, tc.cat, tc.skill, tc.rating); !errors.Is(err, tc.want) {
			t.Errorf("SetRating(%s, %s): got %v, want %v", tc.cat, tc.skill, err, tc.want)
		}
	}
}
