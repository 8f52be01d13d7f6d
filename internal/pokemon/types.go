package pokemon

import "time"

// Stats holds the six base stats of a Pokemon.
type Stats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"specialAttack"`
	SpecialDefense int `json:"specialDefense"`
	Speed          int `json:"speed"`
}

// Pokemon is the normalized record built from a PokeAPI /pokemon response.
// Name is the lowercase canonical key, Types are ordered by slot and
// Abilities exclude hidden abilities.
type Pokemon struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Types     []string `json:"types"`
	Stats     Stats    `json:"stats"`
	Abilities []string `json:"abilities"`
}

// NamedResource is a name/url pair from PokeAPI listing endpoints.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Favorite is one entry of the favorites list.
type Favorite struct {
	PokemonID   int       `json:"pokemonId"`
	PokemonName string    `json:"pokemonName"`
	AddedAt     time.Time `json:"addedAt"`
}

// StatLine pairs a display label with a value; used wherever the six stats
// are rendered in order.
type StatLine struct {
	Label string
	Value int
}

// Lines returns the stats in display order.
func (s Stats) Lines() []StatLine {
	return []StatLine{
		{Label: "HP", Value: s.HP},
		{Label: "Attack", Value: s.Attack},
		{Label: "Defense", Value: s.Defense},
		{Label: "Special Attack", Value: s.SpecialAttack},
		{Label: "Special Defense", Value: s.SpecialDefense},
		{Label: "Speed", Value: s.Speed},
	}
}

// Sub returns the per-stat signed difference s - o.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		HP:             s.HP - o.HP,
		Attack:         s.Attack - o.Attack,
		Defense:        s.Defense - o.Defense,
		SpecialAttack:  s.SpecialAttack - o.SpecialAttack,
		SpecialDefense: s.SpecialDefense - o.SpecialDefense,
		Speed:          s.Speed - o.Speed,
	}
}
