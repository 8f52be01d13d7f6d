// Package format renders Pokemon records as markdown text for tool output.
package format

import (
	"fmt"
	"strings"
	"time"

	"pokedex-mcp/internal/pokemon"
)

const footer = "*Data cached for performance*"

// Single renders one Pokemon.
func Single(p pokemon.Pokemon) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", strings.ToUpper(p.Name))
	writeBody(&b, p)
	b.WriteString(footer)
	return b.String()
}

func writeBody(b *strings.Builder, p pokemon.Pokemon) {
	fmt.Fprintf(b, "**Types:** %s\n\n", joinOrNone(p.Types, ", "))
	b.WriteString("**Stats:**\n")
	for _, l := range p.Stats.Lines() {
		fmt.Fprintf(b, "- %s: %d\n", l.Label, l.Value)
	}
	fmt.Fprintf(b, "\n**Abilities:** %s\n\n", joinOrNone(p.Abilities, ", "))
}

// Comparison renders a side-by-side comparison of a and b. Two records with
// the same name produce the identical variant without a difference table.
func Comparison(a, b pokemon.Pokemon) string {
	if a.Name == b.Name {
		return identical(a)
	}

	nameA, nameB := strings.ToUpper(a.Name), strings.ToUpper(b.Name)
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** vs **%s**\n\n", nameA, nameB)

	sb.WriteString("## Stats Difference\n")
	writeStatsTable(&sb, nameA, nameB, a.Stats, b.Stats)

	sb.WriteString("\n## Type Comparison\n")
	writeSetComparison(&sb, a.Types, b.Types, "/", "types")

	sb.WriteString("\n## Ability Comparison\n")
	writeSetComparison(&sb, a.Abilities, b.Abilities, ", ", "abilities")

	sb.WriteString("\n")
	sb.WriteString(footer)
	return sb.String()
}

func identical(p pokemon.Pokemon) string {
	name := strings.ToUpper(p.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** vs **%s**\n\n", name, name)
	b.WriteString("These are identical Pokemon - no comparison needed!\n\n")
	writeBody(&b, p)
	b.WriteString(footer)
	return b.String()
}

func writeStatsTable(b *strings.Builder, nameA, nameB string, a, s pokemon.Stats) {
	fmt.Fprintf(b, "| Stat | %s | %s | Difference |\n", nameA, nameB)
	b.WriteString("|------|------|------|------------|\n")
	left, right, diff := a.Lines(), s.Lines(), a.Sub(s).Lines()
	for i := range left {
		fmt.Fprintf(b, "| %s | %d | %d | %s |\n", left[i].Label, left[i].Value, right[i].Value, Signed(diff[i].Value))
	}
}

// Signed renders n with an explicit + when positive.
func Signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func writeSetComparison(b *strings.Builder, a, s []string, sep, noun string) {
	fmt.Fprintf(b, "**%s** vs **%s**\n\n", joinOrNone(a, sep), joinOrNone(s, sep))
	cmp := CompareSets(a, s)
	if len(cmp.Common) > 0 {
		fmt.Fprintf(b, "**Common %s:** %s\n", noun, strings.Join(cmp.Common, ", "))
	}
	if len(cmp.OnlyFirst) > 0 {
		fmt.Fprintf(b, "**Unique to first Pokemon:** %s\n", strings.Join(cmp.OnlyFirst, ", "))
	}
	if len(cmp.OnlySecond) > 0 {
		fmt.Fprintf(b, "**Unique to second Pokemon:** %s\n", strings.Join(cmp.OnlySecond, ", "))
	}
}

// SetComparison splits two string lists into shared and exclusive members.
type SetComparison struct {
	Common     []string `json:"common"`
	OnlyFirst  []string `json:"onlyFirst"`
	OnlySecond []string `json:"onlySecond"`
}

// CompareSets compares a and b as sets. Common and OnlyFirst keep a's order,
// OnlySecond keeps b's. Duplicates are reported once.
func CompareSets(a, b []string) SetComparison {
	inA := make(map[string]bool, len(a))
	for _, v := range a {
		inA[v] = true
	}
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}

	var out SetComparison
	seen := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		if seen[v] {
			continue
		}
		seen[v] = true
		if inB[v] {
			out.Common = append(out.Common, v)
		} else {
			out.OnlyFirst = append(out.OnlyFirst, v)
		}
	}
	for _, v := range b {
		if inA[v] || seen[v] {
			continue
		}
		seen[v] = true
		out.OnlySecond = append(out.OnlySecond, v)
	}
	return out
}

func joinOrNone(items []string, sep string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, sep)
}

// Listing renders a titled, numbered list of names.
func Listing(title string, items []pokemon.NamedResource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%d)\n\n", title, len(items))
	if len(items) == 0 {
		b.WriteString("No Pokemon found.\n")
		return b.String()
	}
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Name)
	}
	return b.String()
}

// Favorites renders the favorites list, oldest first.
func Favorites(favs []pokemon.Favorite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Favorites** (%d)\n\n", len(favs))
	if len(favs) == 0 {
		b.WriteString("No favorites yet.\n")
		return b.String()
	}
	for _, f := range favs {
		fmt.Fprintf(&b, "- #%d %s (added %s)\n", f.PokemonID, f.PokemonName, f.AddedAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}
