// Package mood maps free-form mood words onto movie genre sets.
package mood

import (
	"sort"
	"strings"
)

// definition couples a mood's genre set with its human description.
type definition struct {
	genres      []string
	description string
}

// moods is the fixed mood->genre table. Genre names follow the catalog's
// vocabulary (TMDb genre names).
var moods = map[string]definition{
	"happy":       {genres: []string{"Comedy", "Music", "Animation"}, description: "Uplifting, fun, and feel-good"},
	"sad":         {genres: []string{"Drama", "Romance"}, description: "Emotional, moving, and cathartic"},
	"excited":     {genres: []string{"Action", "Adventure", "Science Fiction"}, description: "Thrilling, fast-paced, and energetic"},
	"thoughtful":  {genres: []string{"Drama", "Documentary", "History"}, description: "Deep, intellectual, and contemplative"},
	"scared":      {genres: []string{"Horror", "Thriller"}, description: "Scary, suspenseful, and intense"},
	"relaxed":     {genres: []string{"Comedy", "Romance", "Music"}, description: "Easy-going, comfortable, and pleasant"},
	"adventurous": {genres: []string{"Adventure", "Fantasy", "Science Fiction"}, description: "Epic, imaginative, and escapist"},
	"romantic":    {genres: []string{"Romance", "Comedy"}, description: "Heartwarming, sweet, and charming"},
	"nostalgic":   {genres: []string{"Drama", "History", "Family"}, description: "Classic, timeless, and sentimental"},
	"energetic":   {genres: []string{"Action", "Adventure", "Comedy"}, description: "Dynamic, lively, and stimulating"},
	"intense":     {genres: []string{"Thriller", "Horror"}, description: "Gripping, tense, and unrelenting"},
	// Direct genre-name moods.
	"comedy":      {genres: []string{"Comedy"}, description: "Comedies only"},
	"drama":       {genres: []string{"Drama"}, description: "Dramas only"},
	"documentary": {genres: []string{"Documentary"}, description: "Documentaries only"},
	"animation":   {genres: []string{"Animation"}, description: "Animated films only"},
}

// aliases folds common phrasings onto canonical moods.
var aliases = map[string]string{
	"cheerful": "happy", "joyful": "happy", "upbeat": "happy", "positive": "happy",
	"melancholy": "sad", "emotional": "sad", "tearjerker": "sad",
	"pumped": "excited", "hyped": "excited", "thrilled": "excited",
	"contemplative": "thoughtful", "philosophical": "thoughtful", "deep": "thoughtful", "intellectual": "thoughtful",
	"scary": "scared", "horror": "scared", "terrifying": "scared", "spooky": "scared",
	"chill": "relaxed", "calm": "relaxed", "easy": "relaxed", "lazy": "relaxed",
	"epic": "adventurous", "fantasy": "adventurous",
	"love": "romantic", "date": "romantic", "sweet": "romantic",
	"classic": "nostalgic", "retro": "nostalgic",
	"active": "energetic", "fun": "energetic", "wild": "energetic",
	"funny": "comedy",
}

// Normalize canonicalizes a mood word: trimmed, lowercased, aliases
// resolved. The second return is false when the mood has no mapping; such
// moods filter nothing.
func Normalize(raw string) (string, bool) {
	m := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := moods[m]; ok {
		return m, true
	}
	if canon, ok := aliases[m]; ok {
		return canon, true
	}
	return m, false
}

// WellFormed reports whether a raw mood is a plausible mood word at all.
// Mapped or not, a mood is only letters, spaces, and hyphens.
func WellFormed(raw string) bool {
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == ' ', r == '-':
		default:
			return false
		}
	}
	return true
}

// Genres returns the genre set for a canonical mood, nil for unmapped
// moods.
func Genres(mood string) []string {
	canon, ok := Normalize(mood)
	if !ok {
		return nil
	}
	return moods[canon].genres
}

// Description is a short human explanation of a mood's vibe.
type Description struct {
	Mood        string `json:"mood"`
	Description string `json:"description"`
}

// Available lists every canonical mood with its description, sorted for
// stable output.
func Available() []Description {
	out := make([]Description, 0, len(moods))
	for m, def := range moods {
		out = append(out, Description{Mood: m, Description: def.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mood < out[j].Mood })
	return out
}
