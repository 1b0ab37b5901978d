package imagegen

// Style is one entry of the art style catalogue.
type Style struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Preview string `json:"preview"`
}

// DefaultStyle is used when a request names no style.
const DefaultStyle = "cyberpunk"

var catalogue = []Style{
	{ID: "cyberpunk", Name: "Cyberpunk", Preview: "Neon-lit futuristic cityscape"},
	{ID: "anime", Name: "Anime", Preview: "Japanese animation style artwork"},
	{ID: "photorealistic", Name: "Photorealistic", Preview: "Ultra-realistic digital photography"},
	{ID: "abstract", Name: "Abstract", Preview: "Modern abstract digital art"},
	{ID: "fantasy", Name: "Fantasy", Preview: "Magical fantasy world artwork"},
	{ID: "minimalist", Name: "Minimalist", Preview: "Clean and simple design"},
}

// Styles returns the catalogue in display order.
func Styles() []Style {
	out := make([]Style, len(catalogue))
	copy(out, catalogue)
	return out
}

// LookupStyle finds a style by ID.
func LookupStyle(id string) (Style, bool) {
	for _, s := range catalogue {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}
