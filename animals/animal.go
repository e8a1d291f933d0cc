package animals

// PlaceholderImage is shown for animals registered without a photo
const PlaceholderImage = "https://placehold.co/600x400?text=Sem+Foto"

// Animal is both the list summary and the detail record served by /api/animals.
type Animal struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Species     string `json:"species,omitempty"`
	Sex         string `json:"sex,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	OwnerID     *int   `json:"owner_id,omitempty"`
}

// Image returns the URL to render, falling back to the placeholder
func (a Animal) Image() string {
	if a.ImageURL != "" {
		return a.ImageURL
	}
	return PlaceholderImage
}

// SexLabel renders the sex with its symbol ("♂ Macho" / "♀ Fêmea")
func (a Animal) SexLabel() string {
	switch a.Sex {
	case "macho", "Macho":
		return "♂ Macho"
	case "fêmea", "Fêmea", "femea":
		return "♀ Fêmea"
	default:
		return ""
	}
}
