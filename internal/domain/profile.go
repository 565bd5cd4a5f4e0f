package domain

// ProfileFacts is the read-only knowledge base about the site owner. It is
// loaded once at startup and shared by the page API and the chat relay.
type ProfileFacts struct {
	Name        string               `json:"name" yaml:"name"`
	Title       string               `json:"title" yaml:"title"`
	Intro       string               `json:"intro" yaml:"intro"`
	Bio         string               `json:"bio" yaml:"bio"`
	Skills      []string             `json:"skills" yaml:"skills"`
	Projects    []Project            `json:"projects" yaml:"projects"`
	Experience  []Experience         `json:"experience" yaml:"experience"`
	Education   []Education          `json:"education" yaml:"education"`
	Contact     ContactInfo          `json:"contact" yaml:"contact"`
	Languages   []string             `json:"languages" yaml:"languages"`
	Interests   []string             `json:"interests" yaml:"interests"`
	Suggestions []SuggestionCategory `json:"suggestions" yaml:"suggestions"`
}

type Project struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Link         string   `json:"link,omitempty" yaml:"link,omitempty"`
	Technologies []string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
}

type Experience struct {
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	Period      string `json:"period" yaml:"period"`
	Description string `json:"description" yaml:"description"`
}

type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Period      string `json:"period" yaml:"period"`
	Description string `json:"description" yaml:"description"`
}

type ContactInfo struct {
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty" yaml:"github,omitempty"`
}
