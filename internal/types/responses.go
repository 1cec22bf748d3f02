package types

type UserResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

type ProfileResponse struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	Bio           string   `json:"bio"`
	PhotoURL      string   `json:"photo_url"`
	Department    string   `json:"department"`
	ResearchAreas []string `json:"research_areas"`
	MaxStudents   int      `json:"max_students"`
}
