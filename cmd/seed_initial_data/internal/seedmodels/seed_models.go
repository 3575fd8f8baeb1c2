package seedmodels

// SeedEssay is an essay stored for a seed user. It is left in the evaluating
// state; evaluation happens through the API.
type SeedEssay struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SeedUser defines a password account in the JSON seed file.
type SeedUser struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Location string      `json:"location"`
	Bio      string      `json:"bio"`
	Essays   []SeedEssay `json:"essays"`
}

// SeedData is the whole seed file. Friendships are pairs of emails.
type SeedData struct {
	Users       []SeedUser  `json:"users"`
	Friendships [][2]string `json:"friendships"`
}
