package entity

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Color      Color      `json:"color"`
	IsHost     bool       `json:"isHost"`
	IsAI       bool       `json:"isAI"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Connected  bool       `json:"connected"`
}

func NewPlayer(id, name string, color Color, isHost bool) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Color:  color,
		IsHost: isHost,
	}
}

// NewAIPlayer creates a computer-controlled player. AI players count as
// connected for their whole lifetime.
func NewAIPlayer(id, name string, color Color, difficulty Difficulty) *Player {
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	return &Player{
		ID:         id,
		Name:       name,
		Color:      color,
		IsAI:       true,
		Difficulty: difficulty,
		Connected:  true,
	}
}
