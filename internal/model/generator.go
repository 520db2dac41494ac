package model

// GenerationOptions selects which optional character sets join the letter pool.
type GenerationOptions struct {
	IncludeNumbers           bool `json:"numbers"`
	IncludeSpecialCharacters bool `json:"characters"`
}

// GenerateRequest represents a stateless password generation request.
type GenerateRequest struct {
	Length     int  `json:"length"`
	Numbers    bool `json:"numbers"`
	Characters bool `json:"characters"`
}

// Options returns the generation options carried by the request.
func (r GenerateRequest) Options() GenerationOptions {
	return GenerationOptions{
		IncludeNumbers:           r.Numbers,
		IncludeSpecialCharacters: r.Characters,
	}
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
}
