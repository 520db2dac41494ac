package service

import (
	"github.com/passgen/passgen-go/internal/generator"
	"github.com/passgen/passgen-go/internal/model"
)

// GeneratorService handles stateless password generation for the API.
type GeneratorService struct {
	source generator.Source
}

// NewGeneratorService creates a new GeneratorService drawing from src.
func NewGeneratorService(src generator.Source) *GeneratorService {
	return &GeneratorService{source: src}
}

// Generate produces a password based on the given request. A zero length
// means the widget default.
func (s *GeneratorService) Generate(req model.GenerateRequest) (model.GenerateResponse, error) {
	length := req.Length
	if length == 0 {
		length = generator.DefaultLength
	}
	if err := generator.Validate(length); err != nil {
		return model.GenerateResponse{}, err
	}

	password := generator.Generate(s.source, length, req.Options())

	return model.GenerateResponse{
		Password: password,
		Length:   len(password),
	}, nil
}
