package generator

import (
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/passgen/passgen-go/internal/model"
)

const (
	letterChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	numberChars  = "0123456789"
	specialChars = "!@#$%^&*()"

	MinLength     = 6
	MaxLength     = 100
	DefaultLength = 8
)

var ErrLengthOutOfRange = errors.New("password length must be between 6 and 100")

// Source yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns the process-wide pseudo-random source. It is not
// suitable for secrets that need cryptographic unpredictability.
func DefaultSource() Source {
	return globalSource{}
}

// Pool returns the characters eligible for selection under opts. Letters are
// always present; digits and specials are appended in that order.
func Pool(opts model.GenerationOptions) string {
	var sb strings.Builder
	sb.WriteString(letterChars)
	if opts.IncludeNumbers {
		sb.WriteString(numberChars)
	}
	if opts.IncludeSpecialCharacters {
		sb.WriteString(specialChars)
	}
	return sb.String()
}

// Generate draws length characters independently and uniformly from the pool
// selected by opts. Repeats are allowed. A non-positive length yields "".
func Generate(src Source, length int, opts model.GenerationOptions) string {
	if length <= 0 {
		return ""
	}
	pool := Pool(opts)
	result := make([]byte, length)
	for i := range result {
		result[i] = pool[src.IntN(len(pool))]
	}
	return string(result)
}

// Clamp forces length into [MinLength, MaxLength].
func Clamp(length int) int {
	return min(max(length, MinLength), MaxLength)
}

// Validate reports whether length is an accepted password length.
func Validate(length int) error {
	if length < MinLength || length > MaxLength {
		return ErrLengthOutOfRange
	}
	return nil
}
