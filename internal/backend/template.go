package backend

import (
	"context"
	"strings"
)

const (
	instructionMarker = "### Instruction:"
	responseMarker    = "### Response:"
)

// FormatInstruction renders prompt in the two-section instruction template.
func FormatInstruction(prompt string) string {
	return instructionMarker + "\n" + prompt + "\n\n" + responseMarker + "\n"
}

// ExtractResponse returns the text after the last response marker, trimmed.
// Models that do not echo the prompt return plain text, which is kept whole.
func ExtractResponse(generated string) string {
	if i := strings.LastIndex(generated, responseMarker); i >= 0 {
		generated = generated[i+len(responseMarker):]
	}
	return strings.TrimSpace(generated)
}

// Instruct wraps b so every prompt is dispatched in the instruction template
// and only the response section is returned.
func Instruct(b TextBackend) TextBackend {
	return &instructed{next: b}
}

type instructed struct{ next TextBackend }

func (i *instructed) Name() string { return i.next.Name() }

func (i *instructed) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	out, err := i.next.Generate(ctx, FormatInstruction(prompt), p)
	if err != nil {
		return "", err
	}
	return ExtractResponse(out), nil
}
