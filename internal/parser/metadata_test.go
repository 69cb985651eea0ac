package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMeta    map[string]string
		wantContent string
	}{
		{
			name:        "simple headers",
			input:       "---\nKey1: Value1\nKey2: Value2\n---\n\nHere is the content.",
			wantMeta:    map[string]string{"Key1": "Value1", "Key2": "Value2"},
			wantContent: "Here is the content.",
		},
		{
			name:        "no front matter",
			input:       "Key: Value\n\nContent started.\nKey2: Value2 should be part of content",
			wantMeta:    map[string]string{},
			wantContent: "Key: Value\n\nContent started.\nKey2: Value2 should be part of content",
		},
		{
			name:        "empty lines in header",
			input:       "---\nKey: Value\n\nKey2: Value2\n---\nContent text.",
			wantMeta:    map[string]string{"Key": "Value", "Key2": "Value2"},
			wantContent: "Content text.",
		},
		{
			name:        "invalid header lines ignored",
			input:       "---\nKey: Value\nInvalidHeaderLine\n: no key\n---\nContent text.",
			wantMeta:    map[string]string{"Key": "Value"},
			wantContent: "Content text.",
		},
		{
			name:        "empty input",
			input:       "",
			wantMeta:    map[string]string{},
			wantContent: "",
		},
		{
			name:        "only headers",
			input:       "---\nKey: Value\nKey2: Value2\n---",
			wantMeta:    map[string]string{"Key": "Value", "Key2": "Value2"},
			wantContent: "",
		},
		{
			name:        "keys and values trimmed",
			input:       "---\nKey  :   Value  \n---\n\nContent",
			wantMeta:    map[string]string{"Key": "Value"},
			wantContent: "Content",
		},
		{
			name:        "value keeps later colons",
			input:       "---\nurl: http://example.com\n---\nbody",
			wantMeta:    map[string]string{"url": "http://example.com"},
			wantContent: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseMetadata(tt.input)
			assert.Equal(t, tt.wantMeta, result.Meta)
			assert.Equal(t, tt.wantContent, result.Content)
		})
	}
}

func TestParseMetadata_Idempotent(t *testing.T) {
	first := ParseMetadata("---\nname: billing\n---\n### UseCase: a\n#### Description\nd\n")
	second := ParseMetadata(first.Content)

	assert.Empty(t, second.Meta)
	assert.Equal(t, first.Content, second.Content)
}
