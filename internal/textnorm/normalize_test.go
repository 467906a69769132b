package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São Paulo", "sao paulo"},
		{"sao paulo", "sao paulo"},
		{"  FLORIANÓPOLIS  ", "florianopolis"},
		{"Educação Física", "educacao fisica"},
		{"João da Silva", "joao da silva"},
		{"Ação, Coração!", "acao, coracao!"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"São Paulo", "Ñandú Çedilha", "  Médico Veterinário ", "plain", ""}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalize_AccentInsensitiveEquality(t *testing.T) {
	assert.Equal(t, Normalize("São Paulo"), Normalize("sao paulo"))
	assert.Equal(t, Normalize("Florianópolis"), Normalize("FLORIANOPOLIS"))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"joao", "silva"}, Tokens("João Silva", 1))
	assert.Equal(t, []string{"leads", "florianopolis"}, Tokens("leads de Florianópolis?", 2))
	assert.Empty(t, Tokens("  ", 1))
	assert.Empty(t, Tokens("a e o", 1))
}

func TestFindPhrase(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		phrase string
		want   string
		found  bool
	}{
		{"accent preserved", "Quantos leads de Florianópolis?", "florianopolis", "florianópolis", true},
		{"multi word", "Leads em São Paulo hoje", "sao paulo", "são paulo", true},
		{"word boundary", "Paulista avenue", "paulo", "", false},
		{"no substring inside word", "sonatal", "natal", "", false},
		{"empty phrase", "anything", "", "", false},
		{"end of text", "exportar leads de curitiba", "curitiba", "curitiba", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindPhrase(tt.text, tt.phrase)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("oi, tudo bem?", "tudo bem"))
	assert.False(t, ContainsPhrase("oi", "tudo bem"))
}
