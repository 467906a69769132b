package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentClassifier_Classify(t *testing.T) {
	classifier := NewIntentClassifier()

	tests := []struct {
		name    string
		message string
		want    Intent
	}{
		// greeting / help
		{"greeting", "Oi", Intent{Kind: IntentGreeting}},
		{"greeting with punctuation", "Olá, tudo bem?", Intent{Kind: IntentGreeting}},
		{"greeting time of day", "Bom dia!", Intent{Kind: IntentGreeting}},
		{"help", "ajuda", Intent{Kind: IntentHelp}},
		{"help phrase", "O que você faz?", Intent{Kind: IntentHelp}},

		// list / export / count
		{"list all", "Listar todos os leads", Intent{Kind: IntentListAll}},
		{"export all", "Exportar todos os leads para Excel", Intent{Kind: IntentExport}},
		{"export segment filter", "Exportar leads de tecnologia para excel",
			Intent{Kind: IntentExport, Filter: &Filter{Kind: FilterSegment, Term: "tecnologia"}}},
		{"export city filter", "baixar planilha de São Paulo",
			Intent{Kind: IntentExport, Filter: &Filter{Kind: FilterCity, Term: "são paulo"}}},
		{"count city keeps accents", "Quantos leads de Florianópolis?",
			Intent{Kind: IntentCount, Filter: &Filter{Kind: FilterCity, Term: "florianópolis"}}},
		{"count no filter", "Quantos leads temos?", Intent{Kind: IntentCount}},
		{"stats quick action", "Mostrar estatísticas da base", Intent{Kind: IntentCount}},

		// name lookup
		{"who is", "Quem é Maria Souza?", Intent{Kind: IntentSearchName, Term: "Maria Souza"}},
		{"who is with article", "quem e o Carlos", Intent{Kind: IntentSearchName, Term: "Carlos"}},
		{"data of", "Me mostra os dados da Ana Lima", Intent{Kind: IntentSearchName, Term: "Ana Lima"}},
		{"contact data of", "dados de contato do Pedro Alves", Intent{Kind: IntentSearchName, Term: "Pedro Alves"}},
		{"called", "tem alguém chamado Rafael?", Intent{Kind: IntentSearchName, Term: "Rafael"}},
		{"phone of", "Qual o telefone do João Silva?", Intent{Kind: IntentSearchName, Term: "João Silva"}},
		{"email of", "email da Fernanda", Intent{Kind: IntentSearchName, Term: "Fernanda"}},
		{"leads of person", "leads de Mariana", Intent{Kind: IntentSearchName, Term: "Mariana"}},
		{"surname is a city", "Quem é João dos Santos?", Intent{Kind: IntentSearchName, Term: "João dos Santos"}},
		{"phone of surname city", "Telefone do Pedro Natal", Intent{Kind: IntentSearchName, Term: "Pedro Natal"}},
		{"data of surname segment", "dados da Carla Moda", Intent{Kind: IntentSearchName, Term: "Carla Moda"}},
		{"phone mid sentence", "Preciso do telefone do João Silva", Intent{Kind: IntentSearchName, Term: "João Silva"}},
		{"email mid sentence", "Você tem o email da Maria Souza?", Intent{Kind: IntentSearchName, Term: "Maria Souza"}},
		{"search verb", "Buscar Maria Souza", Intent{Kind: IntentSearchName, Term: "Maria Souza"}},
		{"look for verb", "Procurar Carlos Souza", Intent{Kind: IntentSearchName, Term: "Carlos Souza"}},
		{"search verb with phone", "Busca o telefone do João", Intent{Kind: IntentSearchName, Term: "João"}},

		// city guard falls through to the city rule
		{"leads of city", "Leads de Curitiba", Intent{Kind: IntentSearchCity, Term: "curitiba"}},
		{"leads of city accents", "Leads de Florianópolis", Intent{Kind: IntentSearchCity, Term: "florianópolis"}},
		{"city anywhere", "alguém em porto alegre?", Intent{Kind: IntentSearchCity, Term: "porto alegre"}},
		{"who is from city", "Quem é de Curitiba?", Intent{Kind: IntentSearchCity, Term: "curitiba"}},
		{"search leads in city", "Buscar leads em Santos", Intent{Kind: IntentSearchCity, Term: "santos"}},
		{"segment and city", "leads de tecnologia em Florianópolis", Intent{Kind: IntentSearchCity, Term: "florianópolis"}},

		// segment
		{"leads of segment", "leads de tecnologia", Intent{Kind: IntentSearchSegment, Term: "tecnologia"}},
		{"segment accents", "clientes da área de saúde", Intent{Kind: IntentSearchSegment, Term: "saúde"}},
		{"search segment", "procurar por tecnologia", Intent{Kind: IntentSearchSegment, Term: "tecnologia"}},
		{"info about segment", "informações sobre educação", Intent{Kind: IntentSearchSegment, Term: "educação"}},

		// create email
		{"create email", "Criar email para Carlos Souza", Intent{Kind: IntentCreateEmail, Term: "Carlos Souza"}},
		{"create approach", "escreva uma mensagem de abordagem para a Julia", Intent{Kind: IntentCreateEmail, Term: "Julia"}},
		{"create email no name", "crie um email de prospecção", Intent{Kind: IntentCreateEmail}},
		{"create email with purpose", "Criar email para o Carlos para marcar reunião", Intent{Kind: IntentCreateEmail, Term: "Carlos"}},
		{"create email with topic", "escreva um email pra Ana sobre o evento", Intent{Kind: IntentCreateEmail, Term: "Ana"}},
		{"create email comma", "Criar email para Bruno Lima, diretor comercial", Intent{Kind: IntentCreateEmail, Term: "Bruno Lima"}},

		// contact lookup
		{"how to talk", "Como falar com Roberto Dias?", Intent{Kind: IntentContactLookup, Term: "Roberto Dias"}},
		{"contact of", "contato do Bruno", Intent{Kind: IntentContactLookup, Term: "Bruno"}},

		// general
		{"general", "quem gosta de inovação?", Intent{Kind: IntentGeneralQuery, Term: "quem gosta de inovação?"}},
		{"empty", "", Intent{Kind: IntentGeneralQuery, Term: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.message))
		})
	}
}

func TestIntentClassifier_Deterministic(t *testing.T) {
	classifier := NewIntentClassifier()
	inputs := []string{"Quem é Maria?", "Leads de Curitiba", "qualquer coisa", "Exportar excel"}

	for _, in := range inputs {
		first := classifier.Classify(in)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, classifier.Classify(in))
		}
	}
}

func TestIntentClassifier_GreetingIsWholeString(t *testing.T) {
	classifier := NewIntentClassifier()

	got := classifier.Classify("oi, tem alguém chamado Rafael?")
	assert.Equal(t, Intent{Kind: IntentSearchName, Term: "Rafael"}, got)
}

func TestIntentClassifier_ShortCaptureSkipped(t *testing.T) {
	classifier := NewIntentClassifier()

	got := classifier.Classify("quem é X")
	assert.NotEqual(t, IntentSearchName, got.Kind)
}

func TestIntentClassifier_RuleOrder(t *testing.T) {
	names := NewIntentClassifier().RuleNames()
	require.Len(t, names, 10)
	assert.Equal(t, []string{
		"greeting", "help", "list_all", "export", "count",
		"name_lookup", "city", "segment", "create_email", "contact_lookup",
	}, names)
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "greeting", Intent{Kind: IntentGreeting}.String())
	assert.Equal(t, `search_city{"curitiba"}`, Intent{Kind: IntentSearchCity, Term: "curitiba"}.String())
	assert.Equal(t, `count{city: "florianópolis"}`,
		Intent{Kind: IntentCount, Filter: &Filter{Kind: FilterCity, Term: "florianópolis"}}.String())
}
