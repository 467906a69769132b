package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/generation"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/retrieval"
)

const composerFixture = `[
  {"dados_basicos": {"nome_completo": "Maria Souza Lima", "empresa": "Lima Consultores", "cargo": "Sócia", "segmento": "Consultoria"},
   "contato": {"cidade": "Florianópolis", "estado": "SC", "email_corporativo": "maria@lima.com"}},
  {"dados_basicos": {"nome_completo": "Carlos Souza", "empresa": "Souza Varejo", "cargo": "CEO", "segmento": "Varejo"},
   "contato": {"cidade": "Curitiba", "estado": "PR", "email_pessoal": "carlos@souza.com", "telefone_direto": "(41) 3333-0000"},
   "alma": {"motivadores": ["crescimento"]}},
  {"dados_basicos": {"nome_completo": "Ana Costa", "segmento": "Saúde"},
   "contato": {"cidade": "Curitiba"}},
  {"dados_basicos": {"nome_completo": "Pedro Alves", "segmento": "Marketing"},
   "contato": {"cidade": "Curitiba"}},
  {"dados_basicos": {"nome_completo": "Julia Ramos", "segmento": "Educação"},
   "contato": {"cidade": "São Paulo"},
   "redes_sociais": {"linkedin": "linkedin.com/in/juliaramos"},
   "perfil_psicologico": {"resumo": "Apaixonada por sustentabilidade"}}
]`

type countingClassifier struct {
	inner Classifier
	calls int
}

func (c *countingClassifier) Classify(raw string) retrieval.Intent {
	c.calls++
	return c.inner.Classify(raw)
}

// countingSearcher counts search calls. Stats is an aggregate read and is
// not counted.
type countingSearcher struct {
	*retrieval.Index
	searches int
}

func (s *countingSearcher) ByName(term string) []leads.Lead {
	s.searches++
	return s.Index.ByName(term)
}

func (s *countingSearcher) ByCity(term string) []leads.Lead {
	s.searches++
	return s.Index.ByCity(term)
}

func (s *countingSearcher) BySegment(term string) []leads.Lead {
	s.searches++
	return s.Index.BySegment(term)
}

func (s *countingSearcher) General(term string) []leads.Lead {
	s.searches++
	return s.Index.General(term)
}

func (s *countingSearcher) All() []leads.Lead {
	s.searches++
	return s.Index.All()
}

type fakeGenerator struct {
	reply    string
	err      error
	requests []generation.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	g.requests = append(g.requests, req)
	return g.reply, g.err
}

type fakeEncoder struct {
	calls int
	rows  []export.Row
	err   error
}

func (e *fakeEncoder) Encode(_ context.Context, rows []export.Row) (*export.File, error) {
	e.calls++
	e.rows = rows
	if e.err != nil {
		return nil, e.err
	}
	return &export.File{Name: "leads_2026-01-01.xlsx", URL: "data:" + export.XLSXMimeType + ";base64,AA=="}, nil
}

type harness struct {
	composer   *Composer
	classifier *countingClassifier
	searcher   *countingSearcher
	generator  *fakeGenerator
	encoder    *fakeEncoder
}

func newHarness(t *testing.T, gen *fakeGenerator, opts Options) *harness {
	t.Helper()
	all, err := leads.Decode([]byte(composerFixture))
	require.NoError(t, err)

	h := &harness{
		classifier: &countingClassifier{inner: retrieval.NewIntentClassifier()},
		searcher:   &countingSearcher{Index: retrieval.NewIndex(all)},
		generator:  gen,
		encoder:    &fakeEncoder{},
	}

	var g generation.Generator
	if gen != nil {
		g = gen
	}
	h.composer = NewComposer(h.classifier, h.searcher, retrieval.NewContextAssembler(5), g, h.encoder, opts, nil)
	return h
}

func (h *harness) respond(t *testing.T, msg string, history ...generation.Message) *Reply {
	t.Helper()
	reply, err := h.composer.Respond(context.Background(), Request{Message: msg, History: history})
	require.NoError(t, err)
	require.NotNil(t, reply)
	return reply
}

func leadNames(all []leads.Lead) []string {
	out := make([]string, len(all))
	for i := range all {
		out[i] = all[i].DisplayName()
	}
	return out
}

func TestRespond_Greeting(t *testing.T) {
	h := newHarness(t, nil, Options{})
	reply := h.respond(t, "Oi")

	assert.Contains(t, reply.Response, "**5 leads**")
	assert.Empty(t, reply.Leads)
	assert.Zero(t, h.searcher.searches)
	assert.Equal(t, retrieval.IntentGreeting, reply.Intent.Kind)
}

func TestRespond_Help(t *testing.T) {
	h := newHarness(t, nil, Options{})
	reply := h.respond(t, "ajuda")

	assert.Contains(t, reply.Response, "**5 leads**")
	assert.Contains(t, reply.Response, "Exportar todos os leads para Excel")
	assert.Zero(t, h.searcher.searches)
}

func TestRespond_SearchByName(t *testing.T) {
	h := newHarness(t, nil, Options{})
	reply := h.respond(t, "Quem é Maria Souza?")

	assert.Equal(t, []string{"Maria Souza Lima"}, leadNames(reply.Leads))
	assert.Contains(t, reply.Response, "Encontrei **1 lead(s)**")
	assert.False(t, reply.Generated)
}

func TestRespond_SurnameMatchingCity(t *testing.T) {
	all, err := leads.Decode([]byte(`[
  {"dados_basicos": {"nome_completo": "João dos Santos"}, "contato": {"cidade": "Curitiba"}},
  {"dados_basicos": {"nome_completo": "Ana Lima"}, "contato": {"cidade": "Santos"}}
]`))
	require.NoError(t, err)

	gen := &fakeGenerator{reply: "João dos Santos atua em Curitiba."}
	composer := NewComposer(retrieval.NewIntentClassifier(), retrieval.NewIndex(all),
		retrieval.NewContextAssembler(5), gen, &fakeEncoder{}, Options{}, nil)

	reply, err := composer.Respond(context.Background(), Request{Message: "Quem é João dos Santos?"})
	require.NoError(t, err)

	assert.Equal(t, retrieval.IntentSearchName, reply.Intent.Kind)
	assert.Equal(t, []string{"João dos Santos"}, leadNames(reply.Leads))
	assert.NotContains(t, reply.Response, "Ana Lima")

	require.Len(t, gen.requests, 1)
	assert.Contains(t, gen.requests[0].Context, "João dos Santos")
	assert.NotContains(t, gen.requests[0].Context, "Ana Lima")
}

func TestRespond_SearchByCity(t *testing.T) {
	h := newHarness(t, nil, Options{})
	reply := h.respond(t, "Leads de Curitiba")

	assert.Equal(t, retrieval.IntentSearchCity, reply.Intent.Kind)
	assert.Contains(t, reply.Response, "Encontrei **3 lead(s)**")
	assert.Equal(t, []string{"Carlos Souza", "Ana Costa", "Pedro Alves"}, leadNames(reply.Leads))
}

func TestRespond_DisplayCap(t *testing.T) {
	h := newHarness(t, nil, Options{DisplayCap: 2})
	reply := h.respond(t, "Leads de Curitiba")

	assert.Contains(t, reply.Response, "Encontrei **3 lead(s)**")
	assert.Contains(t, reply.Response, "Mostrando 2 de 3.")
	assert.Len(t, reply.Leads, 2)
}

func TestRespond_SearchBySegment(t *testing.T) {
	h := newHarness(t, nil, Options{})

	reply := h.respond(t, "leads de marketing")
	assert.Equal(t, []string{"Pedro Alves"}, leadNames(reply.Leads))

	reply = h.respond(t, "leads de tecnologia")
	assert.Equal(t, "Nenhum lead encontrado no segmento Tecnologia.", reply.Response)
	assert.Empty(t, reply.Leads)
}

func TestRespond_EmptySearchNeverGenerates(t *testing.T) {
	gen := &fakeGenerator{reply: "inventado"}
	h := newHarness(t, gen, Options{})

	reply := h.respond(t, "Quem é Fulano de Tal?")
	assert.Equal(t, `Nenhum lead encontrado com o nome "Fulano de Tal".`, reply.Response)
	assert.Empty(t, reply.Leads)

	reply = h.respond(t, "Leads de Recife")
	assert.Equal(t, "Nenhum lead encontrado em Recife.", reply.Response)

	assert.Empty(t, gen.requests)
}

func TestRespond_GroundedGeneration(t *testing.T) {
	gen := &fakeGenerator{reply: "  Em Curitiba você tem **3 leads**.  "}
	h := newHarness(t, gen, Options{HistoryTurns: 2})

	history := []generation.Message{
		{Role: generation.RoleUser, Content: "um"},
		{Role: generation.RoleAssistant, Content: "dois"},
		{Role: "system", Content: "ignorado"},
		{Role: generation.RoleUser, Content: "três"},
	}
	reply := h.respond(t, "Leads de Curitiba", history...)

	assert.True(t, reply.Generated)
	assert.Equal(t, "Em Curitiba você tem **3 leads**.", reply.Response)
	assert.Len(t, reply.Leads, 3)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, "Leads de Curitiba", req.Message)
	assert.Contains(t, req.System, "Você é Z")
	assert.Contains(t, req.Context, "Carlos Souza")
	assert.NotContains(t, req.Context, "Maria Souza Lima")
	assert.NotContains(t, req.Context, "Julia Ramos")
	assert.Equal(t, []generation.Message{
		{Role: generation.RoleAssistant, Content: "dois"},
		{Role: generation.RoleUser, Content: "três"},
	}, req.History)
}

func TestRespond_GenerationFailureFallsBack(t *testing.T) {
	for name, gen := range map[string]*fakeGenerator{
		"error":       {err: generation.ErrUnavailable},
		"blank reply": {reply: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, gen, Options{})
			reply := h.respond(t, "Leads de Curitiba")

			assert.False(t, reply.Generated)
			assert.Contains(t, reply.Response, "Encontrei **3 lead(s)**")
			assert.Len(t, gen.requests, 1)
		})
	}
}

func TestRespond_CreateEmail(t *testing.T) {
	t.Run("generation unavailable names the lead", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "Criar email para Carlos Souza")

		assert.Contains(t, reply.Response, "Carlos Souza")
		assert.Contains(t, reply.Response, "OPENAI_API_KEY")
		assert.Equal(t, []string{"Carlos Souza"}, leadNames(reply.Leads))
	})

	t.Run("generation failing", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("timeout")}
		h := newHarness(t, gen, Options{})
		reply := h.respond(t, "Criar email para Carlos Souza")

		assert.Contains(t, reply.Response, "Carlos Souza")
		assert.Equal(t, []string{"Carlos Souza"}, leadNames(reply.Leads))
		assert.Len(t, gen.requests, 1)
	})

	t.Run("single lead context with task directive", func(t *testing.T) {
		gen := &fakeGenerator{reply: "Assunto: crescimento da Souza Varejo"}
		h := newHarness(t, gen, Options{})
		reply := h.respond(t, "Criar email para Carlos Souza")

		assert.True(t, reply.Generated)
		assert.Equal(t, "Assunto: crescimento da Souza Varejo", reply.Response)
		require.Len(t, gen.requests, 1)
		assert.Contains(t, gen.requests[0].System, "TAREFA")
		assert.Contains(t, gen.requests[0].Context, "(1 de 1)")
		assert.Contains(t, gen.requests[0].Context, "Carlos Souza")
		assert.NotContains(t, gen.requests[0].Context, "Maria Souza Lima")
	})

	t.Run("unknown lead", func(t *testing.T) {
		gen := &fakeGenerator{reply: "x"}
		h := newHarness(t, gen, Options{})
		reply := h.respond(t, "Criar email para Roberto Dias")

		assert.Equal(t, `Não encontrei nenhum lead chamado "Roberto Dias" para criar o email.`, reply.Response)
		assert.Empty(t, reply.Leads)
		assert.Empty(t, gen.requests)
	})

	t.Run("no name", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "crie um email de prospecção")

		assert.Equal(t, emailNeedsNameText, reply.Response)
		assert.Zero(t, h.searcher.searches)
	})
}

func TestRespond_ContactLookup(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "x"}, Options{})
	reply := h.respond(t, "Como falar com Carlos Souza?")

	assert.Equal(t, retrieval.IntentContactLookup, reply.Intent.Kind)
	assert.Contains(t, reply.Response, "**Carlos Souza - CEO @ Souza Varejo (Curitiba/PR)**")
	assert.Contains(t, reply.Response, "- Email: carlos@souza.com")
	assert.Contains(t, reply.Response, "- Telefone: (41) 3333-0000")
	assert.False(t, reply.Generated)
	assert.Empty(t, h.generator.requests)

	reply = h.respond(t, "contato do Bruno")
	assert.Equal(t, `Nenhum lead encontrado com o nome "Bruno".`, reply.Response)
}

func TestRespond_ListAll(t *testing.T) {
	h := newHarness(t, nil, Options{ListCap: 2})
	reply := h.respond(t, "Listar todos os leads")

	assert.Contains(t, reply.Response, "A base tem **5 leads**. Mostrando os primeiros 2:")
	assert.Equal(t, []string{"Maria Souza Lima", "Carlos Souza"}, leadNames(reply.Leads))
}

func TestRespond_Count(t *testing.T) {
	h := newHarness(t, nil, Options{})

	t.Run("no filter returns stats", func(t *testing.T) {
		reply := h.respond(t, "Quantos leads temos?")
		require.NotNil(t, reply.Stats)
		assert.Equal(t, leads.Stats{Total: 5, WithEmail: 2, WithPhone: 1, WithLinkedIn: 1}, *reply.Stats)
		assert.Contains(t, reply.Response, "**5 leads**")
	})

	t.Run("city filter", func(t *testing.T) {
		reply := h.respond(t, "Quantos leads de Curitiba?")
		assert.Equal(t, &retrieval.Filter{Kind: retrieval.FilterCity, Term: "curitiba"}, reply.Intent.Filter)
		assert.Contains(t, reply.Response, "Encontrei **3 leads** em Curitiba.")
		assert.Len(t, reply.Leads, 3)
		assert.Nil(t, reply.Stats)
	})

	t.Run("segment filter with sample", func(t *testing.T) {
		hs := newHarness(t, nil, Options{SampleCap: 1})
		reply := hs.respond(t, "quantos leads de saúde?")
		assert.Contains(t, reply.Response, "Encontrei **1 lead** no segmento Saúde.")
		assert.Equal(t, []string{"Ana Costa"}, leadNames(reply.Leads))
	})

	t.Run("filter without matches", func(t *testing.T) {
		reply := h.respond(t, "Quantos leads de Recife?")
		assert.Equal(t, "Nenhum lead encontrado em Recife.", reply.Response)
		assert.Empty(t, reply.Leads)
	})
}

func TestRespond_Export(t *testing.T) {
	t.Run("all leads", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "Exportar todos os leads para Excel")

		assert.Equal(t, "Exportação concluída. **5 leads** prontos para download.", reply.Response)
		require.NotNil(t, reply.File)
		assert.Equal(t, "leads_2026-01-01.xlsx", reply.File.Name)
		assert.Equal(t, 1, h.encoder.calls)
		assert.Len(t, h.encoder.rows, 5)
	})

	t.Run("city filter", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "Exportar leads de Curitiba para excel")

		assert.Contains(t, reply.Response, "**3 leads**")
		require.Len(t, h.encoder.rows, 3)
		assert.Equal(t, "Carlos Souza", h.encoder.rows[0].Name)
	})

	t.Run("segment filter resolves through general search", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "Exportar leads de marketing para excel")

		assert.Contains(t, reply.Response, "**1 leads**")
		require.Len(t, h.encoder.rows, 1)
		assert.Equal(t, "Pedro Alves", h.encoder.rows[0].Name)
	})

	t.Run("no matches never encodes", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "Exportar leads de tecnologia para excel")

		assert.Equal(t, "Nenhum lead encontrado para exportar.", reply.Response)
		assert.Nil(t, reply.File)
		assert.Zero(t, h.encoder.calls)
	})

	t.Run("encoder failure", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		h.encoder.err = export.ErrEncodeFailed
		reply := h.respond(t, "Exportar todos os leads para Excel")

		assert.Equal(t, exportFailedText, reply.Response)
		assert.Nil(t, reply.File)
	})
}

func TestRespond_GeneralQuery(t *testing.T) {
	t.Run("matches through the searchable projection", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "quem gosta de sustentabilidade?")

		assert.Equal(t, retrieval.IntentGeneralQuery, reply.Intent.Kind)
		assert.Equal(t, []string{"Julia Ramos"}, leadNames(reply.Leads))
	})

	t.Run("nothing found without generator", func(t *testing.T) {
		h := newHarness(t, nil, Options{})
		reply := h.respond(t, "quem gosta de pescaria?")

		assert.Contains(t, reply.Response, `Nenhum lead encontrado para "quem gosta de pescaria?". A base tem 5 leads.`)
		assert.Contains(t, reply.Response, "Leads de Florianópolis")
		assert.Empty(t, reply.Leads)
	})

	t.Run("nothing found with generator gets stats only", func(t *testing.T) {
		gen := &fakeGenerator{reply: "Não há ninguém com esse perfil na base."}
		h := newHarness(t, gen, Options{})
		reply := h.respond(t, "quem gosta de pescaria?")

		assert.True(t, reply.Generated)
		assert.Empty(t, reply.Leads)
		require.Len(t, gen.requests, 1)
		ctx := gen.requests[0].Context
		assert.Contains(t, ctx, "Total de leads: 5")
		assert.Contains(t, ctx, "NENHUM LEAD CORRESPONDE")
		for _, name := range []string{"Maria", "Carlos", "Ana Costa", "Pedro", "Julia"} {
			assert.NotContains(t, ctx, name)
		}
	})
}

func TestRespond_StatsSentinelBypassesClassification(t *testing.T) {
	h := newHarness(t, nil, Options{})
	reply := h.respond(t, "__stats__")

	require.NotNil(t, reply.Stats)
	assert.Equal(t, 5, reply.Stats.Total)
	assert.Empty(t, reply.Response)
	assert.Zero(t, h.classifier.calls)
	assert.Zero(t, h.searcher.searches)
}

func TestRespond_CustomStatsCommand(t *testing.T) {
	h := newHarness(t, nil, Options{StatsCommand: "/stats"})

	reply := h.respond(t, "/stats")
	require.NotNil(t, reply.Stats)
	assert.Zero(t, h.classifier.calls)

	h.respond(t, "__stats__")
	assert.Equal(t, 1, h.classifier.calls)
}

func TestRespond_EmptyMessage(t *testing.T) {
	h := newHarness(t, nil, Options{})

	for _, msg := range []string{"", "   ", "\n\t"} {
		reply, err := h.composer.Respond(context.Background(), Request{Message: msg})
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Nil(t, reply)
	}
	assert.Zero(t, h.classifier.calls)
}

func TestReply_JSONOmitsUnsetFields(t *testing.T) {
	h := newHarness(t, nil, Options{})

	data, err := json.Marshal(h.respond(t, "Exportar leads de tecnologia para excel"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"Nenhum lead encontrado para exportar."}`, string(data))

	data, err = json.Marshal(h.respond(t, "Quem é Maria Souza?"))
	require.NoError(t, err)
	var decoded struct {
		Leads []map[string]any `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Leads, 1)
	assert.Contains(t, decoded.Leads[0], "dados_basicos")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "São Paulo", titleCase("são paulo"))
	assert.Equal(t, "Rio de Janeiro", titleCase("rio de janeiro"))
	assert.Equal(t, "Florianópolis", titleCase("florianópolis"))
}
