package retrieval

import (
	"fmt"
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
)

// DefaultContextCap is the number of leads placed in a context when the
// assembler is built with a non-positive cap.
const DefaultContextCap = 5

// NoMatchContext replaces the lead blocks when the result set is empty.
const NoMatchContext = "NENHUM LEAD CORRESPONDENTE NA BASE DE DADOS.\n" +
	"Informe ao usuário que não há dados sobre o que foi pedido. Não invente nomes, empresas, contatos ou qualquer outra informação."

// ContextAssembler renders result sets into the only lead data the
// generation service ever sees.
type ContextAssembler struct {
	limit int
}

// NewContextAssembler creates an assembler that emits at most limit leads.
func NewContextAssembler(limit int) *ContextAssembler {
	if limit <= 0 {
		limit = DefaultContextCap
	}
	return &ContextAssembler{limit: limit}
}

// Cap returns the maximum number of leads per context.
func (a *ContextAssembler) Cap() int {
	return a.limit
}

// Build renders results with the assembler's cap.
func (a *ContextAssembler) Build(results []leads.Lead) string {
	return BuildContext(results, a.limit)
}

// BuildStats renders an aggregate-only context: counts, no individual lead.
func (a *ContextAssembler) BuildStats(s leads.Stats) string {
	var b strings.Builder
	b.WriteString("ESTATÍSTICAS DA BASE (nenhum lead individual incluído):\n")
	fmt.Fprintf(&b, "Total de leads: %d\n", s.Total)
	fmt.Fprintf(&b, "Com email: %d\n", s.WithEmail)
	fmt.Fprintf(&b, "Com telefone: %d\n", s.WithPhone)
	fmt.Fprintf(&b, "Com LinkedIn: %d\n", s.WithLinkedIn)
	return b.String()
}

// BuildContext emits at most limit leads of results as labeled lines grouped
// by category. Empty fields and empty categories are skipped. An empty
// result set yields NoMatchContext.
func BuildContext(results []leads.Lead, limit int) string {
	if len(results) == 0 {
		return NoMatchContext
	}
	if limit <= 0 {
		limit = DefaultContextCap
	}

	shown := results
	if len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "LEADS ENCONTRADOS NA BASE (%d de %d). Use somente estes dados:\n", len(shown), len(results))
	for i := range shown {
		lead := &shown[i]
		fmt.Fprintf(&b, "\n=== LEAD %d: %s ===\n", i+1, lead.DisplayName())
		for _, sec := range leadSections(lead) {
			lines := sec.lines()
			if len(lines) == 0 {
				continue
			}
			fmt.Fprintf(&b, "[%s]\n", sec.title)
			for _, line := range lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

type field struct {
	label string
	value string
}

type section struct {
	title  string
	fields []field
}

func (s section) lines() []string {
	var out []string
	for _, f := range s.fields {
		if v := strings.TrimSpace(f.value); v != "" {
			out = append(out, f.label+": "+v)
		}
	}
	return out
}

func list(l leads.TextList) string {
	return l.Join("; ")
}

func leadSections(l *leads.Lead) []section {
	var out []section

	if b := l.Basic; b != nil {
		out = append(out, section{"Dados básicos", []field{
			{"Nome completo", b.FullName.String()},
			{"Nome social", b.SocialName.String()},
			{"Empresa", b.Company.String()},
			{"Cargo", b.Role.String()},
			{"Segmento", b.Segment.String()},
			{"Formação", list(b.Education)},
			{"Tempo na empresa", b.Tenure.String()},
		}})
	}
	if len(l.History) > 0 {
		var fields []field
		for _, p := range l.History {
			fields = append(fields, field{"Posição", positionLine(p)})
		}
		out = append(out, section{"Histórico profissional", fields})
	}
	if c := l.Contact; c != nil {
		out = append(out, section{"Contato", []field{
			{"Email corporativo", c.CorporateEmail.String()},
			{"Email pessoal", c.PersonalEmail.String()},
			{"Email", c.Email.String()},
			{"Telefone direto", c.DirectPhone.String()},
			{"WhatsApp", c.WhatsApp.String()},
			{"Telefone", c.Phone.String()},
			{"Cidade", c.City.String()},
			{"Estado", c.State.String()},
			{"Endereço", c.Address.String()},
			{"CEP", c.PostalCode.String()},
		}})
	}
	if s := l.Social; s != nil {
		out = append(out, section{"Redes sociais", []field{
			{"LinkedIn", s.LinkedIn.String()},
			{"Instagram", s.Instagram.String()},
			{"Site da empresa", s.CompanySite.String()},
		}})
	}
	if m := l.Meta; m != nil {
		out = append(out, section{"Meta", []field{
			{"Score de completude", m.Completeness.String()},
			{"Confiança dos dados", m.Confidence.String()},
			{"Data da pesquisa", m.ResearchedAt.String()},
		}})
	}
	if a := l.Approach; a != nil {
		out = append(out, section{"Abordagem", []field{
			{"Canal preferido", a.PreferredChannel.String()},
			{"Melhor horário", a.BestTime.String()},
			{"Script de abertura", a.OpeningScript.String()},
			{"Gatilhos", list(a.Triggers)},
			{"Objeções prováveis", list(a.Objections)},
			{"O que evitar", list(a.Avoid)},
		}})
	}
	if p := l.Profile; p != nil {
		out = append(out, section{"Perfil psicológico", []field{
			{"Resumo", p.Summary.String()},
			{"Personalidade", p.Personality.String()},
			{"Motivações", list(p.Motivations)},
			{"Gatilhos de ego", list(p.EgoTriggers)},
			{"Como decide", p.DecisionStyle.String()},
		}})
	}
	if p := l.Patterns; p != nil {
		out = append(out, section{"Padrões de comportamento", []field{
			{"Estilo de comunicação", p.CommunicationStyle.String()},
			{"Temas recorrentes", list(p.RecurringThemes)},
			{"Citações marcantes", list(p.NotableQuotes)},
		}})
	}
	if s := l.Soul; s != nil {
		out = append(out, section{"Alma", []field{
			{"Valores", list(s.Values)},
			{"Motivadores", list(s.Motivators)},
			{"Gatilhos", list(s.Triggers)},
		}})
	}
	if n := l.Network; n != nil {
		out = append(out, section{"Rede de influência", []field{
			{"Quem pode apresentar", list(n.Introducers)},
			{"Comunidades", list(n.Communities)},
		}})
	}
	if r := l.Registry; r != nil {
		out = append(out, section{"Registros públicos", []field{
			{"CNPJ", r.CNPJ.String()},
			{"Razão social", r.LegalName.String()},
			{"Situação", r.Status.String()},
			{"Data de abertura", r.OpenedAt.String()},
			{"Sócios", list(r.Partners)},
		}})
	}
	if len(l.Sources) > 0 {
		out = append(out, section{"Fontes", []field{{"Fontes", list(l.Sources)}}})
	}
	return out
}

func positionLine(p leads.Position) string {
	var b strings.Builder
	b.WriteString(p.Role.String())
	if c := p.Company.String(); c != "" {
		if b.Len() > 0 {
			b.WriteString(" @ ")
		}
		b.WriteString(c)
	}
	if per := p.Period.String(); per != "" && b.Len() > 0 {
		b.WriteString(" (" + per + ")")
	}
	return b.String()
}
