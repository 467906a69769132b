package assistant

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/retrieval"
)

const (
	emptyDirectoryText  = "A base de leads está vazia."
	nothingToExportText = "Nenhum lead encontrado para exportar."
	exportFailedText    = "Não foi possível gerar a planilha agora. Tente novamente em instantes."
	emailNeedsNameText  = "Para quem devo escrever o email? Informe o nome do lead, por exemplo: \"Criar email para Maria Souza\"."
)

var examplePhrasings = []string{
	"Leads de Florianópolis",
	"Quem é Maria Souza?",
	"Quantos leads de tecnologia?",
	"Qual o telefone do Carlos?",
	"Criar email para Ana Lima",
	"Exportar todos os leads para Excel",
}

func greetingText(s leads.Stats) string {
	return fmt.Sprintf("Olá! Sou o **Z**, seu assistente de vendas.\n\n"+
		"A base tem **%d leads** (%d com email, %d com telefone). "+
		"Posso buscar leads, criar emails de abordagem e exportar dados. O que deseja fazer?",
		s.Total, s.WithEmail, s.WithPhone)
}

func helpText(s leads.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trabalho com a sua base de **%d leads**. Você pode pedir:\n\n", s.Total)
	b.WriteString("- **Buscar** por nome, cidade ou segmento\n")
	b.WriteString("- **Contato** de um lead (email, telefone, redes)\n")
	b.WriteString("- **Criar email** de abordagem personalizado\n")
	b.WriteString("- **Contar** leads por cidade ou segmento\n")
	b.WriteString("- **Exportar** leads para Excel\n\n")
	b.WriteString("Exemplos:\n")
	writeExamples(&b)
	return strings.TrimRight(b.String(), "\n")
}

func statsText(s leads.Stats) string {
	return fmt.Sprintf("A base tem **%d leads**.\n\n- Com email: **%d**\n- Com telefone: **%d**\n- Com LinkedIn: **%d**",
		s.Total, s.WithEmail, s.WithPhone, s.WithLinkedIn)
}

func listAllText(total int, shown []leads.Lead) string {
	var b strings.Builder
	if total > len(shown) {
		fmt.Fprintf(&b, "A base tem **%d leads**. Mostrando os primeiros %d:\n\n", total, len(shown))
	} else {
		fmt.Fprintf(&b, "A base tem **%d leads**:\n\n", total)
	}
	writeHeadlines(&b, shown)
	return strings.TrimRight(b.String(), "\n")
}

func exportDoneText(n int) string {
	return fmt.Sprintf("Exportação concluída. **%d leads** prontos para download.", n)
}

func countText(f retrieval.Filter, n int, sample []leads.Lead) string {
	where := filterPlace(f)
	if n == 0 {
		return fmt.Sprintf("Nenhum lead encontrado %s.", where)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei **%d %s** %s.", n, plural(n, "lead", "leads"), where)
	if len(sample) > 0 {
		b.WriteString(" Alguns deles:\n\n")
		writeHeadlines(&b, sample)
	}
	return strings.TrimRight(b.String(), "\n")
}

func filterPlace(f retrieval.Filter) string {
	if f.Kind == retrieval.FilterCity {
		return "em " + titleCase(f.Term)
	}
	return "no segmento " + titleCase(f.Term)
}

func foundText(n int, shown []leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei **%d lead(s)**:\n\n", n)
	writeHeadlines(&b, shown)
	if n > len(shown) {
		fmt.Fprintf(&b, "\nMostrando %d de %d.", len(shown), n)
	}
	return strings.TrimRight(b.String(), "\n")
}

func noNameMatch(name string) string {
	return fmt.Sprintf("Nenhum lead encontrado com o nome \"%s\".", name)
}

func noCityMatch(city string) string {
	return fmt.Sprintf("Nenhum lead encontrado em %s.", titleCase(city))
}

func noSegmentMatch(segment string) string {
	return fmt.Sprintf("Nenhum lead encontrado no segmento %s.", titleCase(segment))
}

func emailNoLeadText(name string) string {
	return fmt.Sprintf("Não encontrei nenhum lead chamado \"%s\" para criar o email.", name)
}

func emailUnavailableText(l *leads.Lead) string {
	return fmt.Sprintf("Encontrei **%s** (%s), mas a geração de texto não está disponível. "+
		"Configure a chave OPENAI_API_KEY para criar o email de abordagem.",
		l.DisplayName(), l.Headline())
}

func contactText(n int, shown []leads.Lead) string {
	var b strings.Builder
	if n > len(shown) {
		fmt.Fprintf(&b, "Encontrei %d leads com esse nome. Contato dos primeiros %d:\n", n, len(shown))
	}
	for i := range shown {
		l := &shown[i]
		if i > 0 || b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**%s**\n", l.Headline())

		lines := contactLines(l)
		if len(lines) == 0 {
			b.WriteString("Sem dados de contato registrados.\n")
			continue
		}
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func contactLines(l *leads.Lead) []string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, "- "+label+": "+value)
		}
	}
	add("Email", l.PrimaryEmail())
	add("Telefone", l.PrimaryPhone())
	add("LinkedIn", l.LinkedIn())
	add("Instagram", l.Instagram())
	return lines
}

func generalFallbackText(message string, s leads.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nenhum lead encontrado para \"%s\". A base tem %d leads.\n\nExperimente:\n",
		strings.TrimSpace(message), s.Total)
	writeExamples(&b)
	return strings.TrimRight(b.String(), "\n")
}

func writeHeadlines(b *strings.Builder, shown []leads.Lead) {
	for i := range shown {
		fmt.Fprintf(b, "%d. %s\n", i+1, shown[i].Headline())
	}
}

func writeExamples(b *strings.Builder) {
	for _, e := range examplePhrasings {
		fmt.Fprintf(b, "- \"%s\"\n", e)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// titleCase capitalizes each word of a matched keyword, leaving the
// connectors "de", "do", "da", "dos" and "das" lowercase.
func titleCase(s string) string {
	caser := cases.Title(language.BrazilianPortuguese)
	words := strings.Fields(s)
	for i, w := range words {
		if i > 0 && connectors[w] {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

var connectors = map[string]bool{"de": true, "do": true, "da": true, "dos": true, "das": true}
