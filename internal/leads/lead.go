// Package leads defines the lead record, its null-safe readers, directory
// statistics and the providers that load the directory at startup.
package leads

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Lead is one researched sales prospect. Every group is optional; the
// readers below never panic on missing groups or a nil lead.
type Lead struct {
	Basic      *Basic     `json:"dados_basicos,omitempty"`
	Contact    *Contact   `json:"contato,omitempty"`
	Social     *Social    `json:"redes_sociais,omitempty"`
	Meta       *Meta      `json:"meta,omitempty"`
	Approach   *Approach  `json:"abordagem,omitempty"`
	Profile    *Profile   `json:"perfil_psicologico,omitempty"`
	Patterns   *Patterns  `json:"padroes_comportamento,omitempty"`
	Soul       *Soul      `json:"alma,omitempty"`
	Network    *Network   `json:"rede_influencia,omitempty"`
	Registry   *Registry  `json:"registros_publicos,omitempty"`
	History    []Position `json:"historico_profissional,omitempty"`
	Sources    TextList   `json:"fontes,omitempty"`
	SourceFile Text       `json:"_source,omitempty"`

	raw json.RawMessage
}

// Basic holds identity and company fields.
type Basic struct {
	FullName   Text     `json:"nome_completo,omitempty"`
	SocialName Text     `json:"nome_social,omitempty"`
	Company    Text     `json:"empresa,omitempty"`
	Role       Text     `json:"cargo,omitempty"`
	Segment    Text     `json:"segmento,omitempty"`
	Education  TextList `json:"formacao,omitempty"`
	Tenure     Text     `json:"tempo_empresa,omitempty"`
}

// Contact holds reachability fields. Email and Phone are legacy keys.
type Contact struct {
	CorporateEmail Text `json:"email_corporativo,omitempty"`
	PersonalEmail  Text `json:"email_pessoal,omitempty"`
	Email          Text `json:"email,omitempty"`
	DirectPhone    Text `json:"telefone_direto,omitempty"`
	WhatsApp       Text `json:"whatsapp,omitempty"`
	Phone          Text `json:"telefone,omitempty"`
	City           Text `json:"cidade,omitempty"`
	State          Text `json:"estado,omitempty"`
	Address        Text `json:"endereco,omitempty"`
	PostalCode     Text `json:"cep,omitempty"`
}

// Social holds public profile links.
type Social struct {
	LinkedIn    Text `json:"linkedin,omitempty"`
	Instagram   Text `json:"instagram,omitempty"`
	CompanySite Text `json:"site_empresa,omitempty"`
}

// Meta holds research bookkeeping.
type Meta struct {
	Completeness Text `json:"score_completude,omitempty"`
	Confidence   Text `json:"confianca_dados,omitempty"`
	ResearchedAt Text `json:"data_pesquisa,omitempty"`
}

// Approach holds sales guidance.
type Approach struct {
	PreferredChannel Text     `json:"canal_preferido,omitempty"`
	BestTime         Text     `json:"melhor_horario,omitempty"`
	OpeningScript    Text     `json:"script_abertura,omitempty"`
	Triggers         TextList `json:"gatilhos,omitempty"`
	Objections       TextList `json:"objecoes_provaveis,omitempty"`
	Avoid            TextList `json:"o_que_evitar,omitempty"`
}

// Profile holds the psychological profile.
type Profile struct {
	Summary       Text     `json:"resumo,omitempty"`
	Personality   Text     `json:"personalidade,omitempty"`
	Motivations   TextList `json:"motivacoes,omitempty"`
	EgoTriggers   TextList `json:"ego_triggers,omitempty"`
	DecisionStyle Text     `json:"como_decide,omitempty"`
}

// Patterns holds observed behavior.
type Patterns struct {
	CommunicationStyle Text     `json:"estilo_comunicacao,omitempty"`
	RecurringThemes    TextList `json:"temas_recorrentes,omitempty"`
	NotableQuotes      TextList `json:"citacoes_marcantes,omitempty"`
}

// Soul holds values and motivators.
type Soul struct {
	Values     TextList `json:"valores,omitempty"`
	Motivators TextList `json:"motivadores,omitempty"`
	Triggers   TextList `json:"gatilhos,omitempty"`
}

// Network holds the influence network.
type Network struct {
	Introducers TextList `json:"quem_pode_apresentar,omitempty"`
	Communities TextList `json:"comunidades,omitempty"`
}

// Registry holds public company registry data.
type Registry struct {
	CNPJ      Text     `json:"cnpj,omitempty"`
	LegalName Text     `json:"razao_social,omitempty"`
	Status    Text     `json:"situacao,omitempty"`
	OpenedAt  Text     `json:"data_abertura,omitempty"`
	Partners  TextList `json:"socios,omitempty"`
}

// Position is one entry of the work history.
type Position struct {
	Role    Text `json:"cargo,omitempty"`
	Company Text `json:"empresa,omitempty"`
	Period  Text `json:"periodo,omitempty"`
}

// UnmarshalJSON decodes a lead leniently: a group whose value has the wrong
// shape is dropped instead of failing the whole record. The input is kept
// so the record can be re-emitted exactly as stored.
func (l *Lead) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("lead is not a JSON object: %w", err)
	}

	var out Lead
	decodeGroup(fields["dados_basicos"], &out.Basic)
	decodeGroup(fields["contato"], &out.Contact)
	decodeGroup(fields["redes_sociais"], &out.Social)
	decodeGroup(fields["meta"], &out.Meta)
	decodeGroup(fields["abordagem"], &out.Approach)
	decodeGroup(fields["perfil_psicologico"], &out.Profile)
	decodeGroup(fields["padroes_comportamento"], &out.Patterns)
	decodeGroup(fields["alma"], &out.Soul)
	decodeGroup(fields["rede_influencia"], &out.Network)
	decodeGroup(fields["registros_publicos"], &out.Registry)

	if raw := fields["historico_profissional"]; isArray(raw) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				if !isObject(item) {
					continue
				}
				var p Position
				if err := json.Unmarshal(item, &p); err == nil {
					out.History = append(out.History, p)
				}
			}
		}
	}

	if raw, ok := fields["fontes"]; ok {
		_ = json.Unmarshal(raw, &out.Sources)
	}
	if raw, ok := fields["_source"]; ok {
		_ = json.Unmarshal(raw, &out.SourceFile)
	}

	out.raw = append(json.RawMessage(nil), data...)
	*l = out
	return nil
}

// MarshalJSON re-emits the stored record when there is one, so fields this
// type does not model survive the round trip to the client.
func (l Lead) MarshalJSON() ([]byte, error) {
	if len(l.raw) > 0 {
		return l.raw, nil
	}
	type plain Lead
	return json.Marshal(plain(l))
}

func decodeGroup[T any](raw json.RawMessage, dst **T) {
	if !isObject(raw) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = &v
}

// FullName returns dados_basicos.nome_completo.
func (l *Lead) FullName() string {
	if l == nil || l.Basic == nil {
		return ""
	}
	return l.Basic.FullName.String()
}

// SocialName returns dados_basicos.nome_social.
func (l *Lead) SocialName() string {
	if l == nil || l.Basic == nil {
		return ""
	}
	return l.Basic.SocialName.String()
}

// Company returns dados_basicos.empresa.
func (l *Lead) Company() string {
	if l == nil || l.Basic == nil {
		return ""
	}
	return l.Basic.Company.String()
}

// Role returns dados_basicos.cargo.
func (l *Lead) Role() string {
	if l == nil || l.Basic == nil {
		return ""
	}
	return l.Basic.Role.String()
}

// Segment returns dados_basicos.segmento.
func (l *Lead) Segment() string {
	if l == nil || l.Basic == nil {
		return ""
	}
	return l.Basic.Segment.String()
}

// City returns contato.cidade.
func (l *Lead) City() string {
	if l == nil || l.Contact == nil {
		return ""
	}
	return l.Contact.City.String()
}

// State returns contato.estado.
func (l *Lead) State() string {
	if l == nil || l.Contact == nil {
		return ""
	}
	return l.Contact.State.String()
}

// LinkedIn returns redes_sociais.linkedin.
func (l *Lead) LinkedIn() string {
	if l == nil || l.Social == nil {
		return ""
	}
	return l.Social.LinkedIn.String()
}

// Instagram returns redes_sociais.instagram.
func (l *Lead) Instagram() string {
	if l == nil || l.Social == nil {
		return ""
	}
	return l.Social.Instagram.String()
}

// Score returns meta.score_completude.
func (l *Lead) Score() string {
	if l == nil || l.Meta == nil {
		return ""
	}
	return l.Meta.Completeness.String()
}

// DisplayName picks the best available label for the lead.
func (l *Lead) DisplayName() string {
	for _, name := range []string{l.FullName(), l.SocialName(), l.Company()} {
		if name != "" {
			return name
		}
	}
	return "Lead"
}

// PrimaryEmail returns the corporate, personal or legacy email, in that order.
func (l *Lead) PrimaryEmail() string {
	if l == nil || l.Contact == nil {
		return ""
	}
	return firstNonEmpty(l.Contact.CorporateEmail, l.Contact.PersonalEmail, l.Contact.Email)
}

// PrimaryPhone returns the direct, messaging or legacy phone, in that order.
func (l *Lead) PrimaryPhone() string {
	if l == nil || l.Contact == nil {
		return ""
	}
	return firstNonEmpty(l.Contact.DirectPhone, l.Contact.WhatsApp, l.Contact.Phone)
}

// HasEmail reports whether any email field is set.
func (l *Lead) HasEmail() bool {
	return l.PrimaryEmail() != ""
}

// HasPhone reports whether any phone field is set.
func (l *Lead) HasPhone() bool {
	return l.PrimaryPhone() != ""
}

// Headline renders "Name - Role @ Company (City/State)" with missing parts left out.
func (l *Lead) Headline() string {
	var b strings.Builder
	b.WriteString(l.DisplayName())
	if role := l.Role(); role != "" {
		b.WriteString(" - ")
		b.WriteString(role)
	}
	if company := l.Company(); company != "" && company != l.DisplayName() {
		b.WriteString(" @ ")
		b.WriteString(company)
	}
	loc := joinNonEmpty("/", l.City(), l.State())
	if loc != "" {
		b.WriteString(" (")
		b.WriteString(loc)
		b.WriteString(")")
	}
	return b.String()
}

func firstNonEmpty(values ...Text) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

// Decode parses a JSON array of leads or a single lead object.
func Decode(data []byte) ([]Lead, error) {
	raw := json.RawMessage(data)
	switch {
	case isArray(raw):
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode lead array: %w", err)
		}
		out := make([]Lead, 0, len(items))
		for i, item := range items {
			if !isObject(item) {
				continue
			}
			var lead Lead
			if err := json.Unmarshal(item, &lead); err != nil {
				return nil, fmt.Errorf("decode lead %d: %w", i, err)
			}
			out = append(out, lead)
		}
		return out, nil
	case isObject(raw):
		var lead Lead
		if err := json.Unmarshal(raw, &lead); err != nil {
			return nil, fmt.Errorf("decode lead: %w", err)
		}
		return []Lead{lead}, nil
	default:
		return nil, ErrInvalidDocument
	}
}
