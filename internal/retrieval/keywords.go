package retrieval

// Keyword lists are written in normalized form (lowercase, no accents) and
// matched on word boundaries. Order matters: the first entry found wins, so
// longer names that contain shorter ones come first.

var cityKeywords = []string{
	"sao jose dos campos",
	"sao jose do rio preto",
	"sao paulo",
	"rio de janeiro",
	"belo horizonte",
	"porto alegre",
	"florianopolis",
	"balneario camboriu",
	"curitiba",
	"joinville",
	"blumenau",
	"itajai",
	"chapeco",
	"criciuma",
	"palhoca",
	"sao jose",
	"jaragua do sul",
	"lages",
	"tubarao",
	"brasilia",
	"salvador",
	"recife",
	"fortaleza",
	"goiania",
	"campinas",
	"santos",
	"ribeirao preto",
	"sorocaba",
	"londrina",
	"maringa",
	"ponta grossa",
	"cascavel",
	"foz do iguacu",
	"caxias do sul",
	"pelotas",
	"uberlandia",
	"niteroi",
	"manaus",
	"belem",
	"natal",
	"joao pessoa",
	"maceio",
	"aracaju",
	"teresina",
	"sao luis",
	"cuiaba",
	"campo grande",
	"porto velho",
}

var segmentKeywords = []string{
	"tecnologia",
	"software",
	"saude",
	"odontologia",
	"medicina",
	"estetica",
	"beleza",
	"fitness",
	"academia",
	"educacao",
	"varejo",
	"e-commerce",
	"ecommerce",
	"industria",
	"financeiro",
	"financas",
	"seguros",
	"imobiliario",
	"imobiliaria",
	"construcao",
	"engenharia",
	"arquitetura",
	"agronegocio",
	"logistica",
	"marketing",
	"publicidade",
	"advocacia",
	"juridico",
	"contabilidade",
	"consultoria",
	"alimentacao",
	"gastronomia",
	"restaurante",
	"moda",
	"turismo",
	"hotelaria",
	"automotivo",
	"energia",
	"startup",
}

var greetingPhrases = map[string]bool{
	"oi": true, "oie": true, "ola": true, "opa": true, "hey": true,
	"hi": true, "hello": true, "eai": true, "e ai": true,
	"bom dia": true, "boa tarde": true, "boa noite": true,
	"tudo bem": true, "oi tudo bem": true, "ola tudo bem": true,
	"oi z": true, "ola z": true, "oi bom dia": true, "ola bom dia": true,
}

var helpPhrases = map[string]bool{
	"ajuda": true, "help": true, "socorro": true, "menu": true,
	"comandos": true, "me ajuda": true, "preciso de ajuda": true,
	"ajuda por favor": true, "o que voce faz": true,
	"o que voce pode fazer": true, "o que posso perguntar": true,
	"como funciona": true, "como usar": true, "como te uso": true,
}

var listAllKeywords = []string{
	"listar todos", "liste todos", "listar todas", "liste todas",
	"mostrar todos", "mostre todos", "ver todos", "lista completa",
}

var exportKeywords = []string{
	"exportar", "exporte", "exporta", "excel", "download", "planilha", "xlsx", "baixar",
}

var countKeywords = []string{
	"quantos", "quantas", "quantidade", "estatistica", "estatisticas", "total de leads",
}

var createEmailVerbs = []string{
	"criar", "crie", "cria", "escrever", "escreva", "escreve", "gerar", "gere",
	"redigir", "redija", "montar", "monte", "fazer", "faca", "preparar", "prepare",
	"elaborar", "elabore",
}

var createEmailObjects = []string{
	"email", "e-mail", "mensagem", "abordagem", "texto", "script",
}

// generalStopWords are dropped from general search terms; they appear in
// almost any question and would match every lead.
var generalStopWords = map[string]bool{
	"que": true, "com": true, "para": true, "por": true, "dos": true, "das": true,
	"uma": true, "uns": true, "umas": true, "lead": true, "leads": true,
	"quem": true, "qual": true, "quais": true, "sobre": true, "tem": true,
	"tenho": true, "algum": true, "alguma": true, "alguem": true, "mais": true,
	"como": true, "onde": true, "isso": true, "esse": true, "essa": true,
	"este": true, "esta": true, "meu": true, "minha": true, "nos": true,
	"nas": true, "pelo": true, "pela": true, "voce": true, "todos": true,
	"todas": true, "base": true, "existe": true, "existem": true, "ha": true,
	"trabalha": true, "trabalham": true, "pessoas": true, "pessoa": true,
	"the": true, "and": true, "who": true,
}
