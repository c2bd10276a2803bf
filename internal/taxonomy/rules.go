package taxonomy

// Rule maps any of its keywords to a category. Keywords are lowercase and
// unaccented; they are matched as substrings of the folded input.
type Rule struct {
	Keywords []string
	Category string
}

const (
	FallbackL1 = "Outros Serviços"
	FallbackL2 = "Não Especificado"
)

// Rule order is significant: the first matching rule wins.
var l1Rules = []Rule{
	{Keywords: []string{"funilaria", "pintura"}, Category: "Funilaria e Pintura"},
	{Keywords: []string{"pneu", "roda"}, Category: "Pneus e Rodas"},
	{Keywords: []string{"eletrica", "eletr"}, Category: "Elétrica"},
	{Keywords: []string{"mecanica", "motor"}, Category: "Mecânica"},
	{Keywords: []string{"freio"}, Category: "Freios"},
	{Keywords: []string{"suspensao"}, Category: "Suspensão"},
	{Keywords: []string{"ar condicionado", "ar-condicionado"}, Category: "Ar Condicionado"},
	{Keywords: []string{"direcao"}, Category: "Direção"},
	{Keywords: []string{"escapamento"}, Category: "Escapamento"},
	{Keywords: []string{"vidro", "parabrisa"}, Category: "Vidros"},
	{Keywords: []string{"insulfilm"}, Category: "Insulfilm"},
	{Keywords: []string{"som", "multimidia"}, Category: "Som e Multimídia"},
	{Keywords: []string{"acessorios"}, Category: "Acessórios"},
	{Keywords: []string{"revisao", "preventiva"}, Category: "Revisão e Manutenção Preventiva"},
	{Keywords: []string{"estetica", "lavagem", "polimento"}, Category: "Estética Automotiva"},
}

// Subtypes are ordered from the most specific phrase to the most generic word.
var l2Rules = []Rule{
	{Keywords: []string{"troca de oleo", "oleo"}, Category: "Troca de Óleo"},
	{Keywords: []string{"filtro"}, Category: "Troca de Filtros"},
	{Keywords: []string{"pastilha"}, Category: "Pastilhas de Freio"},
	{Keywords: []string{"disco de freio", "disco"}, Category: "Discos de Freio"},
	{Keywords: []string{"fluido de freio"}, Category: "Fluido de Freio"},
	{Keywords: []string{"amortecedor"}, Category: "Amortecedores"},
	{Keywords: []string{"alinhamento"}, Category: "Alinhamento"},
	{Keywords: []string{"balanceamento"}, Category: "Balanceamento"},
	{Keywords: []string{"calibragem"}, Category: "Calibragem"},
	{Keywords: []string{"troca de pneu", "pneu"}, Category: "Troca de Pneus"},
	{Keywords: []string{"bateria"}, Category: "Bateria"},
	{Keywords: []string{"alternador"}, Category: "Alternador"},
	{Keywords: []string{"motor de partida", "arranque"}, Category: "Motor de Partida"},
	{Keywords: []string{"injecao"}, Category: "Injeção Eletrônica"},
	{Keywords: []string{"diagnostico", "scanner"}, Category: "Diagnóstico"},
	{Keywords: []string{"embreagem"}, Category: "Embreagem"},
	{Keywords: []string{"cambio", "transmissao"}, Category: "Câmbio e Transmissão"},
	{Keywords: []string{"correia"}, Category: "Correia Dentada"},
	{Keywords: []string{"retifica"}, Category: "Retífica de Motor"},
	{Keywords: []string{"arrefecimento", "radiador"}, Category: "Arrefecimento"},
	{Keywords: []string{"higienizacao"}, Category: "Higienização de Ar Condicionado"},
	{Keywords: []string{"recarga de gas", "recarga"}, Category: "Recarga de Gás"},
	{Keywords: []string{"martelinho"}, Category: "Martelinho de Ouro"},
	{Keywords: []string{"pintura"}, Category: "Pintura"},
	{Keywords: []string{"funilaria", "lataria"}, Category: "Funilaria"},
	{Keywords: []string{"polimento", "cristalizacao"}, Category: "Polimento"},
	{Keywords: []string{"lavagem"}, Category: "Lavagem"},
	{Keywords: []string{"parabrisa", "para-brisa"}, Category: "Para-brisa"},
	{Keywords: []string{"insulfilm", "pelicula"}, Category: "Película"},
	{Keywords: []string{"escapamento", "silencioso"}, Category: "Escapamento"},
	{Keywords: []string{"terminal", "caixa de direcao"}, Category: "Componentes de Direção"},
	{Keywords: []string{"revisao"}, Category: "Revisão Periódica"},
	{Keywords: []string{"multimidia", "alarme", "som"}, Category: "Som e Alarme"},
}

// L1Rules returns a copy of the category rule table in priority order.
func L1Rules() []Rule { return cloneRules(l1Rules) }

// L2Rules returns a copy of the subtype rule table in priority order.
func L2Rules() []Rule { return cloneRules(l2Rules) }

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Keywords: append([]string(nil), r.Keywords...), Category: r.Category}
	}
	return out
}
