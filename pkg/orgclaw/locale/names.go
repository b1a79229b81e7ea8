package locale

import (
	"fmt"
	"time"
)

// weekdayNames holds display names indexed by time.Weekday per language.
var weekdayNames = map[Language][7]string{
	PortuguesePT: {"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
	PortugueseBR: {"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
	Spanish:      {"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
	English:      {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// monthNames holds display names indexed by time.Month-1 per language.
var monthNames = map[Language][12]string{
	PortuguesePT: {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	PortugueseBR: {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	Spanish:      {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	English:      {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

// WeekdayName returns the localized weekday name.
func WeekdayName(lang Language, d time.Weekday) string {
	names, ok := weekdayNames[lang]
	if !ok {
		names = weekdayNames[English]
	}
	return names[int(d)]
}

// MonthName returns the localized month name.
func MonthName(lang Language, m time.Month) string {
	names, ok := monthNames[lang]
	if !ok {
		names = monthNames[English]
	}
	return names[int(m)-1]
}

// FormatDate renders a date the way the language reads it
// ("segunda-feira, 10 de fevereiro" / "Monday, February 10").
func FormatDate(lang Language, t time.Time) string {
	switch lang {
	case English:
		return fmt.Sprintf("%s, %s %d", WeekdayName(lang, t.Weekday()), MonthName(lang, t.Month()), t.Day())
	default:
		return fmt.Sprintf("%s, %d de %s", WeekdayName(lang, t.Weekday()), t.Day(), MonthName(lang, t.Month()))
	}
}

// FormatTime renders a wall-clock time ("14:30").
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatDateTime renders date and time together for scheduling replies.
func FormatDateTime(lang Language, t time.Time) string {
	return FormatDate(lang, t) + ", " + FormatTime(t)
}

// Command describes a slash command for /help generation and alias routing.
type Command struct {
	Name    string
	Aliases []string
}

// Commands is the canonical slash-command table. Handlers match the name or
// any alias after normalization; /help output follows this order.
var Commands = []Command{
	{Name: "lembrete", Aliases: []string{"reminder", "recordatorio"}},
	{Name: "recorrente", Aliases: []string{"recurring", "recurrente"}},
	{Name: "list", Aliases: []string{"lista", "listas", "lists"}},
	{Name: "add", Aliases: nil},
	{Name: "feito", Aliases: []string{"done", "hecho"}},
	{Name: "remove", Aliases: []string{"remover", "rm", "eliminar"}},
	{Name: "hoje", Aliases: []string{"today", "hoy"}},
	{Name: "agenda", Aliases: nil},
	{Name: "semana", Aliases: []string{"week"}},
	{Name: "mes", Aliases: []string{"mês", "month"}},
	{Name: "timeline", Aliases: nil},
	{Name: "stats", Aliases: []string{"estatisticas", "estadisticas"}},
	{Name: "resumo", Aliases: []string{"summary", "resumen"}},
	{Name: "produtividade", Aliases: []string{"productivity", "productividad"}},
	{Name: "revisao", Aliases: []string{"review", "revision"}},
	{Name: "habito", Aliases: []string{"habitos", "habit", "habits"}},
	{Name: "meta", Aliases: []string{"metas", "goal", "goals"}},
	{Name: "nota", Aliases: []string{"notas", "note", "notes"}},
	{Name: "projeto", Aliases: []string{"projetos", "project", "projects", "proyecto"}},
	{Name: "template", Aliases: []string{"templates", "plantilla"}},
	{Name: "save", Aliases: []string{"guardar"}},
	{Name: "bookmark", Aliases: []string{"bookmarks", "favoritos"}},
	{Name: "find", Aliases: []string{"buscar", "procurar"}},
	{Name: "pomodoro", Aliases: nil},
	{Name: "tz", Aliases: []string{"timezone", "fuso"}},
	{Name: "lang", Aliases: []string{"idioma", "lingua"}},
	{Name: "reset", Aliases: nil},
	{Name: "quiet", Aliases: []string{"silencio"}},
	{Name: "nuke", Aliases: []string{"bomba", "bomb"}},
	{Name: "exportar", Aliases: []string{"export"}},
	{Name: "deletar_tudo", Aliases: []string{"apagar_tudo", "borrar_todo"}},
	{Name: "help", Aliases: []string{"ajuda", "ayuda", "comandos"}},
	{Name: "start", Aliases: nil},
	{Name: "stop", Aliases: nil},
	{Name: "pendente", Aliases: []string{"pendentes", "pending", "pendiente"}},
}

// CanonicalCommand resolves a normalized command word to its canonical name.
// Returns false when the word is not a known command or alias.
func CanonicalCommand(word string) (string, bool) {
	for _, c := range Commands {
		if word == c.Name {
			return c.Name, true
		}
		for _, a := range c.Aliases {
			if word == a {
				return c.Name, true
			}
		}
	}
	return "", false
}
