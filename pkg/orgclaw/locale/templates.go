package locale

// Template keys are grouped by the component that renders them. Every string
// a user can receive lives here; pt-PT uses tu-forms, pt-BR uses você-forms.

var templates = map[Language]map[string]string{

	PortuguesePT: {
		// Onboarding
		"onboarding.intro":        "Olá! Sou o teu organizador pessoal: listas, lembretes e agenda, tudo por mensagem. Para acertar os horários, diz-me em que cidade estás — ou, se preferires, que horas são aí agora.",
		"onboarding.time_only":    "Só preciso de uma coisa: que horas são aí agora? (ex.: 15:30)",
		"onboarding.tz_confirm":   "Então aí é {date}, {time}. Está certo? (sim/não)",
		"onboarding.tz_saved":     "Perfeito, fuso horário guardado ({tz}). Os teus lembretes vão seguir a tua hora local.",
		"onboarding.ask_name":     "Como preferes que te chame?",
		"onboarding.name_saved":   "Combinado, {name}! Escreve /help para veres tudo o que sei fazer.",
		"onboarding.tz_nudge":     "\n\nPS: ainda não sei o teu fuso horário. Diz-me a tua cidade ou a hora local quando quiseres.",

		// Scheduling
		"reminder.scheduled":           "Lembrete agendado (id: {id}). Será enviado às {time}.",
		"reminder.scheduled_recurring": "Lembrete recorrente agendado (id: {id}): {schedule}.",
		"reminder.duplicate":           "Já existe um lembrete igual agendado (id {id}).",
		"reminder.min_interval":        "O intervalo mínimo para lembretes recorrentes é de {hours}. Consigo agendar com um intervalo maior, se quiseres.",
		"reminder.past_date":           "Essa data já passou. Queres que eu agende para o ano que vem ({date})? (1=sim 2=não)",
		"reminder.next_year_scheduled": "Agendado para {date} (id: {id}).",
		"reminder.cancelled":           "Lembrete {id} cancelado.",
		"reminder.not_found":           "Não encontrei nenhum lembrete com o id {id}.",
		"reminder.list_header":         "Os teus lembretes:",
		"reminder.list_empty":          "Não tens lembretes agendados.",
		"reminder.what_for":            "Para que é o lembrete? Diz-me o que queres que eu te lembre.",
		"reminder.completed":           "Boa! Marquei como feito. ✅",
		"reminder.snoozed":             "Adiado 5 minutos. ⏰",
		"reminder.snooze_limit":        "Este lembrete já foi adiado 3 vezes. Queres remarcar para outra hora ou cancelar?",
		"reminder.reschedule_or_cancel": "Queres remarcar este lembrete ou cancelar? (1=remarcar 2=cancelar)",
		"reminder.deadline_followup":   "⚠️ O prazo passou: {text}. Já trataste disto?",
		"reminder.advance_question":    "Queres que eu te avise com antecedência? (sim/não)",
		"reminder.advance_amount":      "Com quanto tempo de antecedência? (ex.: 30 min, 2 horas, 1 dia)",
		"reminder.stale_apology":       "Peço desculpa: encontrei {count} lembrete(s) antigo(s) que já tinham passado e removi-os. Se algum ainda fizer falta, é só pedires outra vez.",

		// Quotas
		"quota.reminders_exceeded": "Atingiste o limite de 40 lembretes para esse dia. Remove algum com /lembrete antes de agendares mais.",
		"quota.events_exceeded":    "Atingiste o limite de 40 eventos para esse dia.",
		"quota.combined_exceeded":  "Atingiste o limite de 80 itens agendados para esse dia.",
		"quota.warning":            "\n\n(Atenção: já usaste {percent}% do limite diário de agendamentos.)",

		// Flows
		"flow.need_time":       "A que horas é {what}?",
		"flow.need_date":       "Em que dia é {what}?",
		"flow.invalid_attempt": "Não percebi ({attempt}/3). {question}",
		"flow.gave_up":         "Vamos deixar isso por agora. Quando quiseres, pede o lembrete com o dia e a hora.",
		"recurring.confirm":    "Então: {description}. Confirmas? (sim/não)",
		"recurring.until_when": "Até quando? (indefinido / fim da semana / fim do mês / fim do ano / uma data)",
		"recurring.saved":      "Combinado: {description} (id: {id}).",

		// Lists
		"list.created":          "Lista \"{name}\" criada.",
		"list.item_added":       "\"{item}\" adicionado à lista {name}.",
		"list.item_done":        "\"{item}\" marcado como feito. ✅",
		"list.item_removed":     "\"{item}\" removido da lista {name}.",
		"list.removed":          "Lista \"{name}\" removida.",
		"list.not_found":        "Não encontrei a lista \"{name}\".",
		"list.item_not_found":   "Não encontrei esse item na lista {name}.",
		"list.empty":            "A lista {name} está vazia.",
		"list.header":           "📋 {name}:",
		"list.lists_header":     "As tuas listas:",
		"list.no_lists":         "Ainda não tens listas. Cria uma com /list nome add item.",
		"list.or_events_choice": "Queres isso numa lista, como lembretes, ou ambos? (1=lista 2=lembretes 3=ambos)",

		// Events
		"event.added":         "{tipo} \"{nome}\" guardado.",
		"event.requires_date": "Para eventos preciso de uma data concreta (dia e hora).",
		"event.removed":       "\"{nome}\" removido.",
		"event.not_found":     "Não encontrei esse evento.",
		"event.list_header":   "Os teus eventos:",
		"event.list_empty":    "Não tens eventos guardados.",

		// Confirmations
		"confirm.export":       "Queres exportar todos os teus dados? (1=sim 2=não)",
		"confirm.delete_all":   "Isto apaga TODOS os teus dados (listas, eventos, lembretes). Tens a certeza? (1=sim 2=não)",
		"confirm.nuke":         "💣 Isto apaga tudo e reinicia a tua conta. Confirmas mesmo? (1=sim 2=não)",
		"confirm.completion":   "Já trataste de \"{name}\"? (1=sim 2=não)",
		"confirm.recipe_list":  "Queres que crie uma lista de compras com os ingredientes? (1=sim 2=não)",
		"confirm.cancelled":    "Ok, não faço nada.",
		"confirm.unknown":      "Responde 1 (sim) ou 2 (não), por favor.",
		"export.done":          "Exportação pronta: {summary}",
		"delete_all.done":      "Todos os teus dados foram apagados.",
		"nuke.done":            "Conta reiniciada. Quando quiseres, começamos de novo.",

		// Safety
		"safety.too_many":     "Estás a enviar mensagens demasiado depressa. Dá-me um minuto. 🙏",
		"safety.blocked":      "Não posso ajudar com esse tipo de pedido.",
		"safety.injection":    "Eu mantenho o meu papel: sou o teu organizador de listas e lembretes.",
		"safety.out_of_scope": "Eu trato de listas, lembretes e agenda. Para isso, conta comigo! Vê o /help para exemplos.",
		"safety.degraded":     "Estou com dificuldades técnicas neste momento. Os comandos do /help continuam a funcionar.",

		// Agent
		"agent.calling_ack":  "Estou aqui! Em que posso ajudar?",
		"agent.error":        "O serviço está temporariamente limitado. Tenta outra vez daqui a pouco.",
		"lang.switched":      "Combinado, passo a falar português de Portugal.",
		"tz.set":             "Fuso horário atualizado para {tz}.",
		"tz.current":         "O teu fuso horário é {tz}. Hora local: {time}.",
		"tz.invalid":         "Não reconheci esse fuso horário. Exemplo: Europe/Lisbon.",
		"quiet.set":          "Período de silêncio definido: {start}–{end}. Não envio lembretes nesse intervalo.",
		"quiet.cleared":      "Período de silêncio removido.",
		"reset.done":         "Preferências limpas. Os teus dados (listas, eventos, lembretes) ficam como estão.",
		"start.done":         "Lembretes ativados. 🚀",
		"stop.done":          "Lembretes em pausa. Escreve /start para os retomar.",
		"pendente.header":    "Pendentes para hoje:",
		"pendente.empty":     "Nada pendente para hoje. 🎉",

		// Recaps
		"recap.weekly":  "📊 Resumo da semana: {done} concluído(s), {added} adicionado(s), {events} evento(s).",
		"recap.monthly": "📅 Resumo do mês: {done} concluído(s), {added} adicionado(s), {events} evento(s).",

		// Analytics
		"stats.summary":        "📈 Totais: {lists} listas, {items} itens ({done} feitos), {events} eventos, {reminders} lembretes ativos.",
		"agenda.header":        "🗓️ Agenda {period}:",
		"agenda.empty":         "Nada agendado {period}.",
		"timeline.header":      "🕒 Atividade recente:",
		"timeline.empty":       "Sem atividade registada.",
		"productivity.summary": "💪 Produtividade: {done} concluído(s) nos últimos 7 dias, média de {avg} por dia.",
		"review.header":        "🔎 Revisão: {open} em aberto, {overdue} atrasado(s).",
		"resumo.header":        "Resumo rápido:",

		// Habits, goals, notes, projects, templates, bookmarks, pomodoro
		"habit.added":       "Hábito \"{name}\" registado. Marca com /habito feito {name}.",
		"habit.checked":     "Hábito \"{name}\" marcado hoje. Sequência: {streak} dia(s). 🔥",
		"habit.list_header": "Os teus hábitos:",
		"habit.empty":       "Ainda não registaste hábitos.",
		"goal.added":        "Meta \"{name}\" registada.",
		"goal.done":         "Meta \"{name}\" concluída! 🎯",
		"goal.list_header":  "As tuas metas:",
		"goal.empty":        "Ainda não tens metas.",
		"note.added":        "Nota guardada.",
		"note.list_header":  "As tuas notas:",
		"note.empty":        "Sem notas guardadas.",
		"project.added":       "Projeto \"{name}\" criado.",
		"project.list_header": "Os teus projetos:",
		"project.empty":       "Sem projetos.",
		"template.saved":       "Template \"{name}\" guardado.",
		"template.applied":     "Template \"{name}\" aplicado: lista \"{list}\" criada.",
		"template.list_header": "Templates disponíveis:",
		"template.empty":       "Sem templates guardados.",
		"bookmark.saved":       "Guardado nos favoritos.",
		"bookmark.list_header": "Os teus favoritos:",
		"bookmark.empty":       "Sem favoritos.",
		"find.header":          "Resultados para \"{query}\":",
		"find.none":            "Não encontrei nada com \"{query}\".",
		"pomodoro.started":  "🍅 Pomodoro iniciado: 25 minutos. Foco!",
		"pomodoro.stopped":  "Pomodoro parado.",
		"pomodoro.status":   "🍅 Faltam {remaining} do pomodoro atual.",
		"pomodoro.none":     "Não há nenhum pomodoro a decorrer.",
		"pomodoro.finished": "🍅 Pomodoro terminado! Faz uma pausa de 5 minutos.",

		// God mode
		"god.enabled":  "Modo diagnóstico ativado por 24h.",
		"god.disabled": "Modo diagnóstico desativado.",
		"god.denied":   "Não posso ajudar com esse tipo de pedido.",

		// Digest
		"digest.daily": "Bom dia! Tens {reminders} lembrete(s) e {events} evento(s) para hoje.",

		"help": "Comandos:\n/lembrete — criar ou listar lembretes\n/recorrente — lembrete recorrente\n/list — listas e itens\n/feito — marcar item como feito\n/hoje /agenda /semana /mes — agenda\n/timeline /stats /resumo /produtividade /revisao — análises\n/habitos /metas /notas /projetos /templates — organização\n/save /bookmarks /find — favoritos e pesquisa\n/pomodoro start|stop|status — foco\n/tz /lang /quiet — preferências\n/exportar /deletar_tudo /reset — dados\n/start /stop — pausar lembretes\n/pendente — pendentes de hoje\n\nTambém entendo linguagem natural: \"lembra-me de pagar a renda dia 1 às 9h\".",
	},

	PortugueseBR: {
		// Onboarding
		"onboarding.intro":        "Oi! Sou seu organizador pessoal: listas, lembretes e agenda, tudo por mensagem. Para acertar os horários, me diz em que cidade você está — ou, se preferir, que horas são aí agora.",
		"onboarding.time_only":    "Só preciso de uma coisa: que horas são aí agora? (ex.: 15:30)",
		"onboarding.tz_confirm":   "Então aí é {date}, {time}. Tá certo? (sim/não)",
		"onboarding.tz_saved":     "Perfeito, fuso horário salvo ({tz}). Seus lembretes vão seguir seu horário local.",
		"onboarding.ask_name":     "Como você prefere que eu te chame?",
		"onboarding.name_saved":   "Combinado, {name}! Manda /help para ver tudo que eu sei fazer.",
		"onboarding.tz_nudge":     "\n\nPS: ainda não sei seu fuso horário. Me diz sua cidade ou a hora local quando quiser.",

		// Scheduling
		"reminder.scheduled":           "Lembrete agendado (id: {id}). Será enviado às {time}.",
		"reminder.scheduled_recurring": "Lembrete recorrente agendado (id: {id}): {schedule}.",
		"reminder.duplicate":           "Já existe um lembrete igual agendado (id {id}).",
		"reminder.min_interval":        "O intervalo mínimo para lembretes recorrentes é de {hours}. Consigo agendar com um intervalo maior, se você quiser.",
		"reminder.past_date":           "Essa data já passou. Quer que eu agende para o ano que vem ({date})? (1=sim 2=não)",
		"reminder.next_year_scheduled": "Agendado para {date} (id: {id}).",
		"reminder.cancelled":           "Lembrete {id} cancelado.",
		"reminder.not_found":           "Não achei nenhum lembrete com o id {id}.",
		"reminder.list_header":         "Seus lembretes:",
		"reminder.list_empty":          "Você não tem lembretes agendados.",
		"reminder.what_for":            "Para que é o lembrete? Me diz o que você quer que eu lembre.",
		"reminder.completed":           "Boa! Marquei como feito. ✅",
		"reminder.snoozed":             "Adiado 5 minutos. ⏰",
		"reminder.snooze_limit":        "Esse lembrete já foi adiado 3 vezes. Quer remarcar para outro horário ou cancelar?",
		"reminder.reschedule_or_cancel": "Quer remarcar esse lembrete ou cancelar? (1=remarcar 2=cancelar)",
		"reminder.deadline_followup":   "⚠️ O prazo passou: {text}. Você já resolveu isso?",
		"reminder.advance_question":    "Quer que eu te avise com antecedência? (sim/não)",
		"reminder.advance_amount":      "Com quanto tempo de antecedência? (ex.: 30 min, 2 horas, 1 dia)",
		"reminder.stale_apology":       "Desculpa: encontrei {count} lembrete(s) antigo(s) que já tinham passado e removi. Se algum ainda fizer falta, é só pedir de novo.",

		// Quotas
		"quota.reminders_exceeded": "Você atingiu o limite de 40 lembretes para esse dia. Remove algum com /lembrete antes de agendar mais.",
		"quota.events_exceeded":    "Você atingiu o limite de 40 eventos para esse dia.",
		"quota.combined_exceeded":  "Você atingiu o limite de 80 itens agendados para esse dia.",
		"quota.warning":            "\n\n(Atenção: você já usou {percent}% do limite diário de agendamentos.)",

		// Flows
		"flow.need_time":       "Que horas é {what}?",
		"flow.need_date":       "Que dia é {what}?",
		"flow.invalid_attempt": "Não entendi ({attempt}/3). {question}",
		"flow.gave_up":         "Vamos deixar isso por enquanto. Quando quiser, pede o lembrete com o dia e a hora.",
		"recurring.confirm":    "Então: {description}. Confirma? (sim/não)",
		"recurring.until_when": "Até quando? (indefinido / fim da semana / fim do mês / fim do ano / uma data)",
		"recurring.saved":      "Combinado: {description} (id: {id}).",

		// Lists
		"list.created":          "Lista \"{name}\" criada.",
		"list.item_added":       "\"{item}\" adicionado à lista {name}.",
		"list.item_done":        "\"{item}\" marcado como feito. ✅",
		"list.item_removed":     "\"{item}\" removido da lista {name}.",
		"list.removed":          "Lista \"{name}\" removida.",
		"list.not_found":        "Não achei a lista \"{name}\".",
		"list.item_not_found":   "Não achei esse item na lista {name}.",
		"list.empty":            "A lista {name} está vazia.",
		"list.header":           "📋 {name}:",
		"list.lists_header":     "Suas listas:",
		"list.no_lists":         "Você ainda não tem listas. Cria uma com /list nome add item.",
		"list.or_events_choice": "Quer isso numa lista, como lembretes, ou ambos? (1=lista 2=lembretes 3=ambos)",

		// Events
		"event.added":         "{tipo} \"{nome}\" salvo.",
		"event.requires_date": "Para eventos eu preciso de uma data concreta (dia e hora).",
		"event.removed":       "\"{nome}\" removido.",
		"event.not_found":     "Não achei esse evento.",
		"event.list_header":   "Seus eventos:",
		"event.list_empty":    "Você não tem eventos salvos.",

		// Confirmations
		"confirm.export":       "Quer exportar todos os seus dados? (1=sim 2=não)",
		"confirm.delete_all":   "Isso apaga TODOS os seus dados (listas, eventos, lembretes). Tem certeza? (1=sim 2=não)",
		"confirm.nuke":         "💣 Isso apaga tudo e reinicia sua conta. Confirma mesmo? (1=sim 2=não)",
		"confirm.completion":   "Você já resolveu \"{name}\"? (1=sim 2=não)",
		"confirm.recipe_list":  "Quer que eu crie uma lista de compras com os ingredientes? (1=sim 2=não)",
		"confirm.cancelled":    "Ok, não faço nada.",
		"confirm.unknown":      "Responde 1 (sim) ou 2 (não), por favor.",
		"export.done":          "Exportação pronta: {summary}",
		"delete_all.done":      "Todos os seus dados foram apagados.",
		"nuke.done":            "Conta reiniciada. Quando quiser, a gente começa de novo.",

		// Safety
		"safety.too_many":     "Você está mandando mensagens rápido demais. Me dá um minuto. 🙏",
		"safety.blocked":      "Não posso ajudar com esse tipo de pedido.",
		"safety.injection":    "Eu mantenho o meu papel: sou seu organizador de listas e lembretes.",
		"safety.out_of_scope": "Eu cuido de listas, lembretes e agenda. Para isso, conta comigo! Dá uma olhada no /help.",
		"safety.degraded":     "Estou com dificuldades técnicas agora. Os comandos do /help continuam funcionando.",

		// Agent
		"agent.calling_ack":  "Tô aqui! Em que posso ajudar?",
		"agent.error":        "O serviço está temporariamente limitado. Tenta de novo daqui a pouco.",
		"lang.switched":      "Combinado, vou falar português do Brasil.",
		"tz.set":             "Fuso horário atualizado para {tz}.",
		"tz.current":         "Seu fuso horário é {tz}. Hora local: {time}.",
		"tz.invalid":         "Não reconheci esse fuso horário. Exemplo: America/Sao_Paulo.",
		"quiet.set":          "Período de silêncio definido: {start}–{end}. Não envio lembretes nesse intervalo.",
		"quiet.cleared":      "Período de silêncio removido.",
		"reset.done":         "Preferências limpas. Seus dados (listas, eventos, lembretes) ficam como estão.",
		"start.done":         "Lembretes ativados. 🚀",
		"stop.done":          "Lembretes pausados. Manda /start para retomar.",
		"pendente.header":    "Pendentes para hoje:",
		"pendente.empty":     "Nada pendente para hoje. 🎉",

		// Recaps
		"recap.weekly":  "📊 Resumo da semana: {done} concluído(s), {added} adicionado(s), {events} evento(s).",
		"recap.monthly": "📅 Resumo do mês: {done} concluído(s), {added} adicionado(s), {events} evento(s).",

		// Analytics
		"stats.summary":        "📈 Totais: {lists} listas, {items} itens ({done} feitos), {events} eventos, {reminders} lembretes ativos.",
		"agenda.header":        "🗓️ Agenda {period}:",
		"agenda.empty":         "Nada agendado {period}.",
		"timeline.header":      "🕒 Atividade recente:",
		"timeline.empty":       "Sem atividade registrada.",
		"productivity.summary": "💪 Produtividade: {done} concluído(s) nos últimos 7 dias, média de {avg} por dia.",
		"review.header":        "🔎 Revisão: {open} em aberto, {overdue} atrasado(s).",
		"resumo.header":        "Resumo rápido:",

		// Habits, goals, notes, projects, templates, bookmarks, pomodoro
		"habit.added":       "Hábito \"{name}\" registrado. Marca com /habito feito {name}.",
		"habit.checked":     "Hábito \"{name}\" marcado hoje. Sequência: {streak} dia(s). 🔥",
		"habit.list_header": "Seus hábitos:",
		"habit.empty":       "Você ainda não registrou hábitos.",
		"goal.added":        "Meta \"{name}\" registrada.",
		"goal.done":         "Meta \"{name}\" concluída! 🎯",
		"goal.list_header":  "Suas metas:",
		"goal.empty":        "Você ainda não tem metas.",
		"note.added":        "Nota salva.",
		"note.list_header":  "Suas notas:",
		"note.empty":        "Sem notas salvas.",
		"project.added":       "Projeto \"{name}\" criado.",
		"project.list_header": "Seus projetos:",
		"project.empty":       "Sem projetos.",
		"template.saved":       "Template \"{name}\" salvo.",
		"template.applied":     "Template \"{name}\" aplicado: lista \"{list}\" criada.",
		"template.list_header": "Templates disponíveis:",
		"template.empty":       "Sem templates salvos.",
		"bookmark.saved":       "Salvo nos favoritos.",
		"bookmark.list_header": "Seus favoritos:",
		"bookmark.empty":       "Sem favoritos.",
		"find.header":          "Resultados para \"{query}\":",
		"find.none":            "Não achei nada com \"{query}\".",
		"pomodoro.started":  "🍅 Pomodoro iniciado: 25 minutos. Foco!",
		"pomodoro.stopped":  "Pomodoro parado.",
		"pomodoro.status":   "🍅 Faltam {remaining} do pomodoro atual.",
		"pomodoro.none":     "Não tem nenhum pomodoro rolando.",
		"pomodoro.finished": "🍅 Pomodoro terminado! Faz uma pausa de 5 minutos.",

		// God mode
		"god.enabled":  "Modo diagnóstico ativado por 24h.",
		"god.disabled": "Modo diagnóstico desativado.",
		"god.denied":   "Não posso ajudar com esse tipo de pedido.",

		// Digest
		"digest.daily": "Bom dia! Você tem {reminders} lembrete(s) e {events} evento(s) para hoje.",

		"help": "Comandos:\n/lembrete — criar ou listar lembretes\n/recorrente — lembrete recorrente\n/list — listas e itens\n/feito — marcar item como feito\n/hoje /agenda /semana /mes — agenda\n/timeline /stats /resumo /produtividade /revisao — análises\n/habitos /metas /notas /projetos /templates — organização\n/save /bookmarks /find — favoritos e busca\n/pomodoro start|stop|status — foco\n/tz /lang /quiet — preferências\n/exportar /deletar_tudo /reset — dados\n/start /stop — pausar lembretes\n/pendente — pendentes de hoje\n\nTambém entendo linguagem natural: \"me lembra de pagar o aluguel dia 1 às 9h\".",
	},

	Spanish: {
		// Onboarding
		"onboarding.intro":        "¡Hola! Soy tu organizador personal: listas, recordatorios y agenda, todo por mensaje. Para ajustar los horarios, dime en qué ciudad estás — o, si prefieres, qué hora es ahí ahora.",
		"onboarding.time_only":    "Solo necesito una cosa: ¿qué hora es ahí ahora? (ej.: 15:30)",
		"onboarding.tz_confirm":   "Entonces ahí es {date}, {time}. ¿Correcto? (sí/no)",
		"onboarding.tz_saved":     "Perfecto, zona horaria guardada ({tz}). Tus recordatorios seguirán tu hora local.",
		"onboarding.ask_name":     "¿Cómo prefieres que te llame?",
		"onboarding.name_saved":   "¡Hecho, {name}! Escribe /help para ver todo lo que sé hacer.",
		"onboarding.tz_nudge":     "\n\nPD: todavía no sé tu zona horaria. Dime tu ciudad o tu hora local cuando quieras.",

		// Scheduling
		"reminder.scheduled":           "Recordatorio programado (id: {id}). Se enviará a las {time}.",
		"reminder.scheduled_recurring": "Recordatorio recurrente programado (id: {id}): {schedule}.",
		"reminder.duplicate":           "Ya existe un recordatorio igual programado (id {id}).",
		"reminder.min_interval":        "El intervalo mínimo para recordatorios recurrentes es de {hours}. Puedo programarlo con un intervalo mayor si quieres.",
		"reminder.past_date":           "Esa fecha ya pasó. ¿Quieres que lo programe para el año que viene ({date})? (1=sí 2=no)",
		"reminder.next_year_scheduled": "Programado para {date} (id: {id}).",
		"reminder.cancelled":           "Recordatorio {id} cancelado.",
		"reminder.not_found":           "No encontré ningún recordatorio con el id {id}.",
		"reminder.list_header":         "Tus recordatorios:",
		"reminder.list_empty":          "No tienes recordatorios programados.",
		"reminder.what_for":            "¿Para qué es el recordatorio? Dime qué quieres que te recuerde.",
		"reminder.completed":           "¡Bien! Lo marqué como hecho. ✅",
		"reminder.snoozed":             "Pospuesto 5 minutos. ⏰",
		"reminder.snooze_limit":        "Este recordatorio ya se pospuso 3 veces. ¿Quieres reprogramarlo o cancelarlo?",
		"reminder.reschedule_or_cancel": "¿Quieres reprogramar este recordatorio o cancelarlo? (1=reprogramar 2=cancelar)",
		"reminder.deadline_followup":   "⚠️ El plazo venció: {text}. ¿Ya lo resolviste?",
		"reminder.advance_question":    "¿Quieres que te avise con antelación? (sí/no)",
		"reminder.advance_amount":      "¿Con cuánta antelación? (ej.: 30 min, 2 horas, 1 día)",
		"reminder.stale_apology":       "Perdona: encontré {count} recordatorio(s) antiguos que ya habían pasado y los eliminé. Si alguno sigue haciendo falta, pídemelo otra vez.",

		// Quotas
		"quota.reminders_exceeded": "Alcanzaste el límite de 40 recordatorios para ese día. Elimina alguno con /lembrete antes de programar más.",
		"quota.events_exceeded":    "Alcanzaste el límite de 40 eventos para ese día.",
		"quota.combined_exceeded":  "Alcanzaste el límite de 80 elementos programados para ese día.",
		"quota.warning":            "\n\n(Atención: ya usaste el {percent}% del límite diario.)",

		// Flows
		"flow.need_time":       "¿A qué hora es {what}?",
		"flow.need_date":       "¿Qué día es {what}?",
		"flow.invalid_attempt": "No entendí ({attempt}/3). {question}",
		"flow.gave_up":         "Lo dejamos por ahora. Cuando quieras, pide el recordatorio con el día y la hora.",
		"recurring.confirm":    "Entonces: {description}. ¿Confirmas? (sí/no)",
		"recurring.until_when": "¿Hasta cuándo? (indefinido / fin de semana / fin de mes / fin de año / una fecha)",
		"recurring.saved":      "Hecho: {description} (id: {id}).",

		// Lists
		"list.created":          "Lista \"{name}\" creada.",
		"list.item_added":       "\"{item}\" añadido a la lista {name}.",
		"list.item_done":        "\"{item}\" marcado como hecho. ✅",
		"list.item_removed":     "\"{item}\" eliminado de la lista {name}.",
		"list.removed":          "Lista \"{name}\" eliminada.",
		"list.not_found":        "No encontré la lista \"{name}\".",
		"list.item_not_found":   "No encontré ese elemento en la lista {name}.",
		"list.empty":            "La lista {name} está vacía.",
		"list.header":           "📋 {name}:",
		"list.lists_header":     "Tus listas:",
		"list.no_lists":         "Todavía no tienes listas. Crea una con /list nombre add elemento.",
		"list.or_events_choice": "¿Lo quieres en una lista, como recordatorios, o ambos? (1=lista 2=recordatorios 3=ambos)",

		// Events
		"event.added":         "{tipo} \"{nome}\" guardado.",
		"event.requires_date": "Para eventos necesito una fecha concreta (día y hora).",
		"event.removed":       "\"{nome}\" eliminado.",
		"event.not_found":     "No encontré ese evento.",
		"event.list_header":   "Tus eventos:",
		"event.list_empty":    "No tienes eventos guardados.",

		// Confirmations
		"confirm.export":       "¿Quieres exportar todos tus datos? (1=sí 2=no)",
		"confirm.delete_all":   "Esto borra TODOS tus datos (listas, eventos, recordatorios). ¿Seguro? (1=sí 2=no)",
		"confirm.nuke":         "💣 Esto borra todo y reinicia tu cuenta. ¿Confirmas? (1=sí 2=no)",
		"confirm.completion":   "¿Ya resolviste \"{name}\"? (1=sí 2=no)",
		"confirm.recipe_list":  "¿Quieres que cree una lista de la compra con los ingredientes? (1=sí 2=no)",
		"confirm.cancelled":    "Ok, no hago nada.",
		"confirm.unknown":      "Responde 1 (sí) o 2 (no), por favor.",
		"export.done":          "Exportación lista: {summary}",
		"delete_all.done":      "Todos tus datos fueron borrados.",
		"nuke.done":            "Cuenta reiniciada. Cuando quieras, empezamos de nuevo.",

		// Safety
		"safety.too_many":     "Estás enviando mensajes demasiado rápido. Dame un minuto. 🙏",
		"safety.blocked":      "No puedo ayudar con ese tipo de pedido.",
		"safety.injection":    "Mantengo mi papel: soy tu organizador de listas y recordatorios.",
		"safety.out_of_scope": "Yo me ocupo de listas, recordatorios y agenda. ¡Para eso cuenta conmigo! Mira el /help.",
		"safety.degraded":     "Tengo dificultades técnicas en este momento. Los comandos de /help siguen funcionando.",

		// Agent
		"agent.calling_ack":  "¡Aquí estoy! ¿En qué te ayudo?",
		"agent.error":        "El servicio está temporalmente limitado. Inténtalo de nuevo en un rato.",
		"lang.switched":      "Hecho, te hablo en español.",
		"tz.set":             "Zona horaria actualizada a {tz}.",
		"tz.current":         "Tu zona horaria es {tz}. Hora local: {time}.",
		"tz.invalid":         "No reconocí esa zona horaria. Ejemplo: Europe/Madrid.",
		"quiet.set":          "Periodo de silencio definido: {start}–{end}. No envío recordatorios en ese intervalo.",
		"quiet.cleared":      "Periodo de silencio eliminado.",
		"reset.done":         "Preferencias limpiadas. Tus datos (listas, eventos, recordatorios) quedan como están.",
		"start.done":         "Recordatorios activados. 🚀",
		"stop.done":          "Recordatorios en pausa. Escribe /start para retomarlos.",
		"pendente.header":    "Pendientes para hoy:",
		"pendente.empty":     "Nada pendiente para hoy. 🎉",

		// Recaps
		"recap.weekly":  "📊 Resumen de la semana: {done} completado(s), {added} añadido(s), {events} evento(s).",
		"recap.monthly": "📅 Resumen del mes: {done} completado(s), {added} añadido(s), {events} evento(s).",

		// Analytics
		"stats.summary":        "📈 Totales: {lists} listas, {items} elementos ({done} hechos), {events} eventos, {reminders} recordatorios activos.",
		"agenda.header":        "🗓️ Agenda {period}:",
		"agenda.empty":         "Nada programado {period}.",
		"timeline.header":      "🕒 Actividad reciente:",
		"timeline.empty":       "Sin actividad registrada.",
		"productivity.summary": "💪 Productividad: {done} completado(s) en los últimos 7 días, media de {avg} por día.",
		"review.header":        "🔎 Revisión: {open} abiertos, {overdue} atrasados.",
		"resumo.header":        "Resumen rápido:",

		// Habits, goals, notes, projects, templates, bookmarks, pomodoro
		"habit.added":       "Hábito \"{name}\" registrado. Márcalo con /habito feito {name}.",
		"habit.checked":     "Hábito \"{name}\" marcado hoy. Racha: {streak} día(s). 🔥",
		"habit.list_header": "Tus hábitos:",
		"habit.empty":       "Todavía no registraste hábitos.",
		"goal.added":        "Meta \"{name}\" registrada.",
		"goal.done":         "¡Meta \"{name}\" completada! 🎯",
		"goal.list_header":  "Tus metas:",
		"goal.empty":        "Todavía no tienes metas.",
		"note.added":        "Nota guardada.",
		"note.list_header":  "Tus notas:",
		"note.empty":        "Sin notas guardadas.",
		"project.added":       "Proyecto \"{name}\" creado.",
		"project.list_header": "Tus proyectos:",
		"project.empty":       "Sin proyectos.",
		"template.saved":       "Plantilla \"{name}\" guardada.",
		"template.applied":     "Plantilla \"{name}\" aplicada: lista \"{list}\" creada.",
		"template.list_header": "Plantillas disponibles:",
		"template.empty":       "Sin plantillas guardadas.",
		"bookmark.saved":       "Guardado en favoritos.",
		"bookmark.list_header": "Tus favoritos:",
		"bookmark.empty":       "Sin favoritos.",
		"find.header":          "Resultados para \"{query}\":",
		"find.none":            "No encontré nada con \"{query}\".",
		"pomodoro.started":  "🍅 Pomodoro iniciado: 25 minutos. ¡A concentrarse!",
		"pomodoro.stopped":  "Pomodoro detenido.",
		"pomodoro.status":   "🍅 Quedan {remaining} del pomodoro actual.",
		"pomodoro.none":     "No hay ningún pomodoro en curso.",
		"pomodoro.finished": "🍅 ¡Pomodoro terminado! Tómate una pausa de 5 minutos.",

		// God mode
		"god.enabled":  "Modo diagnóstico activado por 24h.",
		"god.disabled": "Modo diagnóstico desactivado.",
		"god.denied":   "No puedo ayudar con ese tipo de pedido.",

		// Digest
		"digest.daily": "¡Buenos días! Tienes {reminders} recordatorio(s) y {events} evento(s) para hoy.",

		"help": "Comandos:\n/lembrete — crear o listar recordatorios\n/recorrente — recordatorio recurrente\n/list — listas y elementos\n/feito — marcar elemento como hecho\n/hoje /agenda /semana /mes — agenda\n/timeline /stats /resumo /produtividade /revisao — análisis\n/habitos /metas /notas /projetos /templates — organización\n/save /bookmarks /find — favoritos y búsqueda\n/pomodoro start|stop|status — concentración\n/tz /lang /quiet — preferencias\n/exportar /deletar_tudo /reset — datos\n/start /stop — pausar recordatorios\n/pendente — pendientes de hoy\n\nTambién entiendo lenguaje natural: \"recuérdame pagar el alquiler el día 1 a las 9\".",
	},

	English: {
		// Onboarding
		"onboarding.intro":        "Hi! I'm your personal organizer: lists, reminders and agenda, all over chat. To get your times right, tell me which city you're in — or, if you prefer, what time it is there right now.",
		"onboarding.time_only":    "I just need one thing: what time is it there right now? (e.g. 15:30)",
		"onboarding.tz_confirm":   "So, {date}, {time}. Correct? (yes/no)",
		"onboarding.tz_saved":     "Perfect, timezone saved ({tz}). Your reminders will follow your local time.",
		"onboarding.ask_name":     "What would you like me to call you?",
		"onboarding.name_saved":   "Done, {name}! Send /help to see everything I can do.",
		"onboarding.tz_nudge":     "\n\nPS: I still don't know your timezone. Tell me your city or your local time whenever you like.",

		// Scheduling
		"reminder.scheduled":           "Reminder scheduled (id: {id}). It will be sent at {time}.",
		"reminder.scheduled_recurring": "Recurring reminder scheduled (id: {id}): {schedule}.",
		"reminder.duplicate":           "An identical reminder is already scheduled (id {id}).",
		"reminder.min_interval":        "The minimum interval for recurring reminders is {hours}. I can schedule it with a longer interval if you like.",
		"reminder.past_date":           "That date has already passed. Want me to schedule it for next year ({date})? (1=yes 2=no)",
		"reminder.next_year_scheduled": "Scheduled for {date} (id: {id}).",
		"reminder.cancelled":           "Reminder {id} cancelled.",
		"reminder.not_found":           "I couldn't find a reminder with id {id}.",
		"reminder.list_header":         "Your reminders:",
		"reminder.list_empty":          "You have no scheduled reminders.",
		"reminder.what_for":            "What's the reminder for? Tell me what you want me to remind you about.",
		"reminder.completed":           "Nice! Marked as done. ✅",
		"reminder.snoozed":             "Snoozed for 5 minutes. ⏰",
		"reminder.snooze_limit":        "This reminder has already been snoozed 3 times. Want to reschedule it or cancel?",
		"reminder.reschedule_or_cancel": "Do you want to reschedule this reminder or cancel it? (1=reschedule 2=cancel)",
		"reminder.deadline_followup":   "⚠️ The deadline passed: {text}. Have you taken care of it?",
		"reminder.advance_question":    "Do you want a heads-up in advance? (yes/no)",
		"reminder.advance_amount":      "How far in advance? (e.g. 30 min, 2 hours, 1 day)",
		"reminder.stale_apology":       "Sorry about this: I found {count} old reminder(s) whose time had already passed and removed them. If any still matter, just ask again.",

		// Quotas
		"quota.reminders_exceeded": "You've reached the limit of 40 reminders for that day. Remove one with /lembrete before scheduling more.",
		"quota.events_exceeded":    "You've reached the limit of 40 events for that day.",
		"quota.combined_exceeded":  "You've reached the limit of 80 scheduled items for that day.",
		"quota.warning":            "\n\n(Heads-up: you've used {percent}% of the daily scheduling limit.)",

		// Flows
		"flow.need_time":       "What time is {what}?",
		"flow.need_date":       "What day is {what}?",
		"flow.invalid_attempt": "I didn't get that ({attempt}/3). {question}",
		"flow.gave_up":         "Let's leave it for now. Whenever you like, ask for the reminder with the day and time.",
		"recurring.confirm":    "So: {description}. Confirm? (yes/no)",
		"recurring.until_when": "Until when? (indefinitely / end of week / end of month / end of year / a date)",
		"recurring.saved":      "Done: {description} (id: {id}).",

		// Lists
		"list.created":          "List \"{name}\" created.",
		"list.item_added":       "\"{item}\" added to list {name}.",
		"list.item_done":        "\"{item}\" marked as done. ✅",
		"list.item_removed":     "\"{item}\" removed from list {name}.",
		"list.removed":          "List \"{name}\" removed.",
		"list.not_found":        "I couldn't find the list \"{name}\".",
		"list.item_not_found":   "I couldn't find that item in list {name}.",
		"list.empty":            "List {name} is empty.",
		"list.header":           "📋 {name}:",
		"list.lists_header":     "Your lists:",
		"list.no_lists":         "You don't have any lists yet. Create one with /list name add item.",
		"list.or_events_choice": "Do you want that as a list, as reminders, or both? (1=list 2=reminders 3=both)",

		// Events
		"event.added":         "{tipo} \"{nome}\" saved.",
		"event.requires_date": "For events I need a concrete date (day and time).",
		"event.removed":       "\"{nome}\" removed.",
		"event.not_found":     "I couldn't find that event.",
		"event.list_header":   "Your events:",
		"event.list_empty":    "You have no saved events.",

		// Confirmations
		"confirm.export":       "Do you want to export all your data? (1=yes 2=no)",
		"confirm.delete_all":   "This deletes ALL your data (lists, events, reminders). Are you sure? (1=yes 2=no)",
		"confirm.nuke":         "💣 This wipes everything and resets your account. Really confirm? (1=yes 2=no)",
		"confirm.completion":   "Did you take care of \"{name}\"? (1=yes 2=no)",
		"confirm.recipe_list":  "Want me to create a shopping list with the ingredients? (1=yes 2=no)",
		"confirm.cancelled":    "Ok, doing nothing.",
		"confirm.unknown":      "Please answer 1 (yes) or 2 (no).",
		"export.done":          "Export ready: {summary}",
		"delete_all.done":      "All your data has been deleted.",
		"nuke.done":            "Account reset. Whenever you like, we start fresh.",

		// Safety
		"safety.too_many":     "You're sending messages too fast. Give me a minute. 🙏",
		"safety.blocked":      "I can't help with that kind of request.",
		"safety.injection":    "I keep my role: I'm your lists-and-reminders organizer.",
		"safety.out_of_scope": "I handle lists, reminders and your agenda. For that, count on me! Check /help for examples.",
		"safety.degraded":     "I'm having technical difficulties right now. The /help commands keep working.",

		// Agent
		"agent.calling_ack":  "I'm here! How can I help?",
		"agent.error":        "The service is temporarily limited. Please try again shortly.",
		"lang.switched":      "Done, I'll speak English from now on.",
		"tz.set":             "Timezone updated to {tz}.",
		"tz.current":         "Your timezone is {tz}. Local time: {time}.",
		"tz.invalid":         "I didn't recognize that timezone. Example: Europe/London.",
		"quiet.set":          "Quiet window set: {start}–{end}. I won't send reminders in that interval.",
		"quiet.cleared":      "Quiet window removed.",
		"reset.done":         "Preferences cleared. Your data (lists, events, reminders) stays as is.",
		"start.done":         "Reminders enabled. 🚀",
		"stop.done":          "Reminders paused. Send /start to resume.",
		"pendente.header":    "Pending for today:",
		"pendente.empty":     "Nothing pending today. 🎉",

		// Recaps
		"recap.weekly":  "📊 Week recap: {done} completed, {added} added, {events} event(s).",
		"recap.monthly": "📅 Month recap: {done} completed, {added} added, {events} event(s).",

		// Analytics
		"stats.summary":        "📈 Totals: {lists} lists, {items} items ({done} done), {events} events, {reminders} active reminders.",
		"agenda.header":        "🗓️ Agenda {period}:",
		"agenda.empty":         "Nothing scheduled {period}.",
		"timeline.header":      "🕒 Recent activity:",
		"timeline.empty":       "No recorded activity.",
		"productivity.summary": "💪 Productivity: {done} completed in the last 7 days, averaging {avg} per day.",
		"review.header":        "🔎 Review: {open} open, {overdue} overdue.",
		"resumo.header":        "Quick summary:",

		// Habits, goals, notes, projects, templates, bookmarks, pomodoro
		"habit.added":       "Habit \"{name}\" registered. Check it with /habito feito {name}.",
		"habit.checked":     "Habit \"{name}\" checked for today. Streak: {streak} day(s). 🔥",
		"habit.list_header": "Your habits:",
		"habit.empty":       "You haven't registered any habits yet.",
		"goal.added":        "Goal \"{name}\" registered.",
		"goal.done":         "Goal \"{name}\" completed! 🎯",
		"goal.list_header":  "Your goals:",
		"goal.empty":        "You don't have goals yet.",
		"note.added":        "Note saved.",
		"note.list_header":  "Your notes:",
		"note.empty":        "No saved notes.",
		"project.added":       "Project \"{name}\" created.",
		"project.list_header": "Your projects:",
		"project.empty":       "No projects.",
		"template.saved":       "Template \"{name}\" saved.",
		"template.applied":     "Template \"{name}\" applied: list \"{list}\" created.",
		"template.list_header": "Available templates:",
		"template.empty":       "No saved templates.",
		"bookmark.saved":       "Saved to bookmarks.",
		"bookmark.list_header": "Your bookmarks:",
		"bookmark.empty":       "No bookmarks.",
		"find.header":          "Results for \"{query}\":",
		"find.none":            "I found nothing for \"{query}\".",
		"pomodoro.started":  "🍅 Pomodoro started: 25 minutes. Focus!",
		"pomodoro.stopped":  "Pomodoro stopped.",
		"pomodoro.status":   "🍅 {remaining} left on the current pomodoro.",
		"pomodoro.none":     "No pomodoro is running.",
		"pomodoro.finished": "🍅 Pomodoro finished! Take a 5-minute break.",

		// God mode
		"god.enabled":  "Diagnostic mode enabled for 24h.",
		"god.disabled": "Diagnostic mode disabled.",
		"god.denied":   "I can't help with that kind of request.",

		// Digest
		"digest.daily": "Good morning! You have {reminders} reminder(s) and {events} event(s) today.",

		"help": "Commands:\n/lembrete — create or list reminders\n/recorrente — recurring reminder\n/list — lists and items\n/feito — mark an item as done\n/hoje /agenda /semana /mes — agenda\n/timeline /stats /resumo /produtividade /revisao — analytics\n/habitos /metas /notas /projetos /templates — organizing\n/save /bookmarks /find — bookmarks and search\n/pomodoro start|stop|status — focus\n/tz /lang /quiet — preferences\n/exportar /deletar_tudo /reset — data\n/start /stop — pause reminders\n/pendente — today's pending items\n\nI also understand natural language: \"remind me to pay rent on the 1st at 9am\".",
	},
}
