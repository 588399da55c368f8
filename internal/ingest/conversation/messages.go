package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

const (
	msgWelcome = "Soy tu bot ingestador.\n" +
		"Pégame los equipos como: «Equipo A vs Equipo B».\n" +
		"Después te pediré selección, cuota y stake.\n\n" +
		"Comandos: /apuesta, /cancel\n" +
		"Actualizar resultado rápido: /B<betId> G|P|N (ej. /BABC123 P)"

	msgFallback = "Envía «Equipo A vs Equipo B» para empezar, o /start."

	msgBadTeams = "Formato no válido. Escribe: «Equipo A vs Equipo B»."

	msgAskSelection  = "Selecciona la apuesta real que jugaste:"
	msgBadSelection  = "Opción no válida. Elige de teclado o «Otro»."
	msgAskFreeText   = "Escribe la selección exacta (texto libre):"
	msgAskOdds       = "Escribe la cuota final (ej. 1.85 o 1,85):"
	msgBadOdds       = "Formato de cuota no válido. Prueba con 1.85 o 1,85."
	msgAskStake      = "¿Stake?"
	msgAskAmount     = "Escribe el importe (ej. 1.00):"
	msgBadStake      = "Formato no válido. Escribe un número (ej. 1.00)."
	msgAskConfirm    = "¿Envío la apuesta a la hoja?"
	msgCancelled     = "Cancelado. Cuando quieras, envía «Equipo A vs Equipo B»."
	msgNotAllowed    = "No tienes permiso para /apuesta."
	msgBadResultCode = "Resultado no válido. Usa G (ganada), P (perdida) o N (nula)."

	msgDuplicateWarn  = "⚠️ Duplicado detectado (no detengo la escritura, sólo aviso)."
	msgDuplicateAbort = "⚠️ Duplicado detectado: esta apuesta ya fue enviada. No se ha escrito nada."
	msgDedupeDown     = "⚠️ No pude consultar la memoria de duplicados; sigo sin protección anti-duplicados."

	choiceOther   = "Otro"
	choiceConfirm = "Confirmar"
	choiceCancel  = "Cancelar"
)

var selectionChoices = [][]string{
	{"1", "X", "2"},
	{"1X", "X2", "12"},
	{choiceOther},
}

var confirmChoices = [][]string{{choiceConfirm, choiceCancel}}

func stakeChoices(defaultStake float64) [][]string {
	return [][]string{
		{fmt.Sprintf("Usar %s€", formatAmount(defaultStake))},
		{"Cambiar importe"},
	}
}

// formatAmount renders a decimal without a trailing zero tail (1 → "1",
// 1.85 → "1.85"), matching how amounts read on the keyboard and summaries.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func commitSummary(d *models.Draft, issues []string) string {
	var b strings.Builder
	b.WriteString("✅ Enviado a Google Sheets:\n")
	fmt.Fprintf(&b, "📅 Fecha: %s\n", d.Date)
	fmt.Fprintf(&b, "🏟️ Partido: %s\n", d.Teams)
	fmt.Fprintf(&b, "🎯 Selección: %s\n", d.Selection)
	fmt.Fprintf(&b, "🧮 Cuota final: %s\n", formatAmount(d.Odds))
	fmt.Fprintf(&b, "💶 Stake: %s €\n", formatAmount(d.Stake))
	fmt.Fprintf(&b, "🆔 ID: %s\n", d.BetID)
	fmt.Fprintf(&b, "📌 Resultado: %s", models.ResultPending)
	if len(issues) > 0 {
		b.WriteString("\n\n⚠️ Incidencias:\n- ")
		b.WriteString(strings.Join(issues, "\n- "))
	}
	return b.String()
}

func confirmSummary(d *models.Draft) string {
	var b strings.Builder
	b.WriteString("Revisa la apuesta:\n")
	fmt.Fprintf(&b, "📅 Fecha: %s\n", d.Date)
	fmt.Fprintf(&b, "🏟️ Partido: %s\n", d.Teams)
	fmt.Fprintf(&b, "🎯 Selección: %s\n", d.Selection)
	fmt.Fprintf(&b, "🧮 Cuota final: %s\n", formatAmount(d.Odds))
	fmt.Fprintf(&b, "💶 Stake: %s €\n\n", formatAmount(d.Stake))
	b.WriteString(msgAskConfirm)
	return b.String()
}
