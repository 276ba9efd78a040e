package translation

import (
	"regexp"
	"strconv"
	"strings"

	"codeberg.org/maclinea/ledgerlingo/internal/batch"
)

// SystemPrompt describes the translator role and the reply format
const SystemPrompt = `Você é um tradutor profissional PT-BR -> IT-IT especializado em lançamentos bancários/financeiros.

REGRAS:
1) Traduza para italiano NATURAL e objetivo.
2) Mantenha siglas e termos brasileiros: FGTS, INSS, IOF, PIX, TED, DOC, RJ (não traduza).
3) Mantenha nomes próprios/empresas/bancos como estão.
4) Não adicione explicações, nem aspas, nem bullets.
5) Preserve números e quantidades.
6) Seja conciso (ideal <= 80 caracteres).

FORMATO DE SAÍDA (obrigatório, um por linha):
ID: traduzione`

const userInstruction = `Traduza os itens abaixo para italiano. Responda APENAS no formato "ID: traduzione" (um por linha).`

var responseLine = regexp.MustCompile(`^(\d+):\s*(.+)$`)

// BuildUserPrompt lists every item as "id: text" below the format reminder
func BuildUserPrompt(items []batch.Item) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = strconv.Itoa(item.ID) + ": " + item.Text
	}
	return userInstruction + "\n\n" + strings.Join(lines, "\n")
}

// ParseResponse extracts "id: translation" pairs from the reply. Lines that
// do not match, ids that overflow and blank translations are skipped. A
// repeated id keeps its last translation.
func ParseResponse(content string) map[int]string {
	result := make(map[int]string)
	for _, line := range strings.Split(content, "\n") {
		m := responseLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}
		result[id] = text
	}
	return result
}
