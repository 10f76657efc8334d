package analyze

import (
	"fmt"
	"strings"

	"github.com/alnah/go-aula/internal/format"
	"github.com/alnah/go-aula/internal/transcript"
)

// SystemInstruction frames the model as an educational content analyst.
const SystemInstruction = `Você é um especialista em análise de conteúdo educacional técnico.
Sua função é extrair informações estruturadas de transcrições de aulas técnicas,
identificando conceitos, tecnologias, comandos e organizando o conhecimento de forma didática.

Seja preciso, técnico e educativo. Extraia apenas informações que estão explicitamente
presentes na transcrição. Mantenha consistência terminológica.`

var analysisSteps = []string{
	"Leia toda a transcrição com atenção",
	"Identifique o tema principal e subtemas",
	"Extraia tecnologias, ferramentas e frameworks mencionados",
	"Capture comandos de código, terminal ou configurações",
	"Identifique conceitos técnicos explicados e suas definições",
	"Determine o nível de dificuldade baseado na complexidade dos conceitos",
	"Sugira pré-requisitos baseado nas tecnologias e conceitos apresentados",
	"Defina objetivos de aprendizado específicos e mensuráveis",
}

// BuildPrompt embeds the budgeted text and the transcript's statistics.
func BuildPrompt(tr transcript.Transcript, text string) string {
	var b strings.Builder
	b.WriteString("Analise esta transcrição de aula técnica em português e extraia informações estruturadas:\n\n")

	b.WriteString("CONTEXTO DA AULA:\n")
	fmt.Fprintf(&b, "- Duração da gravação: %s minutos\n", format.Minutes(tr.Duration))
	fmt.Fprintf(&b, "- Palavras transcritas: %s\n", format.Thousands(len(tr.Words)))
	fmt.Fprintf(&b, "- Segmentos de áudio: %d\n\n", len(tr.Segments))

	b.WriteString("TRANSCRIÇÃO COMPLETA:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString("INSTRUÇÕES PARA ANÁLISE:\n")
	for i, step := range analysisSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\nSeja detalhado na análise e precise nas informações extraídas.")
	return b.String()
}
