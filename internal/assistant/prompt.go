package assistant

import (
	"fmt"
	"strings"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
)

// PromptInput bundles everything the prompt template interpolates.
type PromptInput struct {
	UserMessage string
	History     []memory.Message
	Knowledge   []knowledge.Snippet
	Context     Context
}

// BuildPrompt renders the Portuguese support/pre-sales template. The
// instruction block is fixed; only the session metadata, history,
// snippets and current message vary.
func BuildPrompt(in PromptInput) string {
	return fmt.Sprintf(`
Você é o Pro-founder Agent em modo de suporte e pré-venda.

Contexto da sessão:
- ID da sessão: %s
- Idioma do usuário: %s
- Nível do usuário: %s
- Lead: %s

Histórico recente:
%s

Conhecimento recuperado:
%s

Mensagem atual do usuário:
%s

Instruções de resposta:
- Fale no idioma do usuário indicado.
- Responda com clareza, cite dados do conhecimento apenas quando forem relevantes, e indique próximos passos quando fizer sentido.
- Se perceber alta intenção de compra, sugira uma conexão humana e prepare dados para handover.
- Reforce que toda publicação depende de aprovação explícita do usuário.
`,
		in.Context.SessionID,
		in.Context.Locale,
		in.Context.UserTier,
		formatLead(in.Context.Lead),
		formatHistory(in.History),
		formatKnowledge(in.Knowledge),
		in.UserMessage,
	)
}

func formatLead(lead *LeadInformation) string {
	if lead == nil {
		return "não identificado"
	}
	return fmt.Sprintf("status %s, enviado em %s", lead.Status, lead.SubmittedAt)
}

func formatHistory(history []memory.Message) string {
	if len(history) == 0 {
		return "Sem histórico relevante disponível."
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		prefix := "Assistente"
		if msg.Role == memory.RoleUser {
			prefix = "Usuário"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", prefix, msg.Content))
	}
	return strings.Join(lines, "\n")
}

func formatKnowledge(snippets []knowledge.Snippet) string {
	if len(snippets) == 0 {
		return "Nenhum trecho do knowledge base foi recuperado. Use apenas informações confirmadas na conversa."
	}

	lines := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		lines = append(lines, fmt.Sprintf("- (%s) %s: %s", snippet.Category, snippet.Title, snippet.Content))
	}
	return strings.Join(lines, "\n")
}
