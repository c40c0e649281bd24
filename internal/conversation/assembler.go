package conversation

import "github.com/mzhao/synogpt/internal/provider"

// Assembler turns a session's history into the ordered request sequence
// for the completion provider. The configured system prompt is available
// but not prepended unless explicitly enabled; the relay has historically
// sent bare history.
type Assembler struct {
	systemPrompt string
	prepend      bool
}

func NewAssembler(systemPrompt string, prependSystemPrompt bool) *Assembler {
	return &Assembler{systemPrompt: systemPrompt, prepend: prependSystemPrompt}
}

// Build returns a fresh slice in conversation order. Calling it twice on
// the same history yields identical sequences.
func (a *Assembler) Build(history []provider.Message) []provider.Message {
	out := make([]provider.Message, 0, len(history)+1)
	if a.prepend && a.systemPrompt != "" {
		out = append(out, provider.Message{Role: provider.RoleSystem, Content: a.systemPrompt})
	}
	return append(out, history...)
}
