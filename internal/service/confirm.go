package service

// ─────────────────────────────────────────────────────────────
// Confirmer: asks the user before destructive operations
// ─────────────────────────────────────────────────────────────

// Confirmer asks the user to approve a destructive action. The App
// implements it with a native message dialog; the MCP server routes it
// through its approval queue.
type Confirmer interface {
	Confirm(title, message string) bool
}

// ConfirmFunc adapts a plain function to a Confirmer.
type ConfirmFunc func(title, message string) bool

func (f ConfirmFunc) Confirm(title, message string) bool { return f(title, message) }

// MockConfirmer answers every prompt with Answer and records the prompts.
type MockConfirmer struct {
	Answer  bool
	Prompts []string
}

func (m *MockConfirmer) Confirm(title, message string) bool {
	m.Prompts = append(m.Prompts, title+": "+message)
	return m.Answer
}
