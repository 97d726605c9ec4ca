package ports

// Display is a text surface the engine writes to. Text returns what is
// currently shown, so hosts can render it.
type Display interface {
	SetText(text string)
	Text() string
}
