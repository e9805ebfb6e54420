package ledger

// Changes is a set of record kinds modified by a committed operation.
type Changes uint8

const (
	AccountsChanged Changes = 1 << iota
	CategoriesChanged
	TransactionsChanged
	SettingsChanged
)

// Observer is called after an operation commits. It runs synchronously on the writer's
// goroutine, after the writer lock is released, so it may call back into the engine.
type Observer func(Changes)

// Subscribe registers o and returns a function that removes it.
func (e *Engine) Subscribe(o Observer) (cancel func()) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = o
	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		delete(e.observers, id)
	}
}

func (e *Engine) notify(c Changes) {
	if c == 0 {
		return
	}
	e.obsMu.Lock()
	observers := make([]Observer, 0, len(e.observers))
	for _, o := range e.observers {
		observers = append(observers, o)
	}
	e.obsMu.Unlock()
	for _, o := range observers {
		o(c)
	}
}
