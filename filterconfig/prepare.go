package filterconfig

// Well known action identifiers.
const (
	ActionCreate  = "create"
	ActionExport  = "export"
	ActionImport  = "import"
	ActionRefresh = "refresh"
)

// Handlers are the runtime callbacks a view provides for its toolbar.
type Handlers struct {
	OnCreate  func()
	OnExport  func()
	OnImport  func()
	OnRefresh func()

	// ByID covers entity specific actions. It wins over the named fields.
	ByID map[string]func()
}

func (h Handlers) lookup(id string) func() {
	if fn, ok := h.ByID[id]; ok {
		return fn
	}
	switch id {
	case ActionCreate:
		return h.OnCreate
	case ActionExport:
		return h.OnExport
	case ActionImport:
		return h.OnImport
	case ActionRefresh:
		return h.OnRefresh
	}
	return nil
}

// Prepare returns an independent copy of template with the handlers
// attached to its actions. template is never modified, so the built-in
// descriptors can be prepared any number of times.
func Prepare(template Descriptor, handlers Handlers) Descriptor {
	out := template.Clone()
	for i := range out.Actions {
		if fn := handlers.lookup(out.Actions[i].ID); fn != nil {
			out.Actions[i].Handler = fn
		}
	}
	return out
}
