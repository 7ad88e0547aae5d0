package filterconfig

import "github.com/ProyectAquanqa/panelsearch"

var statusOptions = []Option{
	{Value: "", Label: "Todos"},
	{Value: "true", Label: "Activos"},
	{Value: "false", Label: "Inactivos"},
}

// Almuerzos is the daily lunch menu list.
var Almuerzos = Descriptor{
	Entity:       "almuerzos",
	SearchFields: []string{"entrada", "plato_fondo", "refresco", "postre", "dieta"},
	FilterGroups: []FilterGroup{
		{Key: panelsearch.KeyStatus, Title: "Estado", Type: Buttons, Field: "active", Match: MatchBoolean, Options: statusOptions},
		{Key: panelsearch.KeyDiet, Title: "Dieta", Type: Buttons, Field: "dieta", Options: []Option{
			{Value: "", Label: "Todos"},
			{Value: SelectWith, Label: "Con dieta"},
			{Value: SelectWithout, Label: "Sin dieta"},
		}},
		{Key: panelsearch.KeyDateRange, Title: "Fecha", Type: DateRangeGroup, Field: "fecha"},
	},
	CustomFilters: map[string]panelsearch.Predicate{
		panelsearch.KeyDiet: Presence("dieta"),
	},
	Actions: []Action{
		{ID: ActionCreate, Label: "Nuevo almuerzo", Icon: "plus", Variant: "primary"},
		{ID: ActionExport, Label: "Exportar", Icon: "download", Variant: "secondary"},
	},
	DateField: "fecha",
}

// Usuarios is the user administration list.
var Usuarios = Descriptor{
	Entity: "usuarios",
	SearchFields: []string{
		"dni", "first_name", "last_name", "email", "username",
		"area_detail.nombre", "cargo_detail.nombre",
	},
	FilterGroups: []FilterGroup{
		{Key: panelsearch.KeyStatus, Title: "Estado", Type: Buttons, Field: "is_active", Match: MatchBoolean, Options: statusOptions},
		{Key: panelsearch.KeyCategory, Title: "Tipo de usuario", Type: Dropdown, Field: "tipo_usuario", Options: []Option{
			{Value: "", Label: "Todos"},
			{Value: "ADMIN", Label: "Administrador"},
			{Value: "TRABAJADOR", Label: "Trabajador"},
		}},
	},
	Actions: []Action{
		{ID: ActionCreate, Label: "Nuevo usuario", Icon: "user-plus", Variant: "primary"},
		{ID: ActionImport, Label: "Importar", Icon: "upload", Variant: "secondary"},
	},
	DateField: "date_joined",
}

// Perfiles is the permission profile list.
var Perfiles = Descriptor{
	Entity:       "perfiles",
	SearchFields: []string{"name", "description"},
	Actions: []Action{
		{ID: ActionCreate, Label: "Nuevo perfil", Icon: "shield-plus", Variant: "primary"},
	},
}

// Auditoria is the read-only audit log.
var Auditoria = Descriptor{
	Entity:       "auditoria",
	SearchFields: []string{"usuario_detail.username", "accion", "modulo", "descripcion", "ip_address"},
	FilterGroups: []FilterGroup{
		{Key: panelsearch.KeyCategory, Title: "Acción", Type: Dropdown, Field: "accion", Options: []Option{
			{Value: "", Label: "Todas"},
			{Value: "CREATE", Label: "Creación"},
			{Value: "UPDATE", Label: "Actualización"},
			{Value: "DELETE", Label: "Eliminación"},
			{Value: "LOGIN", Label: "Inicio de sesión"},
		}},
		{Key: panelsearch.KeyDateRange, Title: "Fecha", Type: DateRangeGroup, Field: "fecha_hora"},
	},
	Actions: []Action{
		{ID: ActionRefresh, Label: "Actualizar", Icon: "refresh", Variant: "secondary"},
		{ID: ActionExport, Label: "Exportar", Icon: "download", Variant: "secondary"},
	},
	DateField: "fecha_hora",
}

// Eventos is the company event list.
var Eventos = Descriptor{
	Entity:       "eventos",
	SearchFields: []string{"titulo", "descripcion", "ubicacion"},
	FilterGroups: []FilterGroup{
		{Key: panelsearch.KeyStatus, Title: "Estado", Type: Buttons, Field: "is_active", Match: MatchBoolean, Options: statusOptions},
		{Key: panelsearch.KeyDateRange, Title: "Fecha", Type: DateRangeGroup, Field: "fecha"},
	},
	Actions: []Action{
		{ID: ActionCreate, Label: "Nuevo evento", Icon: "calendar-plus", Variant: "primary"},
	},
	DateField: "fecha",
}

// Chatbot is the chatbot knowledge base list.
var Chatbot = Descriptor{
	Entity:       "chatbot",
	SearchFields: []string{"question", "answer", "keywords", "category_detail.name"},
	FilterGroups: []FilterGroup{
		// options are filled from the categories endpoint at runtime
		{Key: panelsearch.KeyCategory, Title: "Categoría", Type: Dropdown, Field: "category"},
		{Key: panelsearch.KeyStatus, Title: "Estado", Type: Buttons, Field: "is_active", Match: MatchBoolean, Options: statusOptions},
		{Key: panelsearch.KeyEmbedding, Title: "Embedding", Type: Buttons, Field: "has_embedding", Match: MatchBoolean, Options: []Option{
			{Value: "", Label: "Todos"},
			{Value: "true", Label: "Con embedding"},
			{Value: "false", Label: "Sin embedding"},
		}},
	},
	Actions: []Action{
		{ID: ActionCreate, Label: "Nueva pregunta", Icon: "plus", Variant: "primary"},
		{ID: "regenerate", Label: "Regenerar embeddings", Icon: "sparkles", Variant: "secondary"},
	},
	DateField: "updated_at",
}
