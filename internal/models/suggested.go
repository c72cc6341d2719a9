package models

// SuggestedHabit is an entry of the catalog users can activate in one step.
type SuggestedHabit struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
	Icon  string `json:"icon" yaml:"icon"`
}

var defaultSuggested = []SuggestedHabit{
	{ID: "water", Title: "Beber agua", Desc: "Mantén tu cuerpo hidratado", Icon: "💧"},
	{ID: "read10", Title: "Leer 10 minutos", Desc: "Expande tu conocimiento", Icon: "📘"},
	{ID: "meditate5", Title: "Meditar 5 minutos", Desc: "Calma tu mente", Icon: "🧘"},
	{ID: "walk15", Title: "Caminar 15 minutos", Desc: "Mueve tu cuerpo", Icon: "🚶"},
	{ID: "eatHealthy", Title: "Comer saludable", Desc: "Nutre tu cuerpo", Icon: "🥗"},
	{ID: "sleep8", Title: "Dormir 8 horas", Desc: "Descansa bien", Icon: "😴"},
	{ID: "journal", Title: "Escribir diario", Desc: "Reflexiona sobre tu día", Icon: "📝"},
	{ID: "create", Title: "Crear algo", Desc: "Expresa tu creatividad", Icon: "🎨"},
}

// DefaultSuggested returns a fresh copy of the built-in catalog.
func DefaultSuggested() []SuggestedHabit {
	out := make([]SuggestedHabit, len(defaultSuggested))
	copy(out, defaultSuggested)
	return out
}
