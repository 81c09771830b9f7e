// Package settings stores each user's workspace preferences: the
// outreach message template and the Kanban column titles.
package settings

// UserSettings is one record per user.
type UserSettings struct {
	MessageTemplate    string            `json:"messageTemplate"`
	KanbanColumnTitles map[string]string `json:"kanbanColumnTitles"`
}

const defaultMessageTemplate = "Tenho vasta experiência ajudando negócios a crescerem com marketing digital focado em performance."

func defaultColumnTitles() map[string]string {
	return map[string]string{
		"new":         "Novos",
		"contacted":   "Contatados",
		"negotiating": "Em Negociação",
		"won":         "Contrato fechado",
	}
}

// Defaults returns the settings a brand-new user starts with.
func Defaults() UserSettings {
	return UserSettings{
		MessageTemplate:    defaultMessageTemplate,
		KanbanColumnTitles: defaultColumnTitles(),
	}
}

// Normalize repairs incomplete records: every funnel status gets a
// column title and the message template is never empty. Older records
// written before the won column existed come back whole.
func (s UserSettings) Normalize() UserSettings {
	if s.MessageTemplate == "" {
		s.MessageTemplate = defaultMessageTemplate
	}
	titles := defaultColumnTitles()
	for status, title := range s.KanbanColumnTitles {
		if title != "" {
			titles[status] = title
		}
	}
	s.KanbanColumnTitles = titles
	return s
}

// Update is a partial edit; nil fields are left untouched.
type Update struct {
	MessageTemplate    *string           `json:"messageTemplate,omitempty"`
	KanbanColumnTitles map[string]string `json:"kanbanColumnTitles,omitempty"`
}

func (u Update) Empty() bool {
	return u.MessageTemplate == nil && u.KanbanColumnTitles == nil
}

// Apply merges the edit. Column titles merge key by key so renaming one
// column does not drop the others.
func (u Update) Apply(s UserSettings) UserSettings {
	if u.MessageTemplate != nil {
		s.MessageTemplate = *u.MessageTemplate
	}
	for status, title := range u.KanbanColumnTitles {
		s.KanbanColumnTitles[status] = title
	}
	return s.Normalize()
}
