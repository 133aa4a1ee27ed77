package domain

// Action is one entry of the fixed vocabulary of recordable session events.
// The values are the Portuguese keys used since the first CSV-based version
// of the bot and are part of the stored data, so they never change.
type Action string

const (
	ActionDamageDealt Action = "causado"
	ActionDamageTaken Action = "recebido"
	ActionHealing     Action = "cura"
	ActionCritSuccess Action = "critico_sucesso"
	ActionCritFailure Action = "critico_falha"
	ActionPlayerDown  Action = "jogador_caido"
	ActionElimination Action = "eliminacao"
)

// Actions returns the full vocabulary in rendering order.
func Actions() []Action {
	return []Action{
		ActionDamageDealt,
		ActionDamageTaken,
		ActionHealing,
		ActionCritSuccess,
		ActionCritFailure,
		ActionPlayerDown,
		ActionElimination,
	}
}

// Valid reports whether a belongs to the fixed vocabulary.
func (a Action) Valid() bool {
	switch a {
	case ActionDamageDealt, ActionDamageTaken, ActionHealing,
		ActionCritSuccess, ActionCritFailure, ActionPlayerDown, ActionElimination:
		return true
	}
	return false
}

// BearsAmount reports whether the action carries a free-form magnitude.
// The remaining actions are pure occurrences and are always recorded
// with amount 1.
func (a Action) BearsAmount() bool {
	switch a {
	case ActionDamageDealt, ActionDamageTaken, ActionHealing:
		return true
	}
	return false
}

// Label returns the Portuguese display label for the action.
func (a Action) Label() string {
	switch a {
	case ActionDamageDealt:
		return "Dano Causado"
	case ActionDamageTaken:
		return "Dano Recebido"
	case ActionHealing:
		return "Cura Realizada"
	case ActionCritSuccess:
		return "Acertos Críticos"
	case ActionCritFailure:
		return "Falhas Críticas"
	case ActionPlayerDown:
		return "Vezes Caído"
	case ActionElimination:
		return "Eliminações"
	}
	return string(a)
}
