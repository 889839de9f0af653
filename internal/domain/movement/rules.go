package movement

var rulesByType = map[MovementType]Rules{
	TipoIngreso: {
		RequiresTo: true, AllowTo: true,
	},
	TipoEgreso: {
		RequiresFrom: true, AllowFrom: true,
	},
	TipoUso: {
		RequiresFrom: true, AllowFrom: true,
		AllowTo: true,
	},
	TipoTraspaso: {
		RequiresFrom: true, AllowFrom: true,
		RequiresTo: true, AllowTo: true,
		RequiresBothDistinct: true,
	},
	TipoAjuste: {
		AllowFrom: true, AllowTo: true,
		RequiresAnyLocation: true,
	},
}

// ResolveRules devuelve qué locaciones exige o permite cada tipo.
// Para un tipo desconocido devuelve Rules{} (nada exigido ni permitido).
func ResolveRules(tipo MovementType) Rules {
	return rulesByType[tipo]
}
