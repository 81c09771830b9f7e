package prospects

import "errors"

var (
	// ErrNotFound is returned when no prospect matches the id for the
	// requesting user.
	ErrNotFound = errors.New("prospect not found")

	// ErrInvalidStatus is returned for a status outside the four funnel
	// stages.
	ErrInvalidStatus = errors.New("invalid funnel status")

	// ErrInvalidName is returned when an edit would blank the name.
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidScore is returned when a score falls outside 0..100.
	ErrInvalidScore = errors.New("score must be between 0 and 100")

	// ErrEmptyUpdate is returned when a partial edit sets no fields.
	ErrEmptyUpdate = errors.New("no fields to update")

	// ErrDiscoveryInFlight is returned when a user already has a
	// discovery search running.
	ErrDiscoveryInFlight = errors.New("a discovery search is already running")

	// ErrUnknownSource is returned for a search source other than
	// google or instagram.
	ErrUnknownSource = errors.New("unknown search source")
)

// Search precondition failures carry product copy; they are caught
// before any AI call.
var (
	ErrMissingQuery    = errors.New("Por favor, insira um critério de busca para continuar.")
	ErrMissingLocation = errors.New("O campo Localização é obrigatório.")
	ErrNoSources       = errors.New("Selecione ao menos uma fonte para continuar.")
)
