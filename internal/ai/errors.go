package ai

import "errors"

// User-facing failures keep the product copy so handlers can surface
// them verbatim.
var (
	// ErrUnsupportedProvider is returned when credentials name a provider
	// other than Google Gemini.
	ErrUnsupportedProvider = errors.New("Somente o provedor Google Gemini é suportado no momento.")

	// ErrMissingAPIKey is returned when no API key is configured for the
	// requesting user and no server-wide fallback exists.
	ErrMissingAPIKey = errors.New("A chave de API do Gemini não está configurada corretamente.")

	// ErrNoJSON is returned when no parseable JSON value could be
	// recovered from the model output.
	ErrNoJSON = errors.New("ai: response contains no parseable JSON value")

	// ErrIncompleteMessages is returned when the outreach sequence is
	// missing one of its three required parts.
	ErrIncompleteMessages = errors.New("A resposta da IA está incompleta ou em formato inesperado.")

	// ErrInvalidProspectList is returned when discovery output cannot be
	// decoded as a list of candidates.
	ErrInvalidProspectList = errors.New("A IA não retornou uma lista de prospects válida.")

	// ErrIncompleteAnalysis is returned when conversation analysis is
	// missing a required key.
	ErrIncompleteAnalysis = errors.New("A IA não retornou um resultado válido.")
)

// NoSuggestionFallback replaces an empty advisory response; the
// next-action operation degrades instead of failing.
const NoSuggestionFallback = "Não foi possível gerar uma sugestão no momento."
