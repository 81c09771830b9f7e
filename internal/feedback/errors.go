package feedback

import "errors"

// User-facing Portuguese copy lives on the errors themselves so handlers
// can surface them verbatim.
var (
	ErrEmptySubmission = errors.New("Por favor, deixe uma avaliação ou comentário.")
	ErrInvalidRating   = errors.New("A avaliação deve ser entre 1 e 5 estrelas.")
)

// Toast copy for backend failures.
const (
	rateLimitedMessage    = "Você atingiu o limite de feedbacks por hora. Tente novamente mais tarde."
	genericFailureMessage = "Ocorreu um erro ao enviar seu feedback."
)
