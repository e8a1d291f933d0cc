package session

import (
	"errors"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
)

// Messages shown to the user in place of internal detail
const (
	MsgInvalidResetToken = "Token de recuperação inválido ou expirado."
	MsgPasswordRequired  = "Nova senha é obrigatória."
	MsgNameRequired      = "Nome é obrigatório."
	MsgNotAuthenticated  = "Faça login para continuar."
	MsgSessionStore      = "Não foi possível acessar sua sessão. Tente novamente."
	MsgSessionNotCleared = "Conta deletada, mas não foi possível encerrar a sessão neste navegador."
)

// opError shows the underlying message to the user while still matching kind with errors.Is
type opError struct {
	kind error
	err  error
}

func (e *opError) Error() string {
	return e.err.Error()
}

func (e *opError) Unwrap() []error {
	return []error{e.kind, e.err}
}

func invalidCredentials(err error) error {
	return &opError{kind: apperrors.ErrInvalidCredentials, err: err}
}

// userError pairs kind with a fixed user facing message
func userError(kind error, msg string) error {
	return &opError{kind: kind, err: errors.New(msg)}
}
