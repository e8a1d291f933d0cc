package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/makita-adocao/makita-web/internal/errors"
)

const (
	msgLoginRequired   = "Faça login para continuar."
	msgInvalidForm     = "Dados do formulário inválidos."
	msgPasswordChanged = "Senha alterada com sucesso! Faça login com a nova senha."
	msgProfileUpdated  = "Perfil atualizado!"
	msgAccountDeleted  = "Sua conta foi deletada."
	msgDeleteFailed    = "Falha ao deletar conta: "
)

const minPasswordLength = 8

type loginForm struct {
	Email    string `label:"E-mail" validate:"required,email"`
	Password string `label:"Senha" validate:"required"`
}

type signupForm struct {
	Name            string `label:"Nome" validate:"required,min=2"`
	Email           string `label:"E-mail" validate:"required,email"`
	Password        string `label:"Senha" validate:"required,min=8"`
	ConfirmPassword string `label:"Confirmação de senha" validate:"required,eqfield=Password"`
}

type forgotPasswordForm struct {
	Email string `label:"E-mail" validate:"required,email"`
}

type resetPasswordForm struct {
	Password        string `label:"Nova senha" validate:"required,min=8"`
	ConfirmPassword string `label:"Confirmação de senha" validate:"required,eqfield=Password"`
}

type profileForm struct {
	Name string `label:"Nome" validate:"required,min=2"`
}

// formError carries a message for the user and matches apperrors.ErrValidation
type formError struct {
	msg string
}

func (e formError) Error() string { return e.msg }

func (e formError) Unwrap() error { return apperrors.ErrValidation }

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	return v
}

// validateForm checks form and reports the first failure in words
func (s *Server) validateForm(form any) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return formError{msg: msgInvalidForm}
	}
	return formError{msg: describeFieldError(fieldErrs[0])}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório.", fe.Field())
	case "email":
		return "Informe um e-mail válido."
	case "min":
		return fmt.Sprintf("%s deve ter pelo menos %s caracteres.", fe.Field(), fe.Param())
	case "eqfield":
		return "As senhas não coincidem."
	default:
		return fmt.Sprintf("%s inválido.", fe.Field())
	}
}

// parseForm reads a posted form; a body that cannot be parsed is a validation error
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return formError{msg: msgInvalidForm}
	}
	return nil
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
