package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tabFrom(r).Session.Authenticated() {
			redirectSuccess(w, r, RouteHome)
			return
		}
		s.render(w, "login.html", http.StatusOK, s.pageData(r))
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(r); err != nil {
			redirectWithError(w, r, RouteLogin, err.Error())
			return
		}

		form := loginForm{
			Email:    formValue(r, "email"),
			Password: r.FormValue("password"),
		}
		if err := s.validateForm(form); err != nil {
			s.renderLoginError(w, r, err.Error(), form.Email)
			return
		}

		if err := tabFrom(r).Session.SignIn(r.Context(), form.Email, form.Password); err != nil {
			s.renderLoginError(w, r, err.Error(), form.Email)
			return
		}
		redirectSuccess(w, r, RouteHome)
	}
}

// renderLoginError redirects to login page with an error message, keeping the email
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := RouteLogin
	if email != "" {
		redirectURL = withParam(redirectURL, paramEmail, email)
	}
	redirectWithError(w, r, redirectURL, errorMsg)
}

// LogoutHandler signs the tab out and forgets it
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := tabFrom(r)
		tab.Session.SignOut(r.Context())
		s.tabs.Remove(tab.ID)
		s.clearTabCookie(w, r)
		redirectSuccess(w, r, RouteHome)
	}
}

func (s *Server) SignupGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "signup.html", http.StatusOK, s.pageData(r))
	}
}

// SignupPostHandler registers the account; the user signs in afterwards
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(r); err != nil {
			redirectWithError(w, r, RouteSignup, err.Error())
			return
		}

		form := signupForm{
			Name:            formValue(r, "name"),
			Email:           formValue(r, "email"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
		}
		if err := s.validateForm(form); err != nil {
			redirectWithError(w, r, RouteSignup, err.Error())
			return
		}

		msg, err := tabFrom(r).Session.SignUp(r.Context(), form.Name, form.Email, form.Password)
		if err != nil {
			redirectWithError(w, r, RouteSignup, err.Error())
			return
		}
		redirectWithNotice(w, r, withParam(RouteLogin, paramEmail, form.Email), msg)
	}
}

func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "forgot_password.html", http.StatusOK, s.pageData(r))
	}
}

func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(r); err != nil {
			redirectWithError(w, r, RouteForgotPassword, err.Error())
			return
		}

		form := forgotPasswordForm{Email: formValue(r, "email")}
		if err := s.validateForm(form); err != nil {
			redirectWithError(w, r, RouteForgotPassword, err.Error())
			return
		}

		msg, err := tabFrom(r).Session.SendLinkToEmail(r.Context(), form.Email)
		if err != nil {
			redirectWithError(w, r, RouteForgotPassword, err.Error())
			return
		}
		redirectWithNotice(w, r, RouteForgotPassword, msg)
	}
}

// ResetPasswordGetHandler renders the reset form. The token stays in the page URL
// and the form posts back to that same URL.
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Token = r.URL.Query().Get("token")
		s.render(w, "reset_password.html", http.StatusOK, data)
	}
}

func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		back := RouteResetPassword
		if token := r.URL.Query().Get("token"); token != "" {
			back = withParam(back, "token", token)
		}

		if err := parseForm(r); err != nil {
			redirectWithError(w, r, back, err.Error())
			return
		}

		form := resetPasswordForm{
			Password:        r.FormValue("new_password"),
			ConfirmPassword: r.FormValue("confirm_password"),
		}
		if err := s.validateForm(form); err != nil {
			redirectWithError(w, r, back, err.Error())
			return
		}

		if err := tabFrom(r).Session.ChangePasswordOfUser(r.Context(), r.URL, form.Password); err != nil {
			log.Warn().Err(err).Msg("ResetPasswordPostHandler: reset failed")
			redirectWithError(w, r, back, err.Error())
			return
		}
		redirectWithNotice(w, r, RouteLogin, msgPasswordChanged)
	}
}

// ValidatePasswordHandler gives live feedback on the password field via htmx
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.FormValue("new_password")
		if password == "" {
			password = r.FormValue("password")
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if password == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if err := s.validate.Var(password, fmt.Sprintf("min=%d", minPasswordLength)); err != nil {
			msg := fmt.Sprintf("A senha deve ter pelo menos %d caracteres.", minPasswordLength)
			w.Header().Set("HX-Trigger", `{"passwordInvalid": ""}`)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `<span class="text-danger">%s</span>`, msg)
			return
		}

		w.Header().Set("HX-Trigger", `{"passwordValid": ""}`)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<span class="text-success">✓</span>`)
	}
}
