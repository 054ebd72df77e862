package main

import (
	"net/http"

	"brightcart.io/store-web/internal/session"
	"brightcart.io/store-web/internal/shop"
)

// AuthView backs both the login and register forms. Error renders in
// place above the form; entered values other than passwords are echoed.
type AuthView struct {
	Error string
	Name  string
	Email string
}

func LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	if session.FromRequest(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	pd := newPageData(r, "Login")
	pd.Auth = AuthView{}
	renderPage(w, r, "login", pd)
}

func LoginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	email := formValue(r, "email")
	password := r.PostFormValue("password")

	renderError := func(msg string) {
		pd := newPageData(r, "Login")
		pd.Auth = AuthView{Error: msg, Email: email}
		renderPageStatus(w, r, http.StatusUnprocessableEntity, "login", pd)
	}

	if email == "" || password == "" {
		renderError("Please enter your email and password.")
		return
	}

	token, err := shopClient.Login(r.Context(), email, password)
	if err != nil {
		renderError(shop.UserMessage(err, "Login failed."))
		return
	}

	sd := session.FromRequest(r)
	sd.SetToken(token)
	sd.AddFlash("success", "Login successful!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func RegisterPageHandler(w http.ResponseWriter, r *http.Request) {
	if session.FromRequest(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	pd := newPageData(r, "Register")
	pd.Auth = AuthView{}
	renderPage(w, r, "register", pd)
}

func RegisterSubmitHandler(w http.ResponseWriter, r *http.Request) {
	name := formValue(r, "name")
	email := formValue(r, "email")
	password := r.PostFormValue("password")

	renderError := func(msg string) {
		pd := newPageData(r, "Register")
		pd.Auth = AuthView{Error: msg, Name: name, Email: email}
		renderPageStatus(w, r, http.StatusUnprocessableEntity, "register", pd)
	}

	if name == "" || email == "" || password == "" {
		renderError("Please fill in all fields.")
		return
	}

	if err := shopClient.Register(r.Context(), name, email, password); err != nil {
		renderError(shop.UserMessage(err, "Registration failed."))
		return
	}

	flashRedirect(w, r, "success", "Registration successful! Please login.", "/login")
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sd := session.FromRequest(r)
	sd.Clear()
	sd.AddFlash("success", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
