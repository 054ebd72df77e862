package main

import (
	"net/http"

	"brightcart.io/store-web/internal/shop"
)

// ProfileView backs the profile form.
type ProfileView struct {
	Error string
	Name  string
	Email string
}

func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to view your profile.")
	if !ok {
		return
	}
	profile, err := shopClient.Profile(r.Context(), token)
	if err != nil {
		apiFailure(w, r, err, "Failed to load profile.", "/")
		return
	}
	pd := newPageData(r, "Your Profile")
	pd.Profile = ProfileView{Name: profile.Name, Email: profile.Email}
	renderPage(w, r, "profile", pd)
}

func ProfileUpdateHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r, "Please login to view your profile.")
	if !ok {
		return
	}
	name := formValue(r, "name")
	email := formValue(r, "email")

	renderError := func(msg string) {
		pd := newPageData(r, "Your Profile")
		pd.Profile = ProfileView{Error: msg, Name: name, Email: email}
		renderPageStatus(w, r, http.StatusUnprocessableEntity, "profile", pd)
	}

	if name == "" || email == "" {
		renderError("Please fill in all fields.")
		return
	}

	if err := shopClient.UpdateProfile(r.Context(), token, name, email); err != nil {
		if isUnauthorized(err) {
			apiFailure(w, r, err, "Failed to update profile.", "/profile")
			return
		}
		renderError(shop.UserMessage(err, "Failed to update profile."))
		return
	}

	flashRedirect(w, r, "success", "Profile updated successfully!", "/profile")
}
