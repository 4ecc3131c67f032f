package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// GET / — timeline for the logged-in user, landing page otherwise.
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	user := getCurrentUser(r)
	if user == nil {
		renderTemplate(w, r, "home-anon.html", map[string]interface{}{})
		return
	}
	renderTemplate(w, r, "home.html", map[string]interface{}{
		"Messages":    timelineFor(user),
		"CurrentUser": user,
	})
}

// GET + POST /signup
func signupHandler(w http.ResponseWriter, r *http.Request) {
	errorMsg := ""
	if r.Method == http.MethodPost {
		user, err := Signup(
			r.FormValue("username"),
			r.FormValue("email"),
			r.FormValue("password"),
			r.FormValue("image_url"),
		)
		if err != nil {
			errorMsg = "Password is required"
		} else if err := db.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				errorMsg = "Username already taken"
			} else {
				log.WithError(err).Warn("signup failed")
				errorMsg = "Could not create your account"
			}
		} else {
			doLogin(w, r, user)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}
	renderTemplate(w, r, "signup.html", map[string]interface{}{
		"Error": errorMsg,
	})
}

// GET + POST /login
func loginHandler(w http.ResponseWriter, r *http.Request) {
	errorMsg := ""
	if r.Method == http.MethodPost {
		user := Authenticate(r.FormValue("username"), r.FormValue("password"))
		if user != nil {
			doLogin(w, r, user)
			addFlash(w, r, "Hello, "+user.Username+"!")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		errorMsg = "Invalid credentials."
	}
	renderTemplate(w, r, "login.html", map[string]interface{}{
		"Error": errorMsg,
	})
}

// GET /logout
func logoutHandler(w http.ResponseWriter, r *http.Request) {
	doLogout(w, r)
	addFlash(w, r, "You have successfully logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// GET /users — all users, optionally filtered by ?q= against usernames.
func listUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	renderTemplate(w, r, "users.html", map[string]interface{}{
		"Users": searchUsers(q),
		"Query": q,
	})
}

// GET /users/{id} — profile page with the user's own messages.
func showUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	profile := getUserByID(id)
	if profile == nil {
		http.NotFound(w, r)
		return
	}

	current := getCurrentUser(r)
	renderTemplate(w, r, "user.html", map[string]interface{}{
		"ProfileUser": profile,
		"Messages":    messagesBy(profile.ID),
		"CurrentUser": current,
		"IsFollowing": current != nil && current.IsFollowing(profile),
	})
}

// GET /users/{id}/following
func followingHandler(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	profile := getUserByID(id)
	if profile == nil {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, "following.html", map[string]interface{}{
		"ProfileUser": profile,
		"Users":       profile.Following(),
	})
}

// GET /users/{id}/followers
func followersHandler(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	profile := getUserByID(id)
	if profile == nil {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, "followers.html", map[string]interface{}{
		"ProfileUser": profile,
		"Users":       profile.Followers(),
	})
}

// POST /users/follow/{id}
func followUserHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok || getUserByID(id) == nil {
		http.NotFound(w, r)
		return
	}
	err := db.Create(&Follows{FollowerID: user.ID, FollowedID: id}).Error
	if err != nil && !isUniqueViolation(err) {
		log.WithError(err).Warn("follow failed")
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// POST /users/stop-following/{id}
func unfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok || getUserByID(id) == nil {
		http.NotFound(w, r)
		return
	}
	db.Delete(&Follows{FollowerID: user.ID, FollowedID: id})
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// GET + POST /users/profile — edit the current user's profile. The
// submitted password must re-authenticate before anything changes.
func profileHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	if r.Method == http.MethodPost {
		if Authenticate(user.Username, r.FormValue("password")) == nil {
			rejectUnauthorized(w, r)
			return
		}
		user.Username = formOr(r, "username", user.Username)
		user.Email = formOr(r, "email", user.Email)
		user.ImageURL = formOr(r, "image_url", user.ImageURL)
		user.HeaderImageURL = formOr(r, "header_image_url", user.HeaderImageURL)
		user.Bio = r.FormValue("bio")
		user.Location = r.FormValue("location")

		if err := db.Save(user).Error; err != nil {
			if isUniqueViolation(err) {
				addFlash(w, r, "Username already taken")
			} else {
				log.WithError(err).Warn("profile update failed")
			}
			http.Redirect(w, r, "/users/profile", http.StatusFound)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
		return
	}
	renderTemplate(w, r, "edit-profile.html", map[string]interface{}{
		"CurrentUser": user,
	})
}

func formOr(r *http.Request, field, fallback string) string {
	if v := r.FormValue(field); v != "" {
		return v
	}
	return fallback
}

// POST /users/delete — remove the account. Messages and follow edges go
// with it via the cascade constraints.
func deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	doLogout(w, r)
	if err := db.Delete(user).Error; err != nil {
		log.WithError(err).Warn("user delete failed")
	}
	http.Redirect(w, r, "/signup", http.StatusFound)
}

// GET + POST /messages/new — always answers POST with a redirect: to the
// author's page on success, home with a flash otherwise.
func newMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	if r.Method == http.MethodPost {
		msg := Message{Text: r.FormValue("text"), UserID: user.ID}
		if err := db.Create(&msg).Error; err != nil {
			if isCheckViolation(err) {
				addFlash(w, r, "Message is too long")
			} else {
				log.WithError(err).Warn("message create failed")
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
		return
	}
	renderTemplate(w, r, "new-message.html", map[string]interface{}{})
}

// GET /messages/{id}
func showMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var msg Message
	if err := db.Preload("User").First(&msg, id).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, "message.html", map[string]interface{}{
		"Message": &msg,
	})
}

// POST /messages/{id}/delete — owner only; everyone else gets the
// unauthorized redirect and the message stays put.
func deleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var msg Message
	if err := db.First(&msg, id).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if msg.UserID != user.ID {
		rejectUnauthorized(w, r)
		return
	}
	if err := db.Delete(&msg).Error; err != nil {
		log.WithError(err).Warn("message delete failed")
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}
