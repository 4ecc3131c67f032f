package main

import (
	"crypto/md5"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

// currUserKey is the session value holding the logged-in user's ID.
// Its absence means the visitor is anonymous.
const currUserKey = "curr_user"

const unauthorizedMsg = "Access unauthorized."

var store *sessions.CookieStore

func newStore(secret string) *sessions.CookieStore {
	s := sessions.NewCookieStore([]byte(secret))
	s.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
	}
	return s
}

// --- Session helpers ---

func getCurrentUser(r *http.Request) *User {
	session, _ := store.Get(r, "session")
	id, ok := session.Values[currUserKey].(uint)
	if !ok {
		return nil
	}
	return getUserByID(id)
}

func doLogin(w http.ResponseWriter, r *http.Request, u *User) {
	session, _ := store.Get(r, "session")
	session.Values[currUserKey] = u.ID
	session.Save(r, w)
}

func doLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := store.Get(r, "session")
	delete(session.Values, currUserKey)
	session.Save(r, w)
}

func addFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := store.Get(r, "session")
	session.AddFlash(message)
	session.Save(r, w)
}

func getFlashes(w http.ResponseWriter, r *http.Request) []interface{} {
	session, _ := store.Get(r, "session")
	flashes := session.Flashes()
	session.Save(r, w)
	return flashes
}

// requireUser is the authorization guard. It must run before any side
// effect in a protected handler: it returns the current user, or nil after
// flashing the unauthorized message and redirecting home.
func requireUser(w http.ResponseWriter, r *http.Request) *User {
	user := getCurrentUser(r)
	if user == nil {
		rejectUnauthorized(w, r)
		return nil
	}
	return user
}

// rejectUnauthorized handles the ownership-failure branch identically to
// the anonymous one.
func rejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	addFlash(w, r, unauthorizedMsg)
	http.Redirect(w, r, "/", http.StatusFound)
}

// --- Password helpers ---

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// --- Template helpers ---

func gravatar(email string) string {
	h := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon&s=48", h)
}

func datetimeformat(t time.Time) string {
	return t.Format("02 January 2006")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateFile string, data map[string]interface{}) {
	funcMap := template.FuncMap{
		"gravatar":       gravatar,
		"datetimeformat": datetimeformat,
	}

	tmpl := template.Must(template.New("layout.html").
		Funcs(funcMap).
		ParseFiles("templates/layout.html", "templates/"+templateFile))

	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = getCurrentUser(r)
	}
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = getFlashes(w, r)
	}

	tmpl.ExecuteTemplate(w, "layout.html", data)
}
