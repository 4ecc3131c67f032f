package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var (
	cfg Config
	log = logrus.New()
)

func setupRouter() *mux.Router {
	r := mux.NewRouter()

	fs := http.FileServer(http.Dir("static"))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))

	r.HandleFunc("/", homepageHandler).Methods("GET")
	r.HandleFunc("/signup", signupHandler).Methods("GET", "POST")
	r.HandleFunc("/login", loginHandler).Methods("GET", "POST")
	r.HandleFunc("/logout", logoutHandler).Methods("GET")

	r.HandleFunc("/users", listUsersHandler).Methods("GET")
	r.HandleFunc("/users/profile", profileHandler).Methods("GET", "POST")
	r.HandleFunc("/users/delete", deleteUserHandler).Methods("POST")
	r.HandleFunc("/users/follow/{id:[0-9]+}", followUserHandler).Methods("POST")
	r.HandleFunc("/users/stop-following/{id:[0-9]+}", unfollowUserHandler).Methods("POST")
	r.HandleFunc("/users/{id:[0-9]+}", showUserHandler).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/following", followingHandler).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/followers", followersHandler).Methods("GET")

	r.HandleFunc("/messages/new", newMessageHandler).Methods("GET", "POST")
	r.HandleFunc("/messages/{id:[0-9]+}", showMessageHandler).Methods("GET")
	r.HandleFunc("/messages/{id:[0-9]+}/delete", deleteMessageHandler).Methods("POST")

	return r
}

func main() {
	cfg = loadConfig()

	var err error
	db, err = openDB(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("can't open database")
	}

	store = newStore(cfg.SecretKey)

	log.WithField("port", cfg.Port).Info("warbler listening")
	if err := http.ListenAndServe(":"+cfg.Port, setupRouter()); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
