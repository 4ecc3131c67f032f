package main

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB points the global db at a fresh temp SQLite database with the
// schema migrated.
func setupTestDB(t *testing.T) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "warbler-test-*.db")
	require.NoError(t, err)
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	db, err = openDB(tmpFile.Name())
	require.NoError(t, err)
}

// setupTestServer spins up the app over a fresh database and returns a
// cookie-jar client that follows redirects.
func setupTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	setupTestDB(t)
	store = newStore("test-secret")

	ts := httptest.NewServer(setupRouter())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	client := ts.Client()
	client.Jar = jar

	return ts, client
}

// Helper: read response body as string
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

// Helper: create a user directly through the model layer
func signupUser(t *testing.T, username, email, password string) *User {
	t.Helper()
	u, err := Signup(username, email, password, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(u).Error)
	return u
}

// Helper: log in over HTTP so the client's jar holds the session cookie
func loginAs(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) string {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	return readBody(t, resp)
}

// Helper: GET a page and return the body, following redirects
func getBody(t *testing.T, ts *httptest.Server, client *http.Client, path string) string {
	t.Helper()
	resp, err := client.Get(ts.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

// Helper: POST a form and return the final body, following redirects
func postForm(t *testing.T, client *http.Client, url string, form url.Values) string {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

// withoutRedirects runs fn with redirect-following disabled, so the raw
// 302 response can be inspected. Cookies set on the response still land in
// the client's jar.
func withoutRedirects(client *http.Client, fn func()) {
	prev := client.CheckRedirect
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	defer func() { client.CheckRedirect = prev }()
	fn()
}

// Helper: POST without following the redirect
func postNoFollow(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	var resp *http.Response
	var err error
	withoutRedirects(client, func() {
		resp, err = client.PostForm(url, form)
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

// Helper: GET without following the redirect
func getNoFollow(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	var resp *http.Response
	var err error
	withoutRedirects(client, func() {
		resp, err = client.Get(url)
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}
