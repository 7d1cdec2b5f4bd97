package webmo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a stub service that issues a fixed session token and
// routes everything else to mux, then returns a connected client.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	root := http.NewServeMux()
	root.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"sessionID":"s-test","userID":7}`)
		}
	})
	root.Handle("/", mux)

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	client, err := Connect(context.Background(), srv.URL, "tester", "pw",
		WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestConnect(t *testing.T) {
	var (
		mu       sync.Mutex
		acquires int
		revokes  int
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "alice", r.PostForm.Get("username"))
			assert.Equal(t, "hunter2", r.PostForm.Get("password"))
			acquires++
			fmt.Fprint(w, `{"sessionID":"s-42","userID":3}`)
		case http.MethodDelete:
			// the token obtained at connect must come back on revocation
			assert.Equal(t, "s-42", r.URL.Query().Get("sessionID"))
			revokes++
		}
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s-42", r.URL.Query().Get("sessionID"))
		assert.Equal(t, "3", r.URL.Query().Get("userID"))
		fmt.Fprint(w, `{"users":["alice"]}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := Connect(context.Background(), srv.URL, "alice", "hunter2",
		WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)

	users, err := client.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, users)

	client.Close()
	client.Close() // idempotent

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 1, revokes)
}

func TestConnectAuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := Connect(context.Background(), srv.URL, "alice", "wrong",
		WithLogger(slog.New(slog.DiscardHandler)))

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, srv.URL, authErr.URL)
	assert.Contains(t, authErr.Error(), "401")
}

func TestConnectUnreachable(t *testing.T) {
	// a closed server gives a connection error, still reported as AuthError
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := Connect(context.Background(), srv.URL, "alice", "pw",
		WithLogger(slog.New(slog.DiscardHandler)))

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestConnectPromptsWhenPasswordEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "prompted-secret", r.PostForm.Get("password"))
		fmt.Fprint(w, `{"sessionID":"s-1"}`)
	}))
	defer srv.Close()

	var promptedUser string
	client, err := Connect(context.Background(), srv.URL, "bob", "",
		WithLogger(slog.New(slog.DiscardHandler)),
		WithPasswordPrompt(func(username string) (string, error) {
			promptedUser = username
			return "prompted-secret", nil
		}))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "bob", promptedUser)
}

func TestConnectPromptFailure(t *testing.T) {
	_, err := Connect(context.Background(), "http://127.0.0.1:1", "bob", "",
		WithPasswordPrompt(func(string) (string, error) {
			return "", fmt.Errorf("no terminal")
		}))

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, err.Error(), "no terminal")
}

func TestTransportErrorCarriesTruncatedBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, strings.Repeat("x", 600))
	})
	client := newTestClient(t, mux)

	_, err := client.Users(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Equal(t, "/users", transportErr.Path)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	assert.Len(t, transportErr.Body, 512)
}

func TestClientClosed(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	client.Close()

	_, err := client.Users(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestStatusInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":"25.0.012","htmlBase":"https://chem.example.edu/webmo"}`)
	})
	client := newTestClient(t, mux)

	info, err := client.StatusInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25.0.012", info["version"])
}

func TestFolders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/folders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "carol", r.URL.Query().Get("user"))
		fmt.Fprint(w, `{"folders":[{"folderID":0,"folderName":"Home"},{"folderID":3,"folderName":"Thesis"}]}`)
	})
	client := newTestClient(t, mux)

	folders, err := client.Folders(context.Background(), "carol")
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, Folder{ID: 3, Name: "Thesis"}, folders[1])
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "abc", stringify("abc"))
	assert.Equal(t, "7", stringify(float64(7)))
	assert.Equal(t, "2.5", stringify(2.5))
	assert.Equal(t, "true", stringify(true))
}
