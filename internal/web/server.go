// Package web serves the balance popup UI and its JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tally/internal/domain"
	"go.uber.org/zap"
)

type balanceService interface {
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

type credentialStore interface {
	Save(creds domain.Credentials) error
	Credentials() (domain.Credentials, error)
}

// Server exposes HTTP endpoints serving the HTML UI and the balance API.
type Server struct {
	Addr    string
	Balance balanceService
	Store   credentialStore
	Logger  *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, balance balanceService, store credentialStore, logger *zap.Logger) *Server {
	return &Server{Addr: addr, Balance: balance, Store: store, Logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/api/balance", s.handleBalance)
	mux.HandleFunc("/api/credentials", s.handleCredentials)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, popupHTML)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, settingsHTML)
}

// handleBalance runs one aggregation per request. Failures are relayed to the
// page as a message string, the UI decides how to render them.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := s.Balance.TotalBalance(r.Context())
	if err != nil {
		s.Logger.Warn("balance aggregation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"balance": total.StringFixed(2)})
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		creds, err := s.Store.Credentials()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		// the secret key never leaves the server
		writeJSON(w, http.StatusOK, map[string]any{
			"api_key":    creds.APIKey,
			"configured": creds.IsComplete(),
		})
	case http.MethodPost:
		var creds domain.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := s.Store.Save(creds); err != nil {
			s.Logger.Error("failed to save credentials", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		s.Logger.Info("credentials updated")
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// credentialsMissingMessage must match the aggregator's sentinel text, the
// popup appends a settings hint when it sees exactly this error.
const credentialsMissingMessage = "api key or secret key is not set"

const popupHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Tally</title>
  <style>
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      background:#ffffff;
      color:#111111;
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #popup {
      width:min(420px, 92vw);
      background:#f6f6f6;
      border:3px solid #111;
      padding:1.5rem;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
    }
    h1 { font-size:1rem; margin:0 0 1rem; letter-spacing:.15em; }
    #balance { font-size:1.1rem; min-height:2.4rem; word-break:break-word; }
    button {
      font:inherit;
      border:2px solid #111;
      background:#fff;
      padding:.4rem 1rem;
      cursor:pointer;
      margin-top:1rem;
    }
    button:active { box-shadow:inset 2px 2px 0 rgba(0,0,0,.2); }
    a { color:#4d4d4d; display:inline-block; margin-top:1rem; margin-left:1rem; }
  </style>
</head>
<body>
  <div id="popup">
    <h1>TALLY</h1>
    <div id="balance">loading...</div>
    <button id="refresh">refresh</button>
    <a href="/settings" id="settingsLink">settings</a>
  </div>
  <script>
    const balanceEl = document.getElementById('balance');
    const missing = ` + "`" + credentialsMissingMessage + "`" + `;

    async function fetchBalance() {
      balanceEl.textContent = 'loading...';
      try {
        const resp = await fetch('/api/balance');
        const data = await resp.json();
        if (data.error) {
          balanceEl.textContent = 'error: ' + data.error;
          if (data.error === missing) {
            balanceEl.textContent += ' — open settings to configure.';
          }
        } else {
          balanceEl.textContent = 'total balance: $' + data.balance;
        }
      } catch (err) {
        balanceEl.textContent = 'error: ' + err.message;
      }
    }

    document.getElementById('refresh').addEventListener('click', fetchBalance);
    fetchBalance();
  </script>
</body>
</html>`

const settingsHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Tally — settings</title>
  <style>
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      background:#ffffff;
      color:#111111;
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #form {
      width:min(420px, 92vw);
      background:#f6f6f6;
      border:3px solid #111;
      padding:1.5rem;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
    }
    h1 { font-size:1rem; margin:0 0 1rem; letter-spacing:.15em; }
    label { display:block; margin-top:1rem; font-size:.85rem; color:#4d4d4d; }
    input {
      font:inherit;
      width:100%;
      box-sizing:border-box;
      border:2px solid #111;
      padding:.4rem;
      margin-top:.25rem;
    }
    button {
      font:inherit;
      border:2px solid #111;
      background:#fff;
      padding:.4rem 1rem;
      cursor:pointer;
      margin-top:1.25rem;
    }
    #status { margin-top:1rem; min-height:1.2rem; color:#43BF6D; }
    a { color:#4d4d4d; display:inline-block; margin-top:1rem; }
  </style>
</head>
<body>
  <div id="form">
    <h1>TALLY SETTINGS</h1>
    <label>API Key<input type="text" id="apiKey" autocomplete="off"></label>
    <label>Secret Key<input type="password" id="secretKey" autocomplete="off"></label>
    <button id="save">save</button>
    <div id="status"></div>
    <a href="/">back to balance</a>
  </div>
  <script>
    const statusEl = document.getElementById('status');

    async function load() {
      const resp = await fetch('/api/credentials');
      const data = await resp.json();
      document.getElementById('apiKey').value = data.api_key || '';
      if (data.configured) {
        document.getElementById('secretKey').placeholder = 'saved, enter to replace';
      }
    }

    document.getElementById('save').addEventListener('click', async () => {
      const payload = {
        api_key: document.getElementById('apiKey').value,
        secret_key: document.getElementById('secretKey').value
      };
      const resp = await fetch('/api/credentials', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify(payload)
      });
      statusEl.textContent = resp.ok ? 'settings saved' : 'failed to save';
      setTimeout(() => { statusEl.textContent = ''; }, 2000);
    });

    load();
  </script>
</body>
</html>`
