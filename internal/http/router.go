package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Events     *EventHandler
	Drafts     *DraftHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Events != nil {
		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Events.List(w, r)
		})
		mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResource(strings.TrimPrefix(r.URL.Path, "/events/"))
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithEventID(r.Context(), id))
			switch rest {
			case "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Events.Delete(w, r)
			case "edit":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Events.Edit(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Drafts != nil {
		mux.HandleFunc("/drafts", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Drafts.List(w, r)
			case http.MethodPost:
				cfg.Drafts.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/drafts/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResource(strings.TrimPrefix(r.URL.Path, "/drafts/"))
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithDraftID(r.Context(), id))
			routeDraft(cfg.Drafts, w, r, rest)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func routeDraft(h *DraftHandler, w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case rest == "":
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodPatch:
			h.Update(w, r)
		case http.MethodDelete:
			h.Discard(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
		}
	case rest == "mode":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, http.MethodPut)
			return
		}
		h.SwitchMode(w, r)
	case strings.HasPrefix(rest, "days/"):
		day := strings.TrimPrefix(rest, "days/")
		if day == "" || strings.Contains(day, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPut {
			methodNotAllowed(w, http.MethodPut)
			return
		}
		h.SetDayTimes(w, r, day)
	case rest == "image":
		switch r.Method {
		case http.MethodPut, http.MethodPost:
			h.AttachImage(w, r)
		case http.MethodDelete:
			h.RemoveImage(w, r)
		default:
			methodNotAllowed(w, http.MethodPut, http.MethodPost, http.MethodDelete)
		}
	case rest == "validate":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.Validate(w, r)
	case rest == "submit":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.Submit(w, r)
	case rest == "calendar.ics":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.Calendar(w, r)
	default:
		http.NotFound(w, r)
	}
}

// splitResource splits "id/rest/of/path" into its id and remainder.
func splitResource(path string) (string, string) {
	path = strings.Trim(path, "/")
	id, rest, _ := strings.Cut(path, "/")
	return id, rest
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
