package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists one handler per operation of the OpenAPI document.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	Evaluate(w http.ResponseWriter, r *http.Request)
	ListSessions(w http.ResponseWriter, r *http.Request)
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request, id string)
	DeleteSession(w http.ResponseWriter, r *http.Request, id string)
	PressKeys(w http.ResponseWriter, r *http.Request, id string)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, id string)
	KeypadSocket(w http.ResponseWriter, r *http.Request, id string)
	ListHistory(w http.ResponseWriter, r *http.Request, params ListHistoryParams)
	ClearHistory(w http.ResponseWriter, r *http.Request)
}

// ListHistoryParams are the query parameters of GET /history.
type ListHistoryParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// InvalidParamError reports a path or query parameter that failed to bind.
type InvalidParamError struct {
	Param string
	Err   error
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.Param, e.Err)
}

func (e *InvalidParamError) Unwrap() error { return e.Err }

type serverWrapper struct {
	handler ServerInterface
}

func (sw *serverWrapper) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, (&InvalidParamError{Param: "id", Err: err}).Error())
		return "", false
	}
	return id, true
}

func (sw *serverWrapper) withID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := sw.sessionID(w, r); ok {
			fn(w, r, id)
		}
	}
}

func (sw *serverWrapper) listHistory(w http.ResponseWriter, r *http.Request) {
	var params ListHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		writeError(w, http.StatusBadRequest, (&InvalidParamError{Param: "limit", Err: err}).Error())
		return
	}
	sw.handler.ListHistory(w, r, params)
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	sw := &serverWrapper{handler: si}

	r.Get("/health", si.GetHealth)
	r.Post("/eval", si.Evaluate)
	r.Get("/sessions", si.ListSessions)
	r.Post("/sessions", si.CreateSession)
	r.Get("/sessions/{id}", sw.withID(si.GetSession))
	r.Delete("/sessions/{id}", sw.withID(si.DeleteSession))
	r.Post("/sessions/{id}/press", sw.withID(si.PressKeys))
	r.Get("/sessions/{id}/events", sw.withID(si.SubscribeEvents))
	r.Get("/sessions/{id}/ws", sw.withID(si.KeypadSocket))
	r.Get("/history", sw.listHistory)
	r.Delete("/history", si.ClearHistory)
	return r
}
