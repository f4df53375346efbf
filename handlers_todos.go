package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func todoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func (a *App) HandleListTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	todos, err := a.DB.GetTodosByUserID(user.ID)
	if err != nil {
		log.Printf("list todos: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list todos")
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (a *App) HandleCreateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Title is required")
		return
	}
	todo, err := a.DB.CreateTodo(user.ID, req.Title, req.Description)
	if err != nil {
		log.Printf("create todo: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create todo")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (a *App) HandleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
		return
	}
	var patch TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	todo, err := a.DB.UpdateTodo(id, user.ID, patch)
	if err != nil {
		log.Printf("update todo: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update todo")
		return
	}
	// A todo owned by someone else looks identical to a missing one.
	if todo == nil {
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (a *App) HandleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	id, ok := todoID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
		return
	}
	if err := a.DB.DeleteTodo(id, user.ID); err != nil {
		if err == ErrTodoNotFound {
			writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
			return
		}
		log.Printf("delete todo: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete todo")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
