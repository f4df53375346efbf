package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Both login failure modes carry the same message so a caller cannot
// probe which of the two was wrong.
const badCredentialsMessage = "Invalid email or password"

func (a *App) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Name, email and password are required")
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
		return
	}
	user, err := a.DB.CreateUser(req.Name, req.Email, hashed)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "USER_EXISTS", "User with this email already exists")
			return
		}
		log.Printf("register: create user: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
		return
	}
	token, err := a.Tokens.Issue(user)
	if err != nil {
		log.Printf("register: issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (a *App) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	user, err := a.DB.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("login: lookup user: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "INVALID_CREDENTIALS", badCredentialsMessage)
		return
	}
	if !comparePassword(user.Password, req.Password) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", badCredentialsMessage)
		return
	}
	token, err := a.Tokens.Issue(user)
	if err != nil {
		log.Printf("login: issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
