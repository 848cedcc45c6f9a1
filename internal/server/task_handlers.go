package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Tomlord1122/task-manager/internal/service"
)

// owner returns the authenticated caller or writes a 401.
func owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	}
	return ownerID, ok
}

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req service.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskService.CreateTask(r.Context(), ownerID, req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to create task")
		return
	}

	respondWithJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	tasks, err := s.taskService.ListTasks(r.Context(), ownerID)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to retrieve tasks")
		return
	}

	respondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	task, err := s.taskService.GetTask(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to retrieve task")
		return
	}

	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req service.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskService.UpdateTask(r.Context(), ownerID, chi.URLParam(r, "id"), req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to update task")
		return
	}

	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if err := s.taskService.DeleteTask(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		s.respondWithServiceError(w, r, err, "Failed to delete task")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"msg": "Task removed"})
}
