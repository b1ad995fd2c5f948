package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// item is the demo resource served by the API.
type item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// itemRequest is the mutable part of an item accepted on create and update.
type itemRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// itemStore is an in-memory stand-in for a database.
type itemStore struct {
	mu    sync.RWMutex
	items map[string]item
}

func newItemStore() *itemStore {
	return &itemStore{
		items: make(map[string]item),
	}
}

func (s *itemStore) list(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	items := make([]item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	s.mu.RUnlock()

	// Map iteration order is random, keep responses stable
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	writeJSON(w, http.StatusOK, items)
}

func (s *itemStore) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.RLock()
	it, found := s.items[id]
	s.mu.RUnlock()

	if !found {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *itemStore) create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	it := item{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Price:     req.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.items[it.ID] = it
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, it)
}

func (s *itemStore) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	it, found := s.items[id]
	if found {
		it.Name = req.Name
		it.Price = req.Price
		it.UpdatedAt = time.Now().UTC()
		s.items[id] = it
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *itemStore) remove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, found := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if !found {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
