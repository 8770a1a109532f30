package devserver

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/msohanifr/home-automation/internal/api"
)

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.state.mu.RLock()
	rooms := make([]api.Room, 0)
	for _, rec := range s.state.rooms {
		if rec.ownerID == user.ID {
			rooms = append(rooms, s.state.renderRoomLocked(rec))
		}
	}
	s.state.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var payload struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Name == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	s.state.mu.Lock()
	s.state.nextRoomID++
	now := touch()
	rec := &roomRecord{
		Room: api.Room{
			ID:        s.state.nextRoomID,
			Name:      payload.Name,
			Slug:      payload.Slug,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		ownerID: user.ID,
	}
	s.state.rooms[rec.Room.ID] = rec
	out := s.state.renderRoomLocked(rec)
	s.state.mu.Unlock()

	s.logger.Info("room created", "name", rec.Name, "user", user.Username)
	writeJSON(w, http.StatusCreated, out)
}

// handleUpdateRoom accepts either a JSON PATCH or a multipart form carrying a
// background image. The image itself is discarded; only a fake URL is stored.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	var name, slug, backgroundURL *string

	if mediaTypeIsMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		if v := r.FormValue("name"); v != "" {
			name = &v
		}
		if v := r.FormValue("slug"); v != "" {
			slug = &v
		}
		if _, header, err := r.FormFile("background_image"); err == nil {
			url := "/media/backgrounds/" + header.Filename
			backgroundURL = &url
		}
	} else {
		var payload struct {
			Name *string `json:"name"`
			Slug *string `json:"slug"`
		}
		if err := decodeJSON(r, &payload); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name, slug = payload.Name, payload.Slug
	}

	s.state.mu.Lock()
	rec, ok := s.state.rooms[id]
	if !ok || rec.ownerID != user.ID {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if name != nil {
		rec.Name = *name
	}
	if slug != nil {
		rec.Slug = *slug
	}
	if backgroundURL != nil {
		rec.BackgroundImageURL = *backgroundURL
	}
	rec.UpdatedAt = touch()
	out := s.state.renderRoomLocked(rec)
	s.state.mu.Unlock()

	s.logger.Info("room updated", "name", out.Name, "user", user.Username)
	writeJSON(w, http.StatusOK, out)
}

func mediaTypeIsMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 9 && ct[:9] == "multipart"
}
