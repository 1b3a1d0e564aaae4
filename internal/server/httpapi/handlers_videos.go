package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/filex"
	"github.com/dsmirnovs/clipvault/internal/server/videos"
)

func (s *Server) handleVideoUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}

	videoPath, err := s.stageFormFile(r, "videoFile")
	if err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}
	thumbPath, err := s.stageFormFile(r, "thumbnail")
	if err != nil {
		filex.Discard(videoPath)
		s.writeError(w, common.ErrorValidation)
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	video, err := s.videos.Upload(r.Context(), videos.UploadInput{
		OwnerID:       userIDFrom(r.Context()),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Duration:      duration,
		VideoPath:     videoPath,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusCreated, video.View())
}

func (s *Server) handleVideoWatch(w http.ResponseWriter, r *http.Request) {
	video, err := s.videos.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, video.View())
}

func (s *Server) handleVideoRemove(w http.ResponseWriter, r *http.Request) {
	err := s.videos.Delete(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, map[string]string{"message": "video removed"})
}
