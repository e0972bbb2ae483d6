package objects

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ronsuru/taskquer/internal/dto"
	"github.com/ronsuru/taskquer/pkg/auth"
	"github.com/ronsuru/taskquer/pkg/objectstore"
	"github.com/ronsuru/taskquer/pkg/utils"
)

type Store interface {
	UploadURL(ownerID string) (uploadURL, objectPath string, err error)
	Save(ctx context.Context, id, token string, body io.Reader) error
	Open(objectPath string) (*objectstore.Object, error)
	Download(obj *objectstore.Object, w http.ResponseWriter, r *http.Request)
}

type ObjectHandler struct {
	store Store
}

func New(store Store) *ObjectHandler {
	return &ObjectHandler{store: store}
}

// UploadURL godoc
//
//	@Summary		Reserve an image upload
//	@Description	Returns a short-lived URL to PUT the image to and the object path to use as image proof.
//	@Tags			Objects
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.UploadURLResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/objects/upload [post]
func (h *ObjectHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	uploadURL, objectPath, err := h.store.UploadURL(auth.UserID(r.Context()))
	if err != nil {
		zap.L().Error("failed to sign upload url", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.UploadURLResponseDTO{UploadURL: uploadURL, ObjectPath: objectPath})
}

// Upload godoc
//
//	@Summary	Upload image bytes
//	@Tags		Objects
//	@Accept		octet-stream
//	@Param		id		path	string	true	"object id"
//	@Param		token	query	string	true	"upload token"
//	@Success	201
//	@Failure	403	{object}	utils.Response	"Invalid or expired upload token"
//	@Failure	404	{object}	utils.Response	"Unknown object"
//	@Failure	409	{object}	utils.Response	"Already uploaded"
//	@Failure	413	{object}	utils.Response	"Object too large"
//	@Router		/objects/uploads/{id} [put]
func (h *ObjectHandler) Upload(w http.ResponseWriter, r *http.Request) {
	err := h.store.Save(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("token"), r.Body)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, objectstore.ErrInvalidToken):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, objectstore.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, objectstore.ErrExists):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, objectstore.ErrTooLarge):
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		zap.L().Error("failed to store object", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Download godoc
//
//	@Summary	Fetch an uploaded image
//	@Tags		Objects
//	@Produce	octet-stream
//	@Param		id	path	string	true	"object id"
//	@Success	200
//	@Failure	404	{object}	utils.Response	"Unknown object"
//	@Router		/objects/uploads/{id} [get]
func (h *ObjectHandler) Download(w http.ResponseWriter, r *http.Request) {
	obj, err := h.store.Open(r.URL.Path)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Object not found")
			return
		}
		zap.L().Error("failed to open object", zap.String("path", r.URL.Path), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.store.Download(obj, w, r)
}
