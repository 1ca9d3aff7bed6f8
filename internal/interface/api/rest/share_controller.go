package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filesharing-api/config"
	"filesharing-api/internal/application/ports"
	domain "filesharing-api/internal/domain/filegroup"
	jwtSvc "filesharing-api/internal/infrastructure/jwt"
	dto "filesharing-api/internal/interface/api/rest/dto/filegroup"
	"filesharing-api/internal/interface/api/rest/middleware"
	"filesharing-api/internal/interface/api/rest/validator"
)

type ShareController struct {
	shareService ports.ShareService
	logger       *zap.Logger
	app          config.APP
	limits       config.Limits
}

func NewShareController(
	r *gin.Engine,
	shareService ports.ShareService,
	logger *zap.Logger,
	app config.APP,
	limits config.Limits,
	jwtService *jwtSvc.Service,
) *ShareController {
	sc := &ShareController{
		shareService: shareService,
		logger:       logger,
		app:          app,
		limits:       limits,
	}

	r.POST(RouteFiles, sc.CreateFileGroupHandler)
	r.GET(RouteFileCheck, sc.CheckFileGroupHandler)
	r.GET(RouteFile, sc.DownloadFileHandler)
	r.GET(RouteFileZip, sc.DownloadZipHandler)
	r.POST(RouteAdminSweep, middleware.AuthMiddleware(jwtService, jwtSvc.RoleAdmin), sc.SweepHandler)

	return sc
}

func (sc *ShareController) CreateFileGroupHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}
	for _, fh := range files {
		if fh.Size <= 0 || fh.Size > sc.limits.MaxFileSizeBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large or empty"})
			return
		}
	}

	ttl, err := validator.ValidateTTL(c.PostForm("ttl"), sc.limits.DefaultTTL, sc.limits.MaxTTL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fg, err := sc.shareService.CreateFileGroup(c.Request.Context(), files, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to create a file group"},
		)
		sc.logger.Error("CreateFileGroup() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreateResponse(fg, sc.app.PublicBaseURL))
}

func (sc *ShareController) CheckFileGroupHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("group_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "message": "file group not found"})
		return
	}

	fg, remaining, err := sc.shareService.Resolve(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"valid": false, "message": "file group not found"})
		case errors.Is(err, domain.ErrExpired):
			c.JSON(http.StatusGone, gin.H{"valid": false, "message": "link expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "message": "server error"})
			sc.logger.Error("Resolve() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckResponse(fg, remaining))
}

func (sc *ShareController) DownloadFileHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("group_id"))
	if !ok {
		c.String(http.StatusNotFound, "file not found")
		return
	}
	index, err := validator.ValidateIndex(c.Query("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rc, info, err := sc.shareService.FetchOne(c.Request.Context(), id, index)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.String(http.StatusNotFound, "file not found")
		case errors.Is(err, domain.ErrExpired):
			c.String(http.StatusGone, "link expired")
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
			sc.logger.Error("FetchOne() error", zap.Error(err))
		}
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", info.FileName),
	}
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, extraHeaders)
}

func (sc *ShareController) DownloadZipHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("group_id"))
	if !ok {
		c.String(http.StatusNotFound, "file not found")
		return
	}

	// check first so the error responses carry no attachment headers
	if _, _, err := sc.shareService.Resolve(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.String(http.StatusNotFound, "file not found")
		case errors.Is(err, domain.ErrExpired):
			c.String(http.StatusGone, "link expired")
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "archive failed"})
			sc.logger.Error("Resolve() error", zap.Error(err))
		}
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "files-"+id.String()+".zip"))

	if err := sc.shareService.FetchArchive(c.Request.Context(), id, c.Writer); err != nil {
		// once archive bytes have gone out we can only drop the connection
		if c.Writer.Written() {
			sc.logger.Error("FetchArchive() aborted mid-stream", zap.Error(err))
			c.Abort()
			return
		}
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.String(http.StatusNotFound, "file not found")
		case errors.Is(err, domain.ErrExpired):
			c.String(http.StatusGone, "link expired")
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "archive failed"})
			sc.logger.Error("FetchArchive() error", zap.Error(err))
		}
	}
}

func (sc *ShareController) SweepHandler(c *gin.Context) {
	reaped, err := sc.shareService.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		sc.logger.Error("Sweep() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, dto.SweepResponse{Reaped: reaped})
}
