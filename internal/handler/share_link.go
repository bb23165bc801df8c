package handler

import (
	"SecureDrop/internal/service"
	"SecureDrop/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLinkStatus backs the download preview page. Missing and revoked links
// collapse into one generic response so the endpoint cannot be used to
// probe which tokens exist.
func GetLinkStatus(c *gin.Context) {
	token := c.Param("token")

	view, err := service.GetLinkStatus(c.Request.Context(), token)
	if err != nil {
		log.Printf("get link status failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	if view.Status == service.StatusNotFound.String() || view.Status == service.StatusRevoked.String() {
		c.JSON(http.StatusNotFound, gin.H{"msg": "invalid link"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// DownloadFile streams a shared file after the allowance is atomically
// consumed.
func DownloadFile(c *gin.Context) {
	token := c.Param("token")
	password := c.Query("password")
	access := service.AccessInfo{
		UserAgent: c.Request.UserAgent(),
		SourceIP:  c.ClientIP(),
	}

	object, link, size, err := service.RequestDownload(c.Request.Context(), token, password, access)
	if err != nil {
		respondLinkError(c, err)
		return
	}
	defer object.Close()

	safeName := utils.SanitizeHeaderFilename(link.File.OriginalName)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, safeName))
	contentType := link.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", fmt.Sprintf("%d", size))

	if _, err := io.Copy(c.Writer, object); err != nil {
		// Allowance stays spent on a broken transfer; nothing to roll back.
		log.Printf("stream %s failed: %v", token, err)
		return
	}
}

// DownloadURL consumes one allowance unit and hands back a short-lived
// presigned URL so the bytes go straight from object storage to the client.
func DownloadURL(c *gin.Context) {
	token := c.Param("token")
	password := c.Query("password")
	access := service.AccessInfo{
		UserAgent: c.Request.UserAgent(),
		SourceIP:  c.ClientIP(),
	}

	url, err := service.PresignDownload(c.Request.Context(), token, password, access)
	if err != nil {
		respondLinkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// RevokeLinkHandler deactivates the link named by the manage token.
func RevokeLinkHandler(c *gin.Context) {
	linkID := c.MustGet("link_id").(uint64)
	if err := service.RevokeLink(c.Request.Context(), linkID); err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "invalid link"})
			return
		}
		log.Printf("revoke link %d failed: %v", linkID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	utils.Success(c, gin.H{"revoked": true})
}

// GetManagedLinkStatus returns the full status view, precise reason
// included, to the link's manager.
func GetManagedLinkStatus(c *gin.Context) {
	linkID := c.MustGet("link_id").(uint64)
	link, err := service.GetManagedLink(linkID)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "invalid link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	_, status, err := service.Validate(link.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	c.JSON(http.StatusOK, service.BuildLinkView(link, status))
}

// respondLinkError maps internal reasons onto the anonymous-downloader
// contract. Missing, revoked and mistyped tokens are indistinguishable;
// expiry and limit exhaustion are safe to name because the token was
// already known to the caller.
func respondLinkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound), errors.Is(err, service.ErrLinkRevoked):
		c.JSON(http.StatusNotFound, gin.H{"msg": "invalid link"})
	case errors.Is(err, service.ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{"msg": "share link expired"})
	case errors.Is(err, service.ErrLimitReached):
		c.JSON(http.StatusGone, gin.H{"msg": "download limit reached"})
	case errors.Is(err, service.ErrPasswordRequired), errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusForbidden, gin.H{"msg": "password required or incorrect"})
	case errors.Is(err, service.ErrLedgerConflict):
		c.JSON(http.StatusConflict, gin.H{"msg": "please retry"})
	default:
		log.Printf("download failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	}
}
