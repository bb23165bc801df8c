package handler

import (
	"SecureDrop/config"
	"SecureDrop/internal/dto"
	"SecureDrop/internal/service"
	"SecureDrop/utils"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// UploadFile stores the uploaded (client-side encrypted) bytes and issues a
// share link in one request. Policy comes from form fields: ttl_seconds or
// ttl_hours, max_downloads, optional password and notify_email.
func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "file is required"})
		return
	}
	if config.AppConfig.MaxUploadBytes > 0 && fileHeader.Size > config.AppConfig.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"msg": "file too large"})
		return
	}

	policy, ok := parsePolicy(c)
	if !ok {
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "open upload failed"})
		return
	}
	defer src.Close()

	file, err := service.StoreFile(
		c.Request.Context(),
		src,
		fileHeader.Size,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		log.Printf("store file failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "upload failed"})
		return
	}

	link, err := service.IssueLink(c.Request.Context(), file.ID, policy)
	if err != nil {
		log.Printf("issue link failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "issue link failed"})
		return
	}

	manageToken, err := utils.GenerateManageToken(link.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "issue link failed"})
		return
	}

	url := service.ShareURL(link.Token)
	notifyShareLink(c.PostForm("notify_email"), file.OriginalName, url)

	c.JSON(http.StatusOK, dto.UploadResponse{
		FileID:       file.ID,
		Token:        link.Token,
		URL:          url,
		ManageToken:  manageToken,
		ExpiresAt:    link.ExpiresAt,
		MaxDownloads: link.MaxDownloads,
	})
}

// IssueLinkHandler issues a link for a file that was stored earlier.
func IssueLinkHandler(c *gin.Context) {
	var req dto.IssueLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	file, err := service.GetFile(req.FileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "file not found"})
		return
	}

	policy := service.IssuePolicy{
		MaxDownloads: req.MaxDownloads,
		Password:     req.Password,
	}
	if req.TTLSeconds != nil {
		ttl := time.Duration(*req.TTLSeconds) * time.Second
		policy.TTL = &ttl
	}

	link, err := service.IssueLink(c.Request.Context(), file.ID, policy)
	if err != nil {
		log.Printf("issue link failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "issue link failed"})
		return
	}

	manageToken, err := utils.GenerateManageToken(link.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "issue link failed"})
		return
	}

	url := service.ShareURL(link.Token)
	notifyShareLink(req.NotifyEmail, file.OriginalName, url)

	c.JSON(http.StatusOK, dto.IssueLinkResponse{
		Token:        link.Token,
		URL:          url,
		ManageToken:  manageToken,
		ExpiresAt:    link.ExpiresAt,
		MaxDownloads: link.MaxDownloads,
	})
}

// parsePolicy reads the issue policy from upload form fields.
func parsePolicy(c *gin.Context) (service.IssuePolicy, bool) {
	policy := service.IssuePolicy{Password: c.PostForm("password")}

	ttlRaw := strings.TrimSpace(c.PostForm("ttl_seconds"))
	unit := time.Second
	if ttlRaw == "" {
		ttlRaw = strings.TrimSpace(c.PostForm("ttl_hours"))
		unit = time.Hour
	}
	if ttlRaw != "" {
		seconds, err := strconv.ParseInt(ttlRaw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid ttl"})
			return policy, false
		}
		ttl := time.Duration(seconds) * unit
		policy.TTL = &ttl
	}

	if raw := strings.TrimSpace(c.PostForm("max_downloads")); raw != "" {
		max, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || max <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid max_downloads"})
			return policy, false
		}
		policy.MaxDownloads = &max
	}
	return policy, true
}

func notifyShareLink(email, fileName, url string) {
	if email == "" {
		return
	}
	go func() {
		if err := utils.SendShareLinkMail(email, fileName, url); err != nil {
			log.Printf("send share link mail failed: %v", err)
		}
	}()
}
