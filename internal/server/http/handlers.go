package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// --- auth ---

type registerDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

func (s *Server) register(c *gin.Context) {
	var dto registerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := s.users.Register(c.Request.Context(), dto.Username, dto.Password, dto.Email)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		s.logger.Error(c.Request.Context(), "registration failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token, err := s.users.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error(c.Request.Context(), "token generation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "User registered successfully",
		"user_id":      user.ID,
		"username":     user.Username,
		"access_token": token,
	})
}

type loginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := s.users.Authenticate(c.Request.Context(), dto.Username, dto.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		s.logger.Error(c.Request.Context(), "login failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token, err := s.users.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error(c.Request.Context(), "token generation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      user.ID,
		"username":     user.Username,
		"access_token": token,
	})
}

func (s *Server) profile(c *gin.Context) {
	userID, _ := currentUserID(c)

	user, err := s.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt.Format(time.RFC3339),
	})
}

type updateProfileDTO struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (s *Server) updateProfile(c *gin.Context) {
	userID, _ := currentUserID(c)

	var dto updateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.users.Update(c.Request.Context(), userID, models.UserChanges{
		Username: dto.Username,
		Email:    dto.Email,
		Password: dto.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, common.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		default:
			s.logger.Error(c.Request.Context(), "profile update failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "User updated successfully",
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// --- tabs ---

func (s *Server) listTabs(c *gin.Context) {
	records, err := s.tabs.List(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "tab listing failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"id":         rec.ID,
			"filename":   rec.StoredName,
			"date_added": rec.DateAdded.Format(time.RFC3339),
			"size":       rec.Size,
		})
	}

	c.JSON(http.StatusOK, gin.H{"tabs": out})
}

func (s *Server) getTab(c *gin.Context) {
	stream, storedName, err := s.tabs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tab not found"})
			return
		}
		s.logger.Error(c.Request.Context(), "tab fetch failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer stream.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storedName))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		s.logger.Warn(c.Request.Context(), "tab download interrupted", "error", err.Error())
	}
}

func (s *Server) uploadTab(c *gin.Context) {
	userID, _ := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}
	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}
	defer file.Close()

	rec, err := s.tabs.Save(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, common.ErrNotAllowed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
			return
		}
		s.logger.Error(c.Request.Context(), "tab upload failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          rec.ID,
		"filename":    rec.OriginalFilename,
		"stored_as":   rec.StoredName,
		"date_added":  rec.DateAdded.Format(time.RFC3339),
		"size":        rec.Size,
		"uploaded_by": userID,
	})
}

func (s *Server) deleteTab(c *gin.Context) {
	deleted, err := s.tabs.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.Error(c.Request.Context(), "tab deletion failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tab not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tab deleted successfully"})
}
