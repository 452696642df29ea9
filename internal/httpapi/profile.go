package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/airwavefm/airwave/internal/profile"
)

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.profiles.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.book.Error("Get profile: %v", err)
		fail(c, http.StatusInternalServerError, "Error fetching profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

func (s *Server) updateProfile(c *gin.Context) {
	var patch profile.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, "Invalid profile payload")
		return
	}
	p, err := s.profiles.Upsert(c.Request.Context(), currentUser(c), patch)
	if err != nil {
		s.book.Error("Update profile: %v", err)
		fail(c, http.StatusInternalServerError, "Error updating profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"data":    p,
	})
}

type showStructureReq struct {
	ShowStructure []profile.ShowSection `json:"showStructure"`
}

func (s *Server) setShowStructure(c *gin.Context) {
	var req showStructureReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ShowStructure == nil {
		fail(c, http.StatusBadRequest, "Show structure array is required")
		return
	}
	p, err := s.profiles.SetShowStructure(c.Request.Context(), currentUser(c), req.ShowStructure)
	if err != nil {
		s.book.Error("Set show structure: %v", err)
		fail(c, http.StatusInternalServerError, "Error updating show structure")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Show structure updated successfully",
		"data":    p.ShowStructure,
	})
}

// profileCompleteness reports which onboarding fields are still blank.
func (s *Server) profileCompleteness(c *gin.Context) {
	p, err := s.profiles.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.book.Error("Profile completeness: %v", err)
		fail(c, http.StatusInternalServerError, "Error calculating profile completeness")
		return
	}

	checks := []struct {
		name   string
		filled bool
	}{
		{"preferredLanguage", len(p.PreferredLanguage) > 0},
		{"speakingSpeed", p.SpeakingSpeed != ""},
		{"signatureIntro", p.SignatureIntro != ""},
		{"signatureOutro", p.SignatureOutro != ""},
		{"topicPreferences", len(p.TopicPreferences) > 0},
		{"showStructure", len(p.ShowStructure) > 0},
		{"toneDescription", p.ToneDescription != ""},
	}

	completed := 0
	missing := []string{}
	for _, check := range checks {
		if check.filled {
			completed++
		} else {
			missing = append(missing, check.name)
		}
	}
	completeness := (completed*100 + len(checks)/2) / len(checks)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"completeness":        completeness,
		"missingFields":       missing,
		"onboardingCompleted": p.OnboardingCompleted,
	})
}
