package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/game"
)

// ListCourses returns the registered courses
func ListCourses(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := m.Courses().Names()
		courses := make([]gin.H, 0, len(names))
		for _, name := range names {
			course, err := m.Courses().Get(name)
			if err != nil {
				continue
			}
			courses = append(courses, gin.H{
				"name":  course.Name,
				"holes": len(course.Holes),
				"par":   course.Par(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"courses": courses})
	}
}

// GetCourse returns one course definition
func GetCourse(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := m.Courses().Get(c.Param("name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, course)
	}
}

// GetLeaderboard returns the best completed rounds on a course
func GetLeaderboard(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if _, err := m.Courses().Get(name); err != nil {
			respondError(c, err)
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		entries, err := m.Leaderboard(name, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"course": name, "entries": entries})
	}
}
