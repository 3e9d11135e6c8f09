package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Name     string   `json:"display_name" binding:"required,min=2"`
	Tags     []string `json:"tags" binding:"max=2"`
	Category string   `json:"category" binding:"omitempty,oneof=food retail"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	var captured error
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req signupRequest
		captured = c.ShouldBindJSON(&req)
		c.Status(http.StatusOK)
	})

	body := `{"email":"nope","display_name":"x","tags":["a","b","c"],"category":"cars"}`
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Error(t, captured)

	details, ok := ValidationDetails(captured)
	require.True(t, ok)
	messages := map[string]string{}
	for _, d := range details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Equal(t, "Must be at least 2 characters", messages["display_name"])
	assert.Equal(t, "Must be at most 2 items", messages["tags"])
	assert.Equal(t, "Must be one of: food retail", messages["category"])
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	var captured error
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req signupRequest
		captured = c.ShouldBindJSON(&req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`)))

	require.Error(t, captured)
	_, ok := ValidationDetails(captured)
	assert.False(t, ok)
}
