package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apparel/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	Method string `json:"paymentMethod" binding:"required,payment_method"`
	Hex    string `json:"hex" binding:"omitempty,hexcolor"`
	Name   string `json:"name" binding:"required,max=5"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req validationSample
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), ValidationDetails(err)))
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_FieldDetails(t *testing.T) {
	w := postJSON(validationRouter(), `{"paymentMethod":"pay pal!","hex":"blue","name":"too long"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid payment method", fields["paymentMethod"])
	assert.Contains(t, fields["hex"], "hex color")
	assert.Equal(t, "Must be at most 5 characters", fields["name"])
}

func TestValidation_UnsupportedButWellFormedMethodBinds(t *testing.T) {
	router := validationRouter()

	for _, method := range []string{"card", "cod", "upi", "paypal"} {
		w := postJSON(router, `{"paymentMethod":"`+method+`","hex":"#fff","name":"ok"}`)
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("unexpected EOF")))
}
