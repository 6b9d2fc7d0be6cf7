package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentForm struct {
	Email  string          `json:"email" binding:"required,email"`
	Amount decimal.Decimal `json:"amount" binding:"gte=0"`
	Month  int             `json:"month" binding:"required,min=1,max=12"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/form", func(c *gin.Context) {
		var req paymentForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK(req.Amount.String()))
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("reports fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(`{"email":"nope","amount":"-5","month":13}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Must be greater than or equal to 0", fields["amount"])
		assert.Equal(t, "Must be at most 12", fields["month"])
	})

	t.Run("accepts decimal strings and numbers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(`{"email":"a@b.co","amount":12.5,"month":8}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "12.5")
	})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}

func TestFormatValidationErrors_MalformedBody(t *testing.T) {
	router := validationRouter()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", ``, "Request body is empty"},
		{"syntax", `{"email":`, "Request body is not valid JSON"},
		{"truncated", `{"email":"a@b.co","month":1`, "Request body is not valid JSON"},
		{"garbage", `{"email" "a@b.co"}`, "Request body is not valid JSON"},
		{"type", `{"email":"a@b.co","month":"june"}`, "Field month has the wrong type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Error.Message)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	limited := gin.New()
	limited.Use(BodyLimit(32))
	limited.POST("/form", func(c *gin.Context) {
		var req paymentForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	limited.GET("/form", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(req *http.Request) *httptest.ResponseRecorder {
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		return w
	}

	t.Run("small body passes", func(t *testing.T) {
		w := send(httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(`{"email":"a@b.co","month":1}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length over the cap", func(t *testing.T) {
		w := send(httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(strings.Repeat(" ", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeTooLarge)
	})

	t.Run("streamed body overruns while binding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form",
			strings.NewReader(`{"email":"someone@example.com","month":1,"amount":"1"}`))
		req.ContentLength = -1
		w := send(req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("bodyless request", func(t *testing.T) {
		w := send(httptest.NewRequest(http.MethodGet, "/form", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
